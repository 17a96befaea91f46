package integration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-quorum/kvstore"
	"github.com/rony4d/go-opera-quorum/quorum"
)

// TestDefaultPreset_hasReasonableDefaults guards the baseline profile: if
// it changes, existing datadirs may stop opening.
func TestDefaultPreset_hasReasonableDefaults(t *testing.T) {
	cfg := DefaultPreset()

	if cfg.Name != "default" {
		t.Fatalf("Name = %q, want 'default'", cfg.Name)
	}
	if cfg.Backend != kvstore.BackendLevelDB {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, kvstore.BackendLevelDB)
	}
	if cfg.CacheMB <= 0 || cfg.Handles <= 0 {
		t.Fatalf("CacheMB = %d, Handles = %d, want both positive", cfg.CacheMB, cfg.Handles)
	}
	if cfg.Epochs != quorum.FineEpochs {
		t.Fatalf("Epochs = %v, want fine", cfg.Epochs)
	}
}

func TestGetPresetByName(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		epochs  quorum.EpochMode
	}{
		{"default", kvstore.BackendLevelDB, quorum.FineEpochs},
		{"memory", kvstore.BackendMemory, quorum.FineEpochs},
		{"pebble", kvstore.BackendPebble, quorum.FineEpochs},
		{"coarse", kvstore.BackendLevelDB, quorum.CoarseEpochs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := GetPresetByName(tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.name, cfg.Name)
			require.Equal(t, tt.backend, cfg.Backend)
			require.Equal(t, tt.epochs, cfg.Epochs)
		})
	}

	_, err := GetPresetByName("archive")
	require.Error(t, err)
}

func TestApplyPreset(t *testing.T) {
	target := DefaultPreset()
	target.CacheMB = 512

	ApplyPreset(&target, PresetConfig{Name: "custom", Epochs: quorum.CoarseEpochs})

	require.Equal(t, "custom", target.Name)
	require.Equal(t, kvstore.BackendLevelDB, target.Backend)
	require.Equal(t, 512, target.CacheMB)
	require.Equal(t, quorum.CoarseEpochs, target.Epochs)
}

func TestOpenStore(t *testing.T) {
	for _, preset := range []PresetConfig{DefaultPreset(), MemoryPreset(), PebblePreset()} {
		t.Run(preset.Name, func(t *testing.T) {
			store, err := OpenStore(t.TempDir(), preset)
			require.NoError(t, err)
			defer store.Close()

			b := store.NewBatch()
			require.NoError(t, b.Put([]byte("k"), []byte("v")))
			require.NoError(t, b.Write())

			v, err := store.Get([]byte("k"))
			require.NoError(t, err)
			require.Equal(t, []byte("v"), v)
		})
	}
}
