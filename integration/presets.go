// Package integration bundles the storage and epoch settings of a quorum
// ledger into named profiles, so operators pick "coarse" or "memory" instead
// of tuning backend, cache and epoch policy one flag at a time.
//
// Usage:
//
//	preset, err := integration.GetPresetByName("coarse")
//	store, err := integration.OpenStore(datadir, preset)
package integration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rony4d/go-opera-quorum/kvstore"
	"github.com/rony4d/go-opera-quorum/quorum"
)

// StoreDirName is the directory under the datadir that on-disk backends
// keep the ledger in.
const StoreDirName = "ledger"

// PresetConfig captures the settings that vary across profiles.
type PresetConfig struct {
	Name    string          // identifier selectable with --preset
	Backend string          // kvstore backend: memory, leveldb, pebble
	CacheMB int             // backend cache size
	Handles int             // open file handles (leveldb only)
	Epochs  quorum.EpochMode // epoch policy written at genesis
}

// DefaultPreset is a LevelDB ledger with fine epochs.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:    "default",
		Backend: kvstore.BackendLevelDB,
		CacheMB: 16,
		Handles: 64,
		Epochs:  quorum.FineEpochs,
	}
}

// MemoryPreset keeps the ledger in memory. Everything is lost on exit, which
// is what tests and dry runs want.
func MemoryPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "memory"
	cfg.Backend = kvstore.BackendMemory
	cfg.CacheMB = 0
	cfg.Handles = 0
	return cfg
}

// PebblePreset stores the ledger in Pebble.
func PebblePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "pebble"
	cfg.Backend = kvstore.BackendPebble
	cfg.CacheMB = 32
	cfg.Handles = 0
	return cfg
}

// CoarsePreset is the default backend with a single ledger-wide epoch: any
// passed action resets every pending vote.
func CoarsePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "coarse"
	cfg.Epochs = quorum.CoarseEpochs
	return cfg
}

// GetPresetByName looks up a preset by its identifier.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "default", "":
		return DefaultPreset(), nil
	case "memory":
		return MemoryPreset(), nil
	case "pebble":
		return PebblePreset(), nil
	case "coarse":
		return CoarsePreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: default, memory, pebble, coarse)", name)
	}
}

// ApplyPreset merges preset into target. Zero numeric fields and an empty
// backend leave the target untouched; the epoch policy is always applied.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.Backend != "" {
		target.Backend = preset.Backend
	}
	if preset.CacheMB > 0 {
		target.CacheMB = preset.CacheMB
	}
	if preset.Handles > 0 {
		target.Handles = preset.Handles
	}
	target.Epochs = preset.Epochs
	if preset.Name != "" {
		target.Name = preset.Name
	}
}

// OpenStore opens the backend preset selects under datadir, creating the
// directory when needed.
func OpenStore(datadir string, preset PresetConfig) (kvstore.Store, error) {
	if preset.Backend == kvstore.BackendMemory {
		return kvstore.NewMemory(), nil
	}
	path := filepath.Join(datadir, StoreDirName)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", path, err)
	}
	return kvstore.Open(preset.Backend, path, preset.CacheMB, preset.Handles)
}
