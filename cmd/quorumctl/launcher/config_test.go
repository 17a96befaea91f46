package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-quorum/flags"
	"github.com/rony4d/go-opera-quorum/kvstore"
	"github.com/rony4d/go-opera-quorum/quorum"
)

// runConfigFromArgs runs MakeAllConfigs inside a synthetic app carrying the
// global flags.
func runConfigFromArgs(t *testing.T, args []string) (Config, error) {
	t.Helper()

	app := cli.NewApp()
	app.HideHelp = true
	app.HideVersion = true
	app.Flags = append(app.Flags, flags.CommonFlags()...)
	app.Flags = append(app.Flags, flags.StoreFlags()...)

	var (
		got    Config
		cfgErr error
	)
	app.Action = func(c *cli.Context) error {
		got, cfgErr = MakeAllConfigs(c)
		return nil
	}

	if err := app.Run(append([]string{"quorumctl"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return got, cfgErr
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quorum.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestMakeAllConfigs_flagOverrides feeds flag combinations into the app and
// checks the fields each one should change.
func TestMakeAllConfigs_flagOverrides(t *testing.T) {
	dataDir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			args: nil,
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, filepath.Join(GuessHomeDir(), ".quorum"), cfg.DataDir)
				require.Equal(t, "default", cfg.Store.Name)
				require.Equal(t, kvstore.BackendLevelDB, cfg.Store.Backend)
				require.Equal(t, quorum.FineEpochs, cfg.Store.Epochs)
				require.Equal(t, 4, cfg.Logging.Verbosity)
			},
		},
		{
			name: "datadir",
			args: []string{"--datadir", dataDir},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, dataDir, cfg.DataDir)
			},
		},
		{
			name: "coarse preset",
			args: []string{"--preset", "coarse"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "coarse", cfg.Store.Name)
				require.Equal(t, quorum.CoarseEpochs, cfg.Store.Epochs)
				require.Equal(t, kvstore.BackendLevelDB, cfg.Store.Backend)
			},
		},
		{
			name: "store flags refine the preset",
			args: []string{"--preset", "memory", "--db.backend", "pebble", "--cache", "8"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "memory", cfg.Store.Name)
				require.Equal(t, kvstore.BackendPebble, cfg.Store.Backend)
				require.Equal(t, 8, cfg.Store.CacheMB)
			},
		},
		{
			name: "logging",
			args: []string{"--log.format", "json", "--log.verbosity", "5", "--log.color"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "json", cfg.Logging.Format)
				require.Equal(t, 5, cfg.Logging.Verbosity)
				require.True(t, cfg.Logging.Color)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := runConfigFromArgs(t, tt.args)
			require.NoError(t, err)
			tt.want(t, cfg)
		})
	}
}

func TestMakeAllConfigs_configFile(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfigFile(t, `
datadir = "`+dataDir+`"
preset  = "pebble"

[log]
verbosity = 2
format    = "json"

[store]
cache_mb = 128
epochs   = "coarse"

[genesis]
name   = "treasury"
voters = ["0x00000000000000000000000000000000000a11ce", "0x0000000000000000000000000000000000000b0b"]
quorum = 2
`)

	cfg, err := runConfigFromArgs(t, []string{"--config", path})
	require.NoError(t, err)
	require.Equal(t, dataDir, cfg.DataDir)
	require.Equal(t, kvstore.BackendPebble, cfg.Store.Backend)
	require.Equal(t, 128, cfg.Store.CacheMB)
	require.Equal(t, quorum.CoarseEpochs, cfg.Store.Epochs)
	require.Equal(t, 2, cfg.Logging.Verbosity)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, "treasury", cfg.Genesis.Name)
	require.Len(t, cfg.Genesis.Voters, 2)
	require.Equal(t, 2, cfg.Genesis.Quorum)

	// flags beat the file
	cfg, err = runConfigFromArgs(t, []string{"--config", path, "--log.verbosity", "5", "--cache", "4"})
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Logging.Verbosity)
	require.Equal(t, 4, cfg.Store.CacheMB)
}

func TestMakeAllConfigs_errors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{"unknown preset", func(*testing.T) []string { return []string{"--preset", "archive"} }},
		{"missing config file", func(t *testing.T) []string {
			return []string{"--config", filepath.Join(t.TempDir(), "absent.toml")}
		}},
		{"unknown config key", func(t *testing.T) []string {
			return []string{"--config", writeConfigFile(t, "gcmode = \"full\"\n")}
		}},
		{"bad epochs in config", func(t *testing.T) []string {
			return []string{"--config", writeConfigFile(t, "[store]\nepochs = \"hourly\"\n")}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runConfigFromArgs(t, tt.args(t))
			require.Error(t, err)
		})
	}
}

func TestSetupLogging(t *testing.T) {
	log, err := setupLogging(LoggingConfig{Verbosity: 99, Format: "json"}, os.Stderr)
	require.NoError(t, err)
	require.Equal(t, "trace", log.GetLevel().String())

	_, err = setupLogging(LoggingConfig{Format: "xml"}, os.Stderr)
	require.Error(t, err)
}
