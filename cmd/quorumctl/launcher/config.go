// This file maps the CLI context and the optional TOML file onto Config.

package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-quorum/integration"
	"github.com/rony4d/go-opera-quorum/quorum"
)

// Config aggregates everything a quorumctl command needs.
type Config struct {
	DataDir string
	Logging LoggingConfig
	Store   integration.PresetConfig
	Genesis GenesisConfig
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string
}

// GenesisConfig is only read by the init command.
type GenesisConfig struct {
	Name   string
	Voters []string
	Quorum int // 0 picks a simple majority
}

// fileConfig is the TOML layout:
//
//	datadir = "~/.quorum"
//	preset  = "coarse"
//
//	[log]
//	verbosity = 5
//	format    = "json"
//	sentry    = "https://key@sentry.example/1"
//
//	[store]
//	backend  = "pebble"
//	cache_mb = 64
//	epochs   = "fine"
//
//	[genesis]
//	name   = "treasury"
//	voters = ["0x...", "0x..."]
//	quorum = 2
type fileConfig struct {
	DataDir string `toml:"datadir"`
	Preset  string `toml:"preset"`

	Log struct {
		Verbosity int    `toml:"verbosity"`
		Format    string `toml:"format"`
		Color     bool   `toml:"color"`
		Sentry    string `toml:"sentry"`
	} `toml:"log"`

	Store struct {
		Backend string           `toml:"backend"`
		CacheMB int              `toml:"cache_mb"`
		Handles int              `toml:"handles"`
		Epochs  quorum.EpochMode `toml:"epochs"`
	} `toml:"store"`

	Genesis struct {
		Name   string   `toml:"name"`
		Voters []string `toml:"voters"`
		Quorum int      `toml:"quorum"`
	} `toml:"genesis"`
}

func defaultConfig() Config {
	d := DefaultConfig()
	preset, err := integration.GetPresetByName(d.Preset)
	if err != nil {
		panic(err)
	}
	return Config{
		DataDir: resolvePath(d.DataDir),
		Logging: LoggingConfig{
			Verbosity: d.Logging.Verbosity,
			Format:    d.Logging.Format,
			Color:     d.Logging.Color,
		},
		Store: preset,
	}
}

// MakeAllConfigs merges defaults, the config file, then CLI overrides into a
// single config. It works from the root context and from any subcommand.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.GlobalString("config"); file != "" {
		if err := loadConfigFile(resolvePath(file), &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyCLIOverrides(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}

	if meta.IsDefined("datadir") {
		cfg.DataDir = resolvePath(raw.DataDir)
	}
	if meta.IsDefined("preset") {
		if err := applyPresetName(cfg, raw.Preset); err != nil {
			return err
		}
	}

	if meta.IsDefined("log", "verbosity") {
		cfg.Logging.Verbosity = raw.Log.Verbosity
	}
	if meta.IsDefined("log", "format") {
		cfg.Logging.Format = strings.TrimSpace(raw.Log.Format)
	}
	if meta.IsDefined("log", "color") {
		cfg.Logging.Color = raw.Log.Color
	}
	if meta.IsDefined("log", "sentry") {
		cfg.Logging.SentryDSN = strings.TrimSpace(raw.Log.Sentry)
	}

	if meta.IsDefined("store", "backend") {
		cfg.Store.Backend = strings.TrimSpace(raw.Store.Backend)
	}
	if meta.IsDefined("store", "cache_mb") {
		cfg.Store.CacheMB = raw.Store.CacheMB
	}
	if meta.IsDefined("store", "handles") {
		cfg.Store.Handles = raw.Store.Handles
	}
	if meta.IsDefined("store", "epochs") {
		cfg.Store.Epochs = raw.Store.Epochs
	}

	if meta.IsDefined("genesis", "name") {
		cfg.Genesis.Name = raw.Genesis.Name
	}
	if meta.IsDefined("genesis", "voters") {
		cfg.Genesis.Voters = raw.Genesis.Voters
	}
	if meta.IsDefined("genesis", "quorum") {
		cfg.Genesis.Quorum = raw.Genesis.Quorum
	}
	return nil
}

func applyPresetName(cfg *Config, name string) error {
	preset, err := integration.GetPresetByName(strings.TrimSpace(name))
	if err != nil {
		return err
	}
	integration.ApplyPreset(&cfg.Store, preset)
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) error {
	if ctx.GlobalIsSet("datadir") {
		cfg.DataDir = resolvePath(ctx.GlobalString("datadir"))
	}

	if ctx.GlobalIsSet("log.format") {
		cfg.Logging.Format = ctx.GlobalString("log.format")
	}
	if ctx.GlobalIsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.GlobalInt("log.verbosity")
	}
	if ctx.GlobalIsSet("log.color") {
		cfg.Logging.Color = ctx.GlobalBool("log.color")
	}
	if ctx.GlobalIsSet("log.sentry") {
		cfg.Logging.SentryDSN = ctx.GlobalString("log.sentry")
	}

	// the preset goes first so the individual store flags refine it
	if ctx.GlobalIsSet("preset") {
		if err := applyPresetName(cfg, ctx.GlobalString("preset")); err != nil {
			return err
		}
	}
	if ctx.GlobalIsSet("db.backend") {
		cfg.Store.Backend = ctx.GlobalString("db.backend")
	}
	if ctx.GlobalIsSet("cache") {
		cfg.Store.CacheMB = ctx.GlobalInt("cache")
	}
	if ctx.GlobalIsSet("handles") {
		cfg.Store.Handles = ctx.GlobalInt("handles")
	}

	// genesis flags live on the init command
	if ctx.IsSet("name") {
		cfg.Genesis.Name = ctx.String("name")
	}
	if ctx.IsSet("voter") {
		cfg.Genesis.Voters = splitCSV(strings.Join(ctx.StringSlice("voter"), ","))
	}
	if ctx.IsSet("quorum") {
		cfg.Genesis.Quorum = ctx.Int("quorum")
	}
	if ctx.IsSet("epochs") {
		mode, err := quorum.ParseEpochMode(ctx.String("epochs"))
		if err != nil {
			return err
		}
		cfg.Store.Epochs = mode
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
