package launcher

// Defaults bundles the baseline values the launcher uses before the config
// file and flags override them.
type Defaults struct {
	DataDir string
	Preset  string
	Logging LoggingDefaults
}

// LoggingDefaults controls log verbosity and format.
type LoggingDefaults struct {
	Verbosity int    //	logrus level number (0=panic ... 4=info, 5=debug, 6=trace)
	Format    string //	text or json
	Color     bool   //	ANSI colors in text output
}

// DefaultConfig returns a fully populated Defaults instance.
func DefaultConfig() Defaults {
	return Defaults{
		DataDir: "~/.quorum",
		Preset:  "default",
		Logging: LoggingDefaults{
			Verbosity: 4,
			Format:    "text",
			Color:     false,
		},
	}
}
