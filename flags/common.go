package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// CommonFlags returns the base set of CLI flags shared across commands.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "datadir",
			Usage:  "Data directory holding the quorum ledger",
			Value:  "~/.quorum",
			EnvVar: "QUORUM_DATADIR",
		},
		cli.StringFlag{
			Name:   "config",
			Usage:  "TOML configuration file",
			EnvVar: "QUORUM_CONFIG",
		},
		cli.StringFlag{
			Name:   "log.format",
			Usage:  "Log output format (text|json)",
			Value:  "text",
			EnvVar: "QUORUM_LOG_FORMAT",
		},
		cli.IntFlag{
			Name:   "log.verbosity",
			Usage:  "Logging verbosity (0=panic,1=fatal,2=error,3=warn,4=info,5=debug,6=trace)",
			Value:  4,
			EnvVar: "QUORUM_LOG_VERBOSITY",
		},
		cli.BoolFlag{
			Name:   "log.color",
			Usage:  "Enable colored log output",
			EnvVar: "QUORUM_LOG_COLOR",
		},
		cli.StringFlag{
			Name:   "log.sentry",
			Usage:  "Sentry DSN; errors and worse are reported there when set",
			EnvVar: "QUORUM_SENTRY_DSN",
		},
	}
}
