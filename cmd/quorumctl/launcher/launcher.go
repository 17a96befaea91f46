// Package launcher implements the quorumctl command line: it merges
// defaults, the TOML config file, the environment and flags into a Config,
// opens the ledger that config points at, and runs one command against it.
package launcher

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-quorum/flags"
)

// gitCommit is set at build time with -ldflags.
var gitCommit = ""

func newApp() *cli.App {
	app := flags.NewApp(gitCommit)
	app.Flags = append(app.Flags, flags.CommonFlags()...)
	app.Flags = append(app.Flags, flags.StoreFlags()...)
	app.Commands = []cli.Command{
		initCommand,
		voteCommand,
		callCommand,
		identityCommand,
		rosterCommand,
	}
	return app
}

// Launch runs quorumctl with args (os.Args layout). A .env file in the
// working directory is loaded first, so its QUORUM_* entries act as flag
// fallbacks; variables already in the environment win.
func Launch(args []string) error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}
	return newApp().Run(args)
}
