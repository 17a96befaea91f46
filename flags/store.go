package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// StoreFlags select and tune the ledger backend.
func StoreFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "preset",
			Usage:  "Storage and epoch profile (default|memory|pebble|coarse)",
			Value:  "default",
			EnvVar: "QUORUM_PRESET",
		},
		cli.StringFlag{
			Name:   "db.backend",
			Usage:  "Override the preset's backend (memory|leveldb|pebble)",
			EnvVar: "QUORUM_DB_BACKEND",
		},
		cli.IntFlag{
			Name:   "cache",
			Usage:  "Megabytes of memory allocated to the backend cache",
			EnvVar: "QUORUM_CACHE",
		},
		cli.IntFlag{
			Name:  "handles",
			Usage: "Open file handles for the leveldb backend",
		},
	}
}
