package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// GenesisFlags configure a new ledger.
func GenesisFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "name",
			Usage: "Ledger label, recorded at genesis and shown in logs",
		},
		cli.StringSliceFlag{
			Name:  "voter",
			Usage: "Voter address (repeat for every voter)",
		},
		cli.IntFlag{
			Name:  "quorum",
			Usage: "Votes needed to pass an action (0 = simple majority)",
		},
		cli.StringFlag{
			Name:  "epochs",
			Usage: "Epoch policy (fine|coarse); overrides the preset",
		},
	}
}

// VoteFlags identify the caller and the arguments of the voted action.
func VoteFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "from",
			Usage:  "Address of the voting caller",
			EnvVar: "QUORUM_FROM",
		},
		cli.StringFlag{
			Name:  "to",
			Usage: "Transfer recipient",
		},
		cli.StringFlag{
			Name:  "amount",
			Usage: "Transfer amount (decimal or 0x-prefixed hex)",
		},
		cli.StringFlag{
			Name:  "target",
			Usage: "Voter to add or remove",
		},
		cli.IntFlag{
			Name:  "threshold",
			Usage: "New quorum for changeQuorum",
		},
	}
}
