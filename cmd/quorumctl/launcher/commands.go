package launcher

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-quorum/flags"
	"github.com/rony4d/go-opera-quorum/integration"
	"github.com/rony4d/go-opera-quorum/inter"
	"github.com/rony4d/go-opera-quorum/multisig"
	"github.com/rony4d/go-opera-quorum/multisig/contract"
	"github.com/rony4d/go-opera-quorum/quorum"
)

const actionNames = "pause, unpause, transfer, addVoter, removeVoter, changeQuorum"

var (
	initCommand = cli.Command{
		Action:    initLedger,
		Name:      "init",
		Usage:     "Create a new ledger in the datadir",
		ArgsUsage: " ",
		Flags:     flags.GenesisFlags(),
	}

	voteCommand = cli.Command{
		Action:    vote,
		Name:      "vote",
		Usage:     "Vote for an action on behalf of --from",
		ArgsUsage: "<action>",
		Flags:     flags.VoteFlags(),
		Description: `
Actions: ` + actionNames + `.
The action runs once enough voters have cast an identical vote.`,
	}

	callCommand = cli.Command{
		Action:    call,
		Name:      "call",
		Usage:     "Vote for ABI-encoded call data on behalf of --from",
		ArgsUsage: "<0x-calldata>",
		Flags:     flags.VoteFlags(),
	}

	identityCommand = cli.Command{
		Action:    identity,
		Name:      "identity",
		Usage:     "Print the identity a vote for <action> would be counted under",
		ArgsUsage: "<action>",
		Flags:     flags.VoteFlags(),
	}

	rosterCommand = cli.Command{
		Action: roster,
		Name:   "roster",
		Usage:  "Print the voters, quorum and epoch policy",
	}
)

// logTarget is the target quorumctl guards: it reports every effect in the
// log so operators can act on it.
type logTarget struct {
	log logrus.FieldLogger
}

func (t logTarget) Pause(context.Context) error {
	t.log.Warn("Target paused")
	return nil
}

func (t logTarget) Unpause(context.Context) error {
	t.log.Warn("Target unpaused")
	return nil
}

func (t logTarget) Transfer(_ context.Context, to common.Address, amount *big.Int) error {
	t.log.WithFields(logrus.Fields{"to": to.Hex(), "amount": amount}).Warn("Transfer released")
	return nil
}

// ledgerEnv is what every command but init operates on.
type ledgerEnv struct {
	cfg    Config
	log    *logrus.Logger
	kernel *multisig.Kernel
}

func withLedger(ctx *cli.Context, fn func(env *ledgerEnv) error) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := setupLogging(cfg.Logging, ctx.App.ErrWriter)
	if err != nil {
		return err
	}

	store, err := integration.OpenStore(cfg.DataDir, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	k, err := multisig.Open(store, log)
	if err != nil {
		return err
	}
	return fn(&ledgerEnv{cfg: cfg, log: log, kernel: k})
}

func initLedger(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := setupLogging(cfg.Logging, ctx.App.ErrWriter)
	if err != nil {
		return err
	}

	voters := make([]common.Address, 0, len(cfg.Genesis.Voters))
	for _, v := range cfg.Genesis.Voters {
		addr, err := parseAddress("voter", v)
		if err != nil {
			return err
		}
		voters = append(voters, addr)
	}

	rules := quorum.DefaultRules(voters...)
	if cfg.Genesis.Name != "" {
		rules.Name = cfg.Genesis.Name
	}
	rules.Epochs = cfg.Store.Epochs
	if cfg.Genesis.Quorum != 0 {
		rules.Quorum = cfg.Genesis.Quorum
	}

	store, err := integration.OpenStore(cfg.DataDir, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := multisig.Genesis(store, rules); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"datadir": cfg.DataDir,
		"backend": cfg.Store.Backend,
	}).Info("Ledger created")
	fmt.Fprintln(ctx.App.Writer, rules.String())
	return nil
}

func vote(ctx *cli.Context) error {
	return withLedger(ctx, func(env *ledgerEnv) error {
		caller, err := parseAddress("--from", ctx.String("from"))
		if err != nil {
			return err
		}
		action, err := actionFromArgs(ctx)
		if err != nil {
			return err
		}

		g := multisig.NewGuard(env.kernel, logTarget{log: env.log})
		background := context.Background()

		var rcpt multisig.Receipt
		switch a := action.(type) {
		case multisig.Pause:
			rcpt, err = g.Pause(background, caller)
		case multisig.Unpause:
			rcpt, err = g.Unpause(background, caller)
		case multisig.Transfer:
			rcpt, err = g.Transfer(background, caller, a.To, a.Amount)
		case multisig.GovernanceOp:
			rcpt, err = env.kernel.Govern(background, caller, a)
		default:
			err = fmt.Errorf("unsupported action %T", action)
		}
		if err != nil {
			return err
		}
		printReceipt(ctx, rcpt)
		return nil
	})
}

func call(ctx *cli.Context) error {
	return withLedger(ctx, func(env *ledgerEnv) error {
		caller, err := parseAddress("--from", ctx.String("from"))
		if err != nil {
			return err
		}
		if ctx.NArg() != 1 {
			return fmt.Errorf("expected exactly one call data argument")
		}
		input, err := hexutil.Decode(ctx.Args().First())
		if err != nil {
			return fmt.Errorf("call data: %w", err)
		}

		r := contract.NewRouter(env.kernel, logTarget{log: env.log})
		rcpt, err := r.Call(context.Background(), caller, input)
		if err != nil {
			return err
		}
		printReceipt(ctx, rcpt)
		return nil
	})
}

func identity(ctx *cli.Context) error {
	return withLedger(ctx, func(env *ledgerEnv) error {
		action, err := actionFromArgs(ctx)
		if err != nil {
			return err
		}
		id, err := env.kernel.Identity(action)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, id.Hex())
		return nil
	})
}

func roster(ctx *cli.Context) error {
	return withLedger(ctx, func(env *ledgerEnv) error {
		k := env.kernel
		w := ctx.App.Writer
		fmt.Fprintf(w, "name:    %s\n", k.Name())
		fmt.Fprintf(w, "quorum:  %d of %d\n", k.Quorum(), k.RosterSize())
		fmt.Fprintf(w, "epochs:  %s\n", k.Mode())
		fmt.Fprintf(w, "changes: %d\n", k.Generation())
		for _, v := range k.Voters() {
			fmt.Fprintf(w, "voter:   %s\n", v.Hex())
		}
		return nil
	})
}

func printReceipt(ctx *cli.Context, r multisig.Receipt) {
	fmt.Fprintf(ctx.App.Writer, "%s %s %d/%d %s\n", r.Kind, r.Identity.Hex(), r.Votes, r.Quorum, r.Status)
}

// actionFromArgs builds the action named by the first argument from the
// vote flags.
func actionFromArgs(ctx *cli.Context) (inter.Action, error) {
	if ctx.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one action (%s)", actionNames)
	}
	tag, ok := inter.ParseTag(ctx.Args().First())
	if !ok {
		return nil, fmt.Errorf("unknown action %q (valid: %s)", ctx.Args().First(), actionNames)
	}

	switch tag {
	case inter.TagPause:
		return multisig.Pause{}, nil
	case inter.TagUnpause:
		return multisig.Unpause{}, nil
	case inter.TagTransfer:
		to, err := parseAddress("--to", ctx.String("to"))
		if err != nil {
			return nil, err
		}
		amount, ok := math.ParseBig256(ctx.String("amount"))
		if !ok {
			return nil, fmt.Errorf("invalid --amount %q", ctx.String("amount"))
		}
		return multisig.Transfer{To: to, Amount: amount}, nil
	case inter.TagAddVoter, inter.TagRemoveVoter:
		voter, err := parseAddress("--target", ctx.String("target"))
		if err != nil {
			return nil, err
		}
		if tag == inter.TagAddVoter {
			return multisig.AddVoter{Voter: voter}, nil
		}
		return multisig.RemoveVoter{Voter: voter}, nil
	case inter.TagChangeQuorum:
		return multisig.ChangeQuorum{Quorum: ctx.Int("threshold")}, nil
	}
	return nil, fmt.Errorf("unsupported action %s", tag)
}

func parseAddress(what, s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", what, s)
	}
	return common.HexToAddress(s), nil
}
