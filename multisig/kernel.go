// Package multisig implements the quorum-gated authorization kernel: a
// roster of voters must independently approve an action, and the vote that
// reaches the quorum runs the action's effect.
//
// Every call runs as one all-or-nothing step. The vote, the epoch advance
// and (on pass) the effect's own ledger work are staged in a journal; the
// journal is committed only if the effect succeeds. The epoch is advanced in
// the journal before the effect runs, so an effect that re-enters the kernel
// sees a world where the passing identity can no longer be voted on.
package multisig

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-opera-quorum/inter"
	"github.com/rony4d/go-opera-quorum/kvstore"
	"github.com/rony4d/go-opera-quorum/quorum"
)

// Effect is the external side effect of an action. It runs only when the
// vote passes, after the ledger and epoch are updated but before anything is
// committed. Returning an error aborts the whole call.
//
// The context passed to the effect carries the in-flight step; use it for
// any kernel call made from inside the effect.
type Effect func(ctx context.Context) error

// Kernel is the action dispatcher. It owns the registry, the epoch counters
// and the vote ledger of one store.
//
// Calls are serialized. Calls made from inside an effect, with the context
// the effect received, join the in-flight step instead of waiting for it.
type Kernel struct {
	mu    sync.Mutex // serializes outermost steps
	store kvstore.Store
	name  string
	log   logrus.FieldLogger
	feed  event.Feed

	stateMu sync.RWMutex // guards the committed snapshot below
	reg     *Registry
	epochs  *Epochs
}

// Genesis initializes an empty store with rules.
func Genesis(store kvstore.Store, rules quorum.Rules) error {
	if err := rules.Validate(); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}

	_, found, err := kvstore.Lookup(store, stateKey)
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	if found {
		return ErrAlreadyInitialized
	}

	enc, err := encodeState(rules.Name, newRegistry(rules), newEpochs(rules.Epochs))
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}

	j := kvstore.NewJournal(store)
	if err := j.Put(stateKey, enc); err != nil {
		return err
	}
	return j.Commit(store)
}

// Open attaches a kernel to an initialized store. A nil logger discards
// log output.
func Open(store kvstore.Store, log logrus.FieldLogger) (*Kernel, error) {
	raw, found, err := kvstore.Lookup(store, stateKey)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if !found {
		return nil, ErrNotInitialized
	}

	name, reg, ep, err := decodeState(raw)
	if err != nil {
		return nil, err
	}

	if log == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		log = discard
	}

	k := &Kernel{
		store:  store,
		name:   name,
		log:    log.WithField("ledger", name),
		reg:    reg,
		epochs: ep,
	}
	k.log.WithFields(logrus.Fields{
		"voters": reg.RosterSize(),
		"quorum": reg.Quorum(),
		"epochs": reg.Mode().String(),
	}).Info("Opened quorum ledger")
	return k, nil
}

// New runs Genesis on store and opens it.
func New(store kvstore.Store, rules quorum.Rules, log logrus.FieldLogger) (*Kernel, error) {
	if err := Genesis(store, rules); err != nil {
		return nil, err
	}
	return Open(store, log)
}

// Name returns the ledger label set at genesis.
func (k *Kernel) Name() string {
	return k.name
}

func (k *Kernel) snapshot() (*Registry, *Epochs) {
	k.stateMu.RLock()
	defer k.stateMu.RUnlock()
	return k.reg, k.epochs
}

// IsVoter reports whether p is in the committed roster.
func (k *Kernel) IsVoter(p common.Address) bool {
	reg, _ := k.snapshot()
	return reg.IsVoter(p)
}

// RosterSize returns the committed roster size.
func (k *Kernel) RosterSize() int {
	reg, _ := k.snapshot()
	return reg.RosterSize()
}

// Quorum returns the committed quorum.
func (k *Kernel) Quorum() int {
	reg, _ := k.snapshot()
	return reg.Quorum()
}

// Voters returns the committed roster sorted by address.
func (k *Kernel) Voters() []common.Address {
	reg, _ := k.snapshot()
	return reg.Voters()
}

// Mode returns the epoch policy.
func (k *Kernel) Mode() quorum.EpochMode {
	reg, _ := k.snapshot()
	return reg.Mode()
}

// Generation returns the number of governance actions passed so far.
func (k *Kernel) Generation() uint64 {
	reg, _ := k.snapshot()
	return reg.Generation()
}

// Epoch returns the committed epoch of kind.
func (k *Kernel) Epoch(kind inter.Kind) idx.Epoch {
	_, ep := k.snapshot()
	return ep.Current(kind)
}

// Identity computes the identity a vote for action would be counted under
// right now. It records nothing.
func (k *Kernel) Identity(action inter.Action) (common.Hash, error) {
	reg, ep := k.snapshot()
	return identityOf(action, reg, ep)
}

func identityOf(action inter.Action, reg *Registry, ep *Epochs) (common.Hash, error) {
	digest, err := inter.ArgsDigest(action)
	if err != nil {
		return common.Hash{}, err
	}
	return inter.ComputeIdentity(inter.IdentityInput{
		Kind:       action.Kind(),
		ArgsDigest: digest,
		Epoch:      ep.Current(action.Kind()),
		Quorum:     reg.Quorum(),
		RosterSize: reg.RosterSize(),
		Generation: reg.Generation(),
	}), nil
}

// Execute votes for action on behalf of caller. If this vote reaches the
// quorum, effect runs and an ActionPassed event is emitted. A nil effect is
// allowed and simply records the pass.
//
// Governance actions are rejected with ErrDomainPrecondition: they must go
// through Govern, which applies the registry change and moves the
// governance generation.
func (k *Kernel) Execute(ctx context.Context, caller common.Address, action inter.Action, effect Effect) (Receipt, error) {
	if _, ok := action.(GovernanceOp); ok {
		return Receipt{}, fmt.Errorf("%w: %s must be submitted through Govern", ErrDomainPrecondition, action.Kind())
	}
	return k.run(ctx, caller, action, func(ctx context.Context, _ *step) (Event, error) {
		if effect != nil {
			if err := effect(ctx); err != nil {
				return Event{}, err
			}
		}
		return Event{Type: ActionPassed}, nil
	})
}

// Govern votes for a registry change on behalf of caller. The change is
// applied when the vote reaches the quorum, and the governance generation
// moves on with it: every vote pending at that point, of any kind, becomes
// unreachable for good.
func (k *Kernel) Govern(ctx context.Context, caller common.Address, op GovernanceOp) (Receipt, error) {
	return k.run(ctx, caller, op, func(_ context.Context, s *step) (Event, error) {
		ev, err := op.apply(s.reg)
		if err != nil {
			return Event{}, err
		}
		s.reg.generation++
		return ev, nil
	})
}

// step is one in-flight call: a journal over the committed store (or over
// the parent step, for calls made from inside an effect) plus private
// copies of the registry and epochs.
type step struct {
	parent *step
	db     *kvstore.Journal
	reg    *Registry
	epochs *Epochs
	dirty  bool // registry or epochs changed
	events []Event
	done   bool
}

type stepKey struct{ k *Kernel }

func (k *Kernel) stepFrom(ctx context.Context) *step {
	s, _ := ctx.Value(stepKey{k}).(*step)
	if s == nil || s.done {
		return nil
	}
	return s
}

type applyFunc func(ctx context.Context, s *step) (Event, error)

func (k *Kernel) run(ctx context.Context, caller common.Address, action inter.Action, apply applyFunc) (Receipt, error) {
	if parent := k.stepFrom(ctx); parent != nil {
		s := &step{
			parent: parent,
			db:     kvstore.NewJournal(parent.db),
			reg:    parent.reg.clone(),
			epochs: parent.epochs.clone(),
		}
		return k.exec(ctx, s, caller, action, apply)
	}

	s, rcpt, err := k.execOutermost(ctx, caller, action, apply)
	if err != nil {
		return Receipt{}, err
	}
	// emitted after unlock so subscribers may call back into the kernel
	for _, ev := range s.events {
		k.emit(ev)
	}
	return rcpt, nil
}

func (k *Kernel) execOutermost(ctx context.Context, caller common.Address, action inter.Action, apply applyFunc) (*step, Receipt, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	reg, ep := k.snapshot()
	s := &step{
		db:     kvstore.NewJournal(k.store),
		reg:    reg.clone(),
		epochs: ep.clone(),
	}
	rcpt, err := k.exec(ctx, s, caller, action, apply)
	return s, rcpt, err
}

func (k *Kernel) exec(ctx context.Context, s *step, caller common.Address, action inter.Action, apply applyFunc) (Receipt, error) {
	defer func() { s.done = true }()

	kind := action.Kind()
	if err := action.Validate(); err != nil {
		return Receipt{}, fmt.Errorf("%s: %w", kind, err)
	}
	if op, ok := action.(GovernanceOp); ok {
		if err := op.check(s.reg); err != nil {
			return Receipt{}, fmt.Errorf("%s: %w", kind, err)
		}
	}

	id, err := identityOf(action, s.reg, s.epochs)
	if err != nil {
		return Receipt{}, fmt.Errorf("%s: %w", kind, err)
	}

	ledger := &Ledger{db: s.db, reg: s.reg, epochs: s.epochs}
	rcpt, err := ledger.Vote(id, caller, kind)
	if err != nil {
		return Receipt{}, fmt.Errorf("%s: %w", kind, err)
	}

	logger := k.log.WithFields(logrus.Fields{
		"kind":     kind.String(),
		"identity": id.Hex(),
		"caller":   caller.Hex(),
		"votes":    rcpt.Votes,
		"quorum":   rcpt.Quorum,
	})

	if rcpt.Passed() {
		s.dirty = true

		ev, err := apply(context.WithValue(ctx, stepKey{k}, s), s)
		if err != nil {
			logger.WithError(err).Warn("Effect failed, vote rolled back")
			return Receipt{}, fmt.Errorf("%s: effect: %w", kind, err)
		}
		ev.Kind = kind
		ev.Identity = id
		ev.Epoch = rcpt.Epoch
		ev.Caller = caller
		s.events = append(s.events, ev)
	} else {
		logger.Debug("Vote recorded")
	}

	if err := k.commit(s); err != nil {
		return Receipt{}, err
	}
	return rcpt, nil
}

func (k *Kernel) commit(s *step) error {
	if s.dirty {
		enc, err := encodeState(k.name, s.reg, s.epochs)
		if err != nil {
			return fmt.Errorf("encode ledger state: %w", err)
		}
		if err := s.db.Put(stateKey, enc); err != nil {
			return err
		}
	}

	if p := s.parent; p != nil {
		if err := s.db.Replay(p.db); err != nil {
			return err
		}
		p.reg, p.epochs = s.reg, s.epochs
		p.dirty = p.dirty || s.dirty
		p.events = append(p.events, s.events...)
		return nil
	}

	if err := s.db.Commit(k.store); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}
	k.stateMu.Lock()
	k.reg, k.epochs = s.reg, s.epochs
	k.stateMu.Unlock()
	return nil
}
