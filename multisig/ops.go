package multisig

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-opera-quorum/inter"
)

// Target is the external collaborator that performs the sensitive
// operations once a vote passes.
//
// Each method runs inside the step of the vote that reached the quorum, with
// the kernel lock held. Returning an error aborts that whole step: the
// passing vote, the epoch advance and any ledger work the method did through
// the context it received are all dropped, and the voter may vote again.
// Methods must not call back into the kernel with a context other than the
// one they are given.
type Target interface {
	Pause(ctx context.Context) error
	Unpause(ctx context.Context) error
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error
}

// Pause halts the target. It takes no arguments, so every pause vote in the
// same epoch and governance generation counts towards one identity.
type Pause struct{}

func (Pause) Kind() inter.Kind    { return inter.Known(inter.TagPause) }
func (Pause) Args() []interface{} { return nil }
func (Pause) Validate() error     { return nil }

// Unpause resumes the target.
type Unpause struct{}

func (Unpause) Kind() inter.Kind    { return inter.Known(inter.TagUnpause) }
func (Unpause) Args() []interface{} { return nil }
func (Unpause) Validate() error     { return nil }

// Transfer moves Amount to To. Both fields are part of the identity: votes
// for different recipients or amounts are votes for different actions.
type Transfer struct {
	To     common.Address // recipient, must not be the zero address
	Amount *big.Int       // must be positive
}

func (t Transfer) Kind() inter.Kind    { return inter.Known(inter.TagTransfer) }
func (t Transfer) Args() []interface{} { return []interface{}{t.To, t.Amount} }

func (t Transfer) Validate() error {
	if t.To == (common.Address{}) {
		return fmt.Errorf("%w: zero recipient", ErrDomainPrecondition)
	}
	if t.Amount == nil || t.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrDomainPrecondition)
	}
	return nil
}

// callAction is an action voted on under its raw call data.
type callAction struct {
	payload inter.Raw
	inner   inter.Action
}

// WithCallData returns action identified by payload (selector plus ABI
// arguments) rather than by its tag.
//
// The identity then covers the payload bytes only; the caller is expected to
// have decoded payload into action. Under fine epochs the action advances
// the counter of its selector, not the counter of the wrapped tag.
// Validation is the wrapped action's, plus a check that payload holds at
// least a full selector. Governance ops stay governance ops, see
// GovernanceWithCallData.
func WithCallData(payload inter.Raw, action inter.Action) inter.Action {
	if op, ok := action.(GovernanceOp); ok {
		return GovernanceWithCallData(payload, op)
	}
	return callAction{payload: payload, inner: action}
}

func (c callAction) Kind() inter.Kind    { return c.payload }
func (c callAction) Args() []interface{} { return nil }

func (c callAction) Validate() error {
	if err := checkCallData(c.payload); err != nil {
		return err
	}
	return c.inner.Validate()
}

func checkCallData(payload inter.Raw) error {
	if len(payload) < inter.SelectorLength {
		return fmt.Errorf("%w: call data of %d bytes has no selector", ErrDomainPrecondition, len(payload))
	}
	return nil
}

// Guard exposes one entry point per sensitive operation, each gated by the
// kernel and wired to the target.
//
// Every method casts one vote on behalf of caller and returns its receipt.
// The target is only reached by the vote that reaches the quorum; all other
// votes just record participation. Errors wrap the sentinels in errors.go.
type Guard struct {
	kernel *Kernel
	target Target
}

// NewGuard wires target behind kernel.
func NewGuard(kernel *Kernel, target Target) *Guard {
	return &Guard{kernel: kernel, target: target}
}

// Kernel returns the underlying kernel.
func (g *Guard) Kernel() *Kernel {
	return g.kernel
}

// Pause votes to pause the target.
func (g *Guard) Pause(ctx context.Context, caller common.Address) (Receipt, error) {
	return g.kernel.Execute(ctx, caller, Pause{}, g.target.Pause)
}

// Unpause votes to unpause the target.
func (g *Guard) Unpause(ctx context.Context, caller common.Address) (Receipt, error) {
	return g.kernel.Execute(ctx, caller, Unpause{}, g.target.Unpause)
}

// Transfer votes to move amount to to. The amount is copied, so the caller
// may reuse it once Transfer returns.
func (g *Guard) Transfer(ctx context.Context, caller, to common.Address, amount *big.Int) (Receipt, error) {
	op := Transfer{To: to}
	if amount != nil {
		op.Amount = new(big.Int).Set(amount)
	}
	return g.kernel.Execute(ctx, caller, op, func(ctx context.Context) error {
		return g.target.Transfer(ctx, op.To, op.Amount)
	})
}

// AddVoter votes to add voter to the roster. Like every governance
// operation it goes through Kernel.Govern and has no target effect.
func (g *Guard) AddVoter(ctx context.Context, caller, voter common.Address) (Receipt, error) {
	return g.kernel.Govern(ctx, caller, AddVoter{Voter: voter})
}

// RemoveVoter votes to remove voter from the roster.
func (g *Guard) RemoveVoter(ctx context.Context, caller, voter common.Address) (Receipt, error) {
	return g.kernel.Govern(ctx, caller, RemoveVoter{Voter: voter})
}

// ChangeQuorum votes to set a new quorum.
func (g *Guard) ChangeQuorum(ctx context.Context, caller common.Address, q int) (Receipt, error) {
	return g.kernel.Govern(ctx, caller, ChangeQuorum{Quorum: q})
}
