package multisig

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-opera-quorum/inter"
	"github.com/rony4d/go-opera-quorum/quorum"
)

// GovernanceOp is an action whose effect is a registry change. The set of
// implementations is closed: AddVoter, RemoveVoter, ChangeQuorum and their
// call-data wrappers. Submit them with Kernel.Govern; Kernel.Execute rejects
// them.
//
// A governance vote is checked against the in-flight registry before it is
// recorded, and applied to it when it passes. A pass also moves the
// governance generation, which retires every pending vote of every kind.
type GovernanceOp interface {
	inter.Action

	// check runs before the vote is recorded.
	check(r *Registry) error

	// apply runs when the vote passes, against the in-flight registry.
	apply(r *Registry) (Event, error)
}

// AddVoter adds Voter to the roster. It is rejected up front when Voter is
// the zero address or already a voter.
type AddVoter struct {
	Voter common.Address // voter to add
}

func (a AddVoter) Kind() inter.Kind        { return inter.Known(inter.TagAddVoter) }
func (a AddVoter) Args() []interface{}     { return []interface{}{a.Voter} }
func (a AddVoter) check(r *Registry) error { return r.checkAddVoter(a.Voter) }

func (a AddVoter) Validate() error {
	if a.Voter == (common.Address{}) {
		return fmt.Errorf("%w: zero address", ErrInvalidRosterChange)
	}
	return nil
}

func (a AddVoter) apply(r *Registry) (Event, error) {
	if err := r.addVoter(a.Voter); err != nil {
		return Event{}, err
	}
	return Event{Type: VoterAdded, Voter: a.Voter}, nil
}

// RemoveVoter removes Voter from the roster. It is rejected when Voter is
// not in the roster, or when the remaining roster could no longer reach the
// quorum. Votes the removed voter cast before the removal stop counting:
// they were recorded under an earlier governance generation.
type RemoveVoter struct {
	Voter common.Address // voter to remove
}

func (a RemoveVoter) Kind() inter.Kind        { return inter.Known(inter.TagRemoveVoter) }
func (a RemoveVoter) Args() []interface{}     { return []interface{}{a.Voter} }
func (a RemoveVoter) Validate() error         { return nil }
func (a RemoveVoter) check(r *Registry) error { return r.checkRemoveVoter(a.Voter) }

func (a RemoveVoter) apply(r *Registry) (Event, error) {
	if err := r.removeVoter(a.Voter); err != nil {
		return Event{}, err
	}
	return Event{Type: VoterRemoved, Voter: a.Voter}, nil
}

// ChangeQuorum sets a new quorum. The new value must lie between
// quorum.MinQuorum and the roster size. Under coarse epochs it must also
// differ from the current quorum.
type ChangeQuorum struct {
	Quorum int // votes needed from now on
}

func (a ChangeQuorum) Kind() inter.Kind        { return inter.Known(inter.TagChangeQuorum) }
func (a ChangeQuorum) Args() []interface{}     { return []interface{}{uint64(a.Quorum)} }
func (a ChangeQuorum) check(r *Registry) error { return r.checkChangeQuorum(a.Quorum) }

func (a ChangeQuorum) Validate() error {
	if a.Quorum < quorum.MinQuorum {
		return fmt.Errorf("%w: %d is below %d", ErrInvalidQuorum, a.Quorum, quorum.MinQuorum)
	}
	return nil
}

func (a ChangeQuorum) apply(r *Registry) (Event, error) {
	if err := r.changeQuorum(a.Quorum); err != nil {
		return Event{}, err
	}
	return Event{Type: QuorumChanged, Quorum: a.Quorum}, nil
}

// governedCall is a governance op voted on under its raw call data instead
// of its tag.
type governedCall struct {
	payload inter.Raw
	op      GovernanceOp
}

// GovernanceWithCallData returns op identified by payload (selector plus
// ABI arguments) rather than by its tag. Fine epochs then advance per
// selector. Payloads shorter than a selector fail validation with
// ErrDomainPrecondition.
func GovernanceWithCallData(payload inter.Raw, op GovernanceOp) GovernanceOp {
	return governedCall{payload: payload, op: op}
}

func (g governedCall) Kind() inter.Kind                 { return g.payload }
func (g governedCall) Args() []interface{}              { return nil }
func (g governedCall) check(r *Registry) error          { return g.op.check(r) }
func (g governedCall) apply(r *Registry) (Event, error) { return g.op.apply(r) }

func (g governedCall) Validate() error {
	if err := checkCallData(g.payload); err != nil {
		return err
	}
	return g.op.Validate()
}
