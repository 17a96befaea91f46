package multisig

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-opera-quorum/quorum"
)

// Registry holds the voter roster and the quorum. Its mutators are
// unexported: the only way to reach them is a governed vote.
//
// The generation counts passed governance actions. It is part of every
// action identity, so a vote recorded under one generation can never be
// counted under another, even when the roster and the quorum end up where
// they were.
type Registry struct {
	voters     map[common.Address]struct{}
	size       int // cached cardinality of voters
	quorum     int
	mode       quorum.EpochMode
	generation uint64
}

func newRegistry(rules quorum.Rules) *Registry {
	r := &Registry{
		voters: make(map[common.Address]struct{}, len(rules.Voters)),
		quorum: rules.Quorum,
		mode:   rules.Epochs,
	}
	for _, v := range rules.Voters {
		r.voters[v] = struct{}{}
	}
	r.size = len(r.voters)
	return r
}

// IsVoter reports whether p is in the roster.
func (r *Registry) IsVoter(p common.Address) bool {
	_, ok := r.voters[p]
	return ok
}

// RosterSize returns the number of voters.
func (r *Registry) RosterSize() int {
	return r.size
}

// Quorum returns the number of votes an action needs to pass.
func (r *Registry) Quorum() int {
	return r.quorum
}

// Mode returns the epoch policy of the ledger.
func (r *Registry) Mode() quorum.EpochMode {
	return r.mode
}

// Generation returns the number of governance actions passed so far.
func (r *Registry) Generation() uint64 {
	return r.generation
}

// Voters returns the roster sorted by address.
func (r *Registry) Voters() []common.Address {
	out := make([]common.Address, 0, len(r.voters))
	for v := range r.voters {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

func (r *Registry) clone() *Registry {
	cp := *r
	cp.voters = make(map[common.Address]struct{}, len(r.voters))
	for v := range r.voters {
		cp.voters[v] = struct{}{}
	}
	return &cp
}

func (r *Registry) checkAddVoter(p common.Address) error {
	if p == (common.Address{}) {
		return fmt.Errorf("%w: zero address", ErrInvalidRosterChange)
	}
	if r.IsVoter(p) {
		return fmt.Errorf("%w: %s is already a voter", ErrInvalidRosterChange, p.Hex())
	}
	return nil
}

func (r *Registry) addVoter(p common.Address) error {
	if err := r.checkAddVoter(p); err != nil {
		return err
	}
	r.voters[p] = struct{}{}
	r.size++
	return nil
}

func (r *Registry) checkRemoveVoter(p common.Address) error {
	if !r.IsVoter(p) {
		return fmt.Errorf("%w: %s is not a voter", ErrInvalidRosterChange, p.Hex())
	}
	if r.size-1 < r.quorum {
		return fmt.Errorf("%w: removing %s leaves %d voters for quorum %d",
			ErrInvalidRosterChange, p.Hex(), r.size-1, r.quorum)
	}
	return nil
}

func (r *Registry) removeVoter(p common.Address) error {
	if err := r.checkRemoveVoter(p); err != nil {
		return err
	}
	delete(r.voters, p)
	r.size--
	return nil
}

func (r *Registry) checkChangeQuorum(q int) error {
	if q < quorum.MinQuorum || q > r.size {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidQuorum, q, quorum.MinQuorum, r.size)
	}
	// a no-op change would still pass and wipe every pending vote
	if r.mode == quorum.CoarseEpochs && q == r.quorum {
		return fmt.Errorf("%w: quorum is already %d", ErrInvalidQuorum, q)
	}
	return nil
}

func (r *Registry) changeQuorum(q int) error {
	if err := r.checkChangeQuorum(q); err != nil {
		return err
	}
	r.quorum = q
	return nil
}
