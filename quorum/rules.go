// Package quorum defines the genesis rules of a quorum ledger: the initial
// voter roster, the initial quorum, and the epoch policy that decides how
// far a passed vote reaches when it invalidates other pending votes.
//
// The Rules type is consumed once, when a ledger is created. After that the
// roster and quorum only change through governed votes, and the epoch policy
// never changes at all (mixing policies on one ledger is not safe).
package quorum

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MinQuorum is the smallest quorum a ledger accepts. A quorum of one would
// let a single voter act alone, which defeats the point of the ledger.
const MinQuorum = 2

// Genesis validation errors.
var (
	ErrRosterTooSmall   = errors.New("roster must contain at least two voters")
	ErrQuorumOutOfRange = errors.New("quorum out of range")
	ErrDuplicateVoter   = errors.New("duplicate voter in roster")
	ErrZeroVoter        = errors.New("zero address cannot be a voter")
	ErrUnknownEpochMode = errors.New("unknown epoch mode")
)

// EpochMode selects how epochs invalidate pending votes.
type EpochMode uint8

const (
	// FineEpochs keeps one counter per action kind. A pass only resets the
	// pending votes of the kind that passed.
	FineEpochs EpochMode = iota

	// CoarseEpochs keeps one counter for the whole ledger. Any pass resets
	// every pending vote of every kind.
	CoarseEpochs
)

// String returns the config name of the mode.
func (m EpochMode) String() string {
	switch m {
	case FineEpochs:
		return "fine"
	case CoarseEpochs:
		return "coarse"
	default:
		return fmt.Sprintf("EpochMode(%d)", uint8(m))
	}
}

// ParseEpochMode parses "fine" or "coarse" (case-insensitive).
func ParseEpochMode(s string) (EpochMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fine", "":
		return FineEpochs, nil
	case "coarse":
		return CoarseEpochs, nil
	default:
		return 0, fmt.Errorf("%w: %q (valid: fine, coarse)", ErrUnknownEpochMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler so modes read naturally in
// TOML and JSON config.
func (m EpochMode) MarshalText() ([]byte, error) {
	if m > CoarseEpochs {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEpochMode, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *EpochMode) UnmarshalText(text []byte) error {
	mode, err := ParseEpochMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Rules describes the initial state of a quorum ledger.
type Rules struct {
	// Name is a human-readable label, surfaced in logs only.
	Name string

	// Voters is the genesis roster. Order is irrelevant.
	Voters []common.Address

	// Quorum is the number of distinct votes an action needs to pass.
	Quorum int

	// Epochs selects fine (per-kind) or coarse (global) invalidation.
	Epochs EpochMode
}

// DefaultRules returns rules for the given roster with a simple-majority
// quorum (never below MinQuorum) and fine epochs.
func DefaultRules(voters ...common.Address) Rules {
	q := len(voters)/2 + 1
	if q < MinQuorum {
		q = MinQuorum
	}
	return Rules{
		Name:   "default",
		Voters: voters,
		Quorum: q,
		Epochs: FineEpochs,
	}
}

// CoarseRules is DefaultRules with a single global epoch.
func CoarseRules(voters ...common.Address) Rules {
	r := DefaultRules(voters...)
	r.Name = "coarse"
	r.Epochs = CoarseEpochs
	return r
}

// Validate checks the genesis invariants: more than one voter, no zero or
// repeated voters, and MinQuorum <= Quorum <= len(Voters).
func (r Rules) Validate() error {
	if len(r.Voters) < 2 {
		return fmt.Errorf("%w: have %d", ErrRosterTooSmall, len(r.Voters))
	}

	seen := make(map[common.Address]struct{}, len(r.Voters))
	for _, v := range r.Voters {
		if v == (common.Address{}) {
			return ErrZeroVoter
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateVoter, v.Hex())
		}
		seen[v] = struct{}{}
	}

	if r.Quorum < MinQuorum || r.Quorum > len(r.Voters) {
		return fmt.Errorf("%w: quorum %d with %d voters", ErrQuorumOutOfRange, r.Quorum, len(r.Voters))
	}

	if r.Epochs > CoarseEpochs {
		return fmt.Errorf("%w: %d", ErrUnknownEpochMode, uint8(r.Epochs))
	}
	return nil
}

// Copy returns a deep copy of the rules.
func (r Rules) Copy() Rules {
	cp := r
	cp.Voters = make([]common.Address, len(r.Voters))
	copy(cp.Voters, r.Voters)
	return cp
}

// String returns a JSON representation for logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
