package multisig

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"

	"github.com/rony4d/go-opera-quorum/inter"
	"github.com/rony4d/go-opera-quorum/kvstore"
)

// Status is the outcome of a single vote.
type Status uint8

const (
	// Pending: the vote was recorded but the quorum is not reached yet.
	Pending Status = iota + 1
	// Passed: this vote reached the quorum. The identity is now terminal.
	Passed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Passed:
		return "passed"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Receipt describes a recorded vote. It is the only place a vote count is
// ever reported; the ledger has no query for pending counts.
type Receipt struct {
	Identity common.Hash
	Kind     inter.Kind
	Epoch    idx.Epoch // epoch the identity was computed under
	Votes    int
	Quorum   int
	Status   Status
}

// Passed reports whether this vote reached the quorum.
func (r Receipt) Passed() bool {
	return r.Status == Passed
}

type ledgerDB interface {
	ethdb.KeyValueReader
	ethdb.KeyValueWriter
}

// Ledger records vote counts and per-voter participation for identities.
// Records are created on first vote and never deleted; once any identity
// input moves on, the old record is simply unreachable.
type Ledger struct {
	db     ledgerDB
	reg    *Registry
	epochs *Epochs
}

// Vote records p's vote for id. On reaching the quorum it advances the
// epoch of kind before returning, so nothing that runs afterwards can
// produce id again.
func (l *Ledger) Vote(id common.Hash, p common.Address, kind inter.Kind) (Receipt, error) {
	if !l.reg.IsVoter(p) {
		return Receipt{}, fmt.Errorf("%w: %s", ErrNotAuthorized, p.Hex())
	}

	voted, err := l.db.Has(votedKey(id, p))
	if err != nil {
		return Receipt{}, fmt.Errorf("read participation: %w", err)
	}
	if voted {
		return Receipt{}, fmt.Errorf("%w: %s on %s", ErrDuplicateVote, p.Hex(), id.Hex())
	}

	count, err := l.count(id)
	if err != nil {
		return Receipt{}, err
	}
	count++

	if err := l.db.Put(countKey(id), bigendian.Uint64ToBytes(count)); err != nil {
		return Receipt{}, fmt.Errorf("write count: %w", err)
	}
	if err := l.db.Put(votedKey(id, p), []byte{1}); err != nil {
		return Receipt{}, fmt.Errorf("write participation: %w", err)
	}

	rcpt := Receipt{
		Identity: id,
		Kind:     kind,
		Epoch:    l.epochs.Current(kind),
		Votes:    int(count),
		Quorum:   l.reg.Quorum(),
		Status:   Pending,
	}
	if rcpt.Votes >= rcpt.Quorum {
		l.epochs.advance(kind)
		rcpt.Status = Passed
	}
	return rcpt, nil
}

func (l *Ledger) count(id common.Hash) (uint64, error) {
	raw, found, err := kvstore.Lookup(l.db, countKey(id))
	if err != nil {
		return 0, fmt.Errorf("read count: %w", err)
	}
	if !found {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("%w: count of %s is %d bytes", ErrCorruptState, id.Hex(), len(raw))
	}
	return bigendian.BytesToUint64(raw), nil
}
