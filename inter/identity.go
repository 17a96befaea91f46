package inter

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// NoArgs is the argument digest of an action without arguments.
var NoArgs = common.Hash{}

// IdentityInput is the ordered tuple an action identity is derived from.
// Two identities are equal iff every field is equal.
type IdentityInput struct {
	Kind       Kind        // what is voted on
	ArgsDigest common.Hash // see ArgsDigest
	Epoch      idx.Epoch   // counter of Kind (or the global counter under coarse epochs)

	// Governance parameters in force when the vote is cast. Quorum and
	// RosterSize alone can return to earlier values after a sequence of
	// roster changes; Generation never does, as it grows by one on every
	// passed governance action.
	Quorum     int
	RosterSize int
	Generation uint64
}

// identityPreimage is the RLP shape that gets hashed.
type identityPreimage struct {
	Variant    uint8
	Key        []byte
	ArgsDigest common.Hash
	Epoch      uint64
	Quorum     uint64
	RosterSize uint64
	Generation uint64
}

// ComputeIdentity hashes the identity tuple. The governance generation is
// part of the preimage, so any governance change moves every pending action
// to a fresh identity without touching the ledger, and no later sequence of
// changes can lead back to it.
func ComputeIdentity(in IdentityInput) common.Hash {
	pre := identityPreimage{
		Variant:    uint8(in.Kind.Variant()),
		Key:        in.Kind.Key(),
		ArgsDigest: in.ArgsDigest,
		Epoch:      uint64(in.Epoch),
		Quorum:     uint64(in.Quorum),
		RosterSize: uint64(in.RosterSize),
		Generation: in.Generation,
	}
	enc, err := rlp.EncodeToBytes(&pre)
	if err != nil {
		// only fixed-size integers and byte strings; cannot fail
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}

// ArgsDigest returns the canonical digest of an action's arguments.
//
// Known kinds hash the RLP encoding of Args(). Raw kinds hash the call data
// after the selector. Either way, an action without arguments gets NoArgs.
func ArgsDigest(a Action) (common.Hash, error) {
	switch k := a.Kind().(type) {
	case Raw:
		args := k.Arguments()
		if len(args) == 0 {
			return NoArgs, nil
		}
		return crypto.Keccak256Hash(args), nil

	case Known:
		args := a.Args()
		if len(args) == 0 {
			return NoArgs, nil
		}
		enc, err := rlp.EncodeToBytes(args)
		if err != nil {
			return common.Hash{}, fmt.Errorf("encode %s arguments: %w", k, err)
		}
		return crypto.Keccak256Hash(enc), nil

	default:
		return common.Hash{}, fmt.Errorf("unsupported kind %T", k)
	}
}
