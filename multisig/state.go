package multisig

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-opera-quorum/quorum"
)

// Key layout:
//
//	g                 -> rlp(stateRLP): roster, quorum, generation, epochs
//	c | identity      -> big-endian uint64 vote count
//	p | identity | pk -> participation marker
var (
	stateKey    = []byte("g")
	countPrefix = []byte("c")
	votedPrefix = []byte("p")
)

func countKey(id common.Hash) []byte {
	key := make([]byte, 0, len(countPrefix)+common.HashLength)
	key = append(key, countPrefix...)
	return append(key, id[:]...)
}

func votedKey(id common.Hash, p common.Address) []byte {
	key := make([]byte, 0, len(votedPrefix)+common.HashLength+common.AddressLength)
	key = append(key, votedPrefix...)
	key = append(key, id[:]...)
	return append(key, p[:]...)
}

type epochEntry struct {
	Key   []byte
	Epoch uint64
}

// stateRLP is the persisted form of the registry and the epoch counters.
// Both are small and change together on every pass, so they live in one
// record.
type stateRLP struct {
	Name       string
	Mode       uint8
	Quorum     uint64
	RosterSize uint64
	Voters     []common.Address
	Generation uint64
	Epochs     []epochEntry
}

func encodeState(name string, reg *Registry, ep *Epochs) ([]byte, error) {
	s := stateRLP{
		Name:       name,
		Mode:       uint8(reg.mode),
		Quorum:     uint64(reg.quorum),
		RosterSize: uint64(reg.size),
		Voters:     reg.Voters(),
		Generation: reg.generation,
		Epochs:     make([]epochEntry, 0, len(ep.counters)),
	}
	for k, v := range ep.counters {
		s.Epochs = append(s.Epochs, epochEntry{Key: []byte(k), Epoch: uint64(v)})
	}
	sort.Slice(s.Epochs, func(i, j int) bool {
		return bytes.Compare(s.Epochs[i].Key, s.Epochs[j].Key) < 0
	})
	return rlp.EncodeToBytes(&s)
}

func decodeState(raw []byte) (string, *Registry, *Epochs, error) {
	var s stateRLP
	if err := rlp.DecodeBytes(raw, &s); err != nil {
		return "", nil, nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	mode := quorum.EpochMode(s.Mode)
	if mode > quorum.CoarseEpochs {
		return "", nil, nil, fmt.Errorf("%w: epoch mode %d", ErrCorruptState, s.Mode)
	}

	reg := newRegistry(quorum.Rules{Voters: s.Voters, Quorum: int(s.Quorum), Epochs: mode})
	if uint64(reg.size) != s.RosterSize {
		return "", nil, nil, fmt.Errorf("%w: roster size %d, %d distinct voters", ErrCorruptState, s.RosterSize, reg.size)
	}
	reg.generation = s.Generation

	ep := newEpochs(mode)
	for _, e := range s.Epochs {
		ep.counters[string(e.Key)] = idx.Epoch(e.Epoch)
	}
	return s.Name, reg, ep, nil
}
