package multisig

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-quorum/inter"
	"github.com/rony4d/go-opera-quorum/quorum"
)

// globalEpoch is the single counter key used under coarse epochs.
const globalEpoch = ""

// Epochs holds the counters embedded in action identities. A counter only
// moves when a vote passes, and then by exactly one.
type Epochs struct {
	mode     quorum.EpochMode
	counters map[string]idx.Epoch
}

func newEpochs(mode quorum.EpochMode) *Epochs {
	return &Epochs{
		mode:     mode,
		counters: make(map[string]idx.Epoch),
	}
}

// key names the counter of kind. Under fine epochs it is the variant byte
// followed by the kind key, so a tag and a selector never share a counter.
func (e *Epochs) key(kind inter.Kind) string {
	if e.mode == quorum.CoarseEpochs {
		return globalEpoch
	}
	k := kind.Key()
	key := make([]byte, 0, 1+len(k))
	key = append(key, byte(kind.Variant()))
	return string(append(key, k...))
}

// Current returns the epoch identities of this kind are computed under.
// Kinds that never passed are at epoch 0.
func (e *Epochs) Current(kind inter.Kind) idx.Epoch {
	return e.counters[e.key(kind)]
}

// advance bumps the counter of kind and returns the new value. The ledger
// calls it exactly once per passed vote.
func (e *Epochs) advance(kind inter.Kind) idx.Epoch {
	k := e.key(kind)
	e.counters[k]++
	return e.counters[k]
}

func (e *Epochs) clone() *Epochs {
	cp := &Epochs{
		mode:     e.mode,
		counters: make(map[string]idx.Epoch, len(e.counters)),
	}
	for k, v := range e.counters {
		cp.counters[k] = v
	}
	return cp
}
