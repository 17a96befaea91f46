package multisig

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-quorum/inter"
	"github.com/rony4d/go-opera-quorum/quorum"
)

func newTestLedger(rules quorum.Rules) (*Ledger, *memorydb.Database) {
	db := memorydb.New()
	return &Ledger{
		db:     db,
		reg:    newRegistry(rules),
		epochs: newEpochs(rules.Epochs),
	}, db
}

func TestLedger_Vote(t *testing.T) {
	l, _ := newTestLedger(quorum.DefaultRules(alice, bob, carol))
	kind := inter.Known(inter.TagPause)
	id := common.HexToHash("0x01")

	r, err := l.Vote(id, alice, kind)
	require.NoError(t, err)
	require.Equal(t, Pending, r.Status)

	r, err = l.Vote(id, bob, kind)
	require.NoError(t, err)
	require.Equal(t, Passed, r.Status)
	require.Equal(t, 0, int(r.Epoch))
	require.Equal(t, 1, int(l.epochs.Current(kind)))

	_, err = l.Vote(id, bob, kind)
	require.ErrorIs(t, err, ErrDuplicateVote)
	_, err = l.Vote(id, mallory, kind)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestLedger_CorruptCount(t *testing.T) {
	l, db := newTestLedger(quorum.DefaultRules(alice, bob, carol))
	id := common.HexToHash("0x02")
	require.NoError(t, db.Put(countKey(id), []byte{1, 2, 3}))

	_, err := l.Vote(id, alice, inter.Known(inter.TagPause))
	require.ErrorIs(t, err, ErrCorruptState)
}

func TestState_RoundTrip(t *testing.T) {
	for _, rules := range []quorum.Rules{
		quorum.CoarseRules(alice, bob, carol),
		quorum.DefaultRules(alice, bob, carol),
	} {
		t.Run(rules.Epochs.String(), func(t *testing.T) {
			reg := newRegistry(rules)
			reg.generation = 5
			ep := newEpochs(rules.Epochs)
			ep.advance(inter.Known(inter.TagPause))
			ep.advance(inter.Raw{byte(inter.TagPause)})

			enc, err := encodeState("vault", reg, ep)
			require.NoError(t, err)

			name, reg2, ep2, err := decodeState(enc)
			require.NoError(t, err)
			require.Equal(t, "vault", name)
			require.Equal(t, reg, reg2)
			require.Equal(t, ep, ep2)
		})
	}

	_, _, _, err := decodeState([]byte{0xff})
	require.ErrorIs(t, err, ErrCorruptState)
}
