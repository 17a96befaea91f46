package contract

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-quorum/inter"
	"github.com/rony4d/go-opera-quorum/kvstore"
	"github.com/rony4d/go-opera-quorum/multisig"
	"github.com/rony4d/go-opera-quorum/quorum"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol = common.HexToAddress("0x00000000000000000000000000000000000ca201")
	dave  = common.HexToAddress("0x0000000000000000000000000000000000000da7")
)

type countingTarget struct {
	pauses, unpauses int
	sent             map[common.Address]*big.Int
}

func (t *countingTarget) Pause(context.Context) error   { t.pauses++; return nil }
func (t *countingTarget) Unpause(context.Context) error { t.unpauses++; return nil }

func (t *countingTarget) Transfer(_ context.Context, to common.Address, amount *big.Int) error {
	if t.sent == nil {
		t.sent = make(map[common.Address]*big.Int)
	}
	t.sent[to] = amount
	return nil
}

func newTestRouter(t *testing.T) (*Router, *multisig.Kernel, *countingTarget) {
	t.Helper()
	k, err := multisig.New(kvstore.NewMemory(), quorum.DefaultRules(alice, bob, carol), nil)
	require.NoError(t, err)
	target := &countingTarget{}
	return NewRouter(k, target), k, target
}

func mustPack(t *testing.T, name string, args ...interface{}) []byte {
	t.Helper()
	input, err := Pack(name, args...)
	require.NoError(t, err)
	return input
}

func TestMethodIDs(t *testing.T) {
	for _, tc := range []struct {
		sig string
		id  []byte
	}{
		{"pause()", PauseMethodID},
		{"unpause()", UnpauseMethodID},
		{"transfer(address,uint256)", TransferMethodID},
		{"addVoter(address)", AddVoterMethodID},
		{"removeVoter(address)", RemoveVoterMethodID},
		{"changeQuorum(uint256)", ChangeQuorumMethodID},
	} {
		t.Run(tc.sig, func(t *testing.T) {
			require.Equal(t, crypto.Keccak256([]byte(tc.sig))[:4], tc.id)
		})
	}
}

func TestRouter_Pause(t *testing.T) {
	ctx := context.Background()
	r, k, target := newTestRouter(t)
	input := mustPack(t, "pause")

	rcpt, err := r.Call(ctx, alice, input)
	require.NoError(t, err)
	require.Equal(t, multisig.Pending, rcpt.Status)
	require.Equal(t, inter.Raw(input), rcpt.Kind)

	rcpt, err = r.Call(ctx, bob, input)
	require.NoError(t, err)
	require.True(t, rcpt.Passed())
	require.Equal(t, 1, target.pauses)
	require.Equal(t, 1, int(k.Epoch(inter.Raw(PauseMethodID))))

	// call-data kinds and tagged kinds count separately
	require.Equal(t, 0, int(k.Epoch(inter.Known(inter.TagPause))))
}

func TestRouter_TransferArgumentsSplitVotes(t *testing.T) {
	ctx := context.Background()
	r, _, target := newTestRouter(t)

	_, err := r.Call(ctx, alice, mustPack(t, "transfer", dave, big.NewInt(10)))
	require.NoError(t, err)
	rcpt, err := r.Call(ctx, bob, mustPack(t, "transfer", dave, big.NewInt(11)))
	require.NoError(t, err)
	require.Equal(t, multisig.Pending, rcpt.Status)

	rcpt, err = r.Call(ctx, bob, mustPack(t, "transfer", dave, big.NewInt(10)))
	require.NoError(t, err)
	require.True(t, rcpt.Passed())
	require.Equal(t, int64(10), target.sent[dave].Int64())
}

func TestRouter_Governance(t *testing.T) {
	ctx := context.Background()
	r, k, _ := newTestRouter(t)

	input := mustPack(t, "addVoter", dave)
	_, err := r.Call(ctx, alice, input)
	require.NoError(t, err)
	_, err = r.Call(ctx, carol, input)
	require.NoError(t, err)
	require.True(t, k.IsVoter(dave))

	input = mustPack(t, "changeQuorum", big.NewInt(4))
	for _, v := range []common.Address{alice, bob} {
		_, err = r.Call(ctx, v, input)
		require.NoError(t, err)
	}
	require.Equal(t, 4, k.Quorum())

	_, err = r.Call(ctx, alice, mustPack(t, "removeVoter", dave))
	require.ErrorIs(t, err, multisig.ErrInvalidRosterChange)
}

func TestRouter_RejectsMalformedInput(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRouter(t)

	transfer := mustPack(t, "transfer", dave, big.NewInt(1))
	dirty := common.CopyBytes(transfer)
	dirty[4] = 0x01 // high bytes of the address word

	for _, tc := range []struct {
		name  string
		input []byte
		want  error
	}{
		{"empty", nil, multisig.ErrDomainPrecondition},
		{"short selector", []byte{0x01, 0x02}, multisig.ErrDomainPrecondition},
		{"unknown selector", []byte{0xde, 0xad, 0xbe, 0xef}, multisig.ErrDomainPrecondition},
		{"truncated args", transfer[:20], multisig.ErrDomainPrecondition},
		{"trailing bytes", append(mustPack(t, "pause"), 0x00), multisig.ErrDomainPrecondition},
		{"dirty address", dirty, multisig.ErrDomainPrecondition},
		{"zero recipient", mustPack(t, "transfer", common.Address{}, big.NewInt(1)), multisig.ErrDomainPrecondition},
		{"huge quorum", mustPack(t, "changeQuorum", new(big.Int).Lsh(big.NewInt(1), 200)), multisig.ErrInvalidQuorum},
		{"quorum too small", mustPack(t, "changeQuorum", big.NewInt(1)), multisig.ErrInvalidQuorum},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Call(ctx, alice, tc.input)
			require.ErrorIs(t, err, tc.want)
		})
	}
}
