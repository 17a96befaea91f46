// Package contract exposes a quorum kernel through an ABI call-data
// interface. Each call is voted on under its raw call data, so its kind is
// the 4-byte method selector and its argument digest covers the encoded
// arguments.
package contract

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-opera-quorum/inter"
	"github.com/rony4d/go-opera-quorum/multisig"
)

// ContractABI is the JSON ABI of the guarded operations:
//   - pause()
//   - unpause()
//   - transfer(address to, uint256 amount)
//   - addVoter(address voter)
//   - removeVoter(address voter)
//   - changeQuorum(uint256 quorum)
const ContractABI = `[
{"type":"function","name":"pause","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
{"type":"function","name":"unpause","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
{"type":"function","name":"addVoter","inputs":[{"name":"voter","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
{"type":"function","name":"removeVoter","inputs":[{"name":"voter","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
{"type":"function","name":"changeQuorum","inputs":[{"name":"quorum","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"}
]`

var (
	parsedABI abi.ABI

	PauseMethodID        []byte // pause()
	UnpauseMethodID      []byte // unpause()
	TransferMethodID     []byte // transfer(address,uint256)
	AddVoterMethodID     []byte // addVoter(address)
	RemoveVoterMethodID  []byte // removeVoter(address)
	ChangeQuorumMethodID []byte // changeQuorum(uint256)
)

func init() {
	var err error
	parsedABI, err = abi.JSON(strings.NewReader(ContractABI))
	if err != nil {
		panic(err)
	}

	for name, constID := range map[string]*[]byte{
		"pause":        &PauseMethodID,
		"unpause":      &UnpauseMethodID,
		"transfer":     &TransferMethodID,
		"addVoter":     &AddVoterMethodID,
		"removeVoter":  &RemoveVoterMethodID,
		"changeQuorum": &ChangeQuorumMethodID,
	} {
		method, exist := parsedABI.Methods[name]
		if !exist {
			panic("unknown quorum contract method " + name)
		}
		*constID = make([]byte, len(method.ID))
		copy(*constID, method.ID)
	}
}

// Pack encodes a call to the named method.
func Pack(name string, args ...interface{}) ([]byte, error) {
	return parsedABI.Pack(name, args...)
}

// Router decodes call data and submits it to the kernel. Effects go to
// target.
type Router struct {
	kernel *multisig.Kernel
	target multisig.Target
}

// NewRouter wires target behind kernel.
func NewRouter(kernel *multisig.Kernel, target multisig.Target) *Router {
	return &Router{kernel: kernel, target: target}
}

// Call casts caller's vote for the operation encoded in input.
//
// Input must be a known selector followed by the canonical ABI encoding of
// its arguments. Anything else is rejected with ErrDomainPrecondition before
// a vote is recorded, so two encodings of the same call can never split the
// vote across identities.
func (r *Router) Call(ctx context.Context, caller common.Address, input []byte) (multisig.Receipt, error) {
	if len(input) < inter.SelectorLength {
		return multisig.Receipt{}, fmt.Errorf("%w: call data shorter than a selector", multisig.ErrDomainPrecondition)
	}
	method, err := parsedABI.MethodById(input[:inter.SelectorLength])
	if err != nil {
		return multisig.Receipt{}, fmt.Errorf("%w: %v", multisig.ErrDomainPrecondition, err)
	}

	args, err := method.Inputs.Unpack(input[inter.SelectorLength:])
	if err != nil {
		return multisig.Receipt{}, fmt.Errorf("%w: %s arguments: %v", multisig.ErrDomainPrecondition, method.Name, err)
	}
	canonical, err := method.Inputs.Pack(args...)
	if err != nil || !bytes.Equal(canonical, input[inter.SelectorLength:]) {
		return multisig.Receipt{}, fmt.Errorf("%w: non-canonical %s arguments", multisig.ErrDomainPrecondition, method.Name)
	}

	payload := inter.Raw(common.CopyBytes(input))

	switch method.Name {
	case "pause":
		return r.kernel.Execute(ctx, caller, multisig.WithCallData(payload, multisig.Pause{}), r.target.Pause)

	case "unpause":
		return r.kernel.Execute(ctx, caller, multisig.WithCallData(payload, multisig.Unpause{}), r.target.Unpause)

	case "transfer":
		op := multisig.Transfer{
			To:     args[0].(common.Address),
			Amount: args[1].(*big.Int),
		}
		return r.kernel.Execute(ctx, caller, multisig.WithCallData(payload, op), func(ctx context.Context) error {
			return r.target.Transfer(ctx, op.To, op.Amount)
		})

	case "addVoter":
		op := multisig.AddVoter{Voter: args[0].(common.Address)}
		return r.kernel.Govern(ctx, caller, multisig.GovernanceWithCallData(payload, op))

	case "removeVoter":
		op := multisig.RemoveVoter{Voter: args[0].(common.Address)}
		return r.kernel.Govern(ctx, caller, multisig.GovernanceWithCallData(payload, op))

	case "changeQuorum":
		q := args[0].(*big.Int)
		if !q.IsInt64() || q.Int64() > math.MaxInt32 {
			return multisig.Receipt{}, fmt.Errorf("%w: %s", multisig.ErrInvalidQuorum, q)
		}
		op := multisig.ChangeQuorum{Quorum: int(q.Int64())}
		return r.kernel.Govern(ctx, caller, multisig.GovernanceWithCallData(payload, op))
	}

	return multisig.Receipt{}, fmt.Errorf("%w: unrouted method %s", multisig.ErrDomainPrecondition, method.Name)
}
