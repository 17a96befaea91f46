package multisig

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-opera-quorum/inter"
)

// EventType classifies audit events.
type EventType uint8

const (
	ActionPassed EventType = iota + 1
	VoterAdded
	VoterRemoved
	QuorumChanged
)

func (t EventType) String() string {
	switch t {
	case ActionPassed:
		return "action-passed"
	case VoterAdded:
		return "voter-added"
	case VoterRemoved:
		return "voter-removed"
	case QuorumChanged:
		return "quorum-changed"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// Event is emitted once per passed action, after the ledger commit.
// Pending votes emit nothing.
type Event struct {
	Type     EventType
	Kind     inter.Kind
	Identity common.Hash
	Epoch    idx.Epoch      // epoch the action passed under
	Caller   common.Address // voter whose vote reached the quorum

	Voter  common.Address // VoterAdded, VoterRemoved
	Quorum int            // QuorumChanged: the new quorum
}

func (e Event) fields() logrus.Fields {
	f := logrus.Fields{
		"event":    e.Type.String(),
		"kind":     e.Kind.String(),
		"identity": e.Identity.Hex(),
		"epoch":    e.Epoch,
		"caller":   e.Caller.Hex(),
	}
	switch e.Type {
	case VoterAdded, VoterRemoved:
		f["voter"] = e.Voter.Hex()
	case QuorumChanged:
		f["quorum"] = e.Quorum
	}
	return f
}

// SubscribeEvents delivers every audit event to ch. Delivery is synchronous:
// the voting call that produced the event returns only after every
// subscriber has received it, so subscribers must drain their channel.
func (k *Kernel) SubscribeEvents(ch chan<- Event) event.Subscription {
	return k.feed.Subscribe(ch)
}

func (k *Kernel) emit(ev Event) {
	k.log.WithFields(ev.fields()).Info("Quorum reached")
	k.feed.Send(ev)
}
