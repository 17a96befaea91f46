// Package inter defines the inter-component types of the quorum kernel: what
// an action is, how its kind is named, and how its canonical identity is
// derived. Everything here is pure; nothing touches ledger state.
package inter

import (
	"encoding/hex"
	"fmt"
)

// SelectorLength is the size of a call-data selector.
const SelectorLength = 4

// Variant discriminates the two shapes a Kind can take.
type Variant uint8

const (
	// VariantKnown is a kind named by a Tag.
	VariantKnown Variant = 1
	// VariantRaw is a kind named by opaque call data.
	VariantRaw Variant = 2
)

// Kind names what is being voted on. It is a closed sum type: the only
// implementations are Known and Raw.
type Kind interface {
	// Variant reports which shape the kind has.
	Variant() Variant

	// Key names the epoch counter this kind advances under fine epochs.
	// Known kinds use their tag; Raw kinds use their selector.
	Key() []byte

	String() string

	isKind()
}

// Tag enumerates the action kinds the kernel knows by name.
type Tag uint8

const (
	TagPause Tag = iota + 1
	TagUnpause
	TagTransfer
	TagAddVoter
	TagRemoveVoter
	TagChangeQuorum
)

var tagNames = map[Tag]string{
	TagPause:        "pause",
	TagUnpause:      "unpause",
	TagTransfer:     "transfer",
	TagAddVoter:     "addVoter",
	TagRemoveVoter:  "removeVoter",
	TagChangeQuorum: "changeQuorum",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// ParseTag maps a tag name back to its Tag.
func ParseTag(name string) (Tag, bool) {
	for t, n := range tagNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Governance reports whether the tag mutates the voter registry.
func (t Tag) Governance() bool {
	return t == TagAddVoter || t == TagRemoveVoter || t == TagChangeQuorum
}

// Known is a kind identified by an explicit tag.
type Known Tag

func (k Known) Variant() Variant { return VariantKnown }
func (k Known) Key() []byte      { return []byte{byte(k)} }
func (k Known) String() string   { return Tag(k).String() }
func (Known) isKind()            {}

// Raw is a kind identified by an encoded call: a 4-byte selector followed by
// the ABI-encoded arguments.
type Raw []byte

func (r Raw) Variant() Variant { return VariantRaw }

// Key returns the selector. A payload shorter than a selector is its own key.
func (r Raw) Key() []byte {
	if len(r) < SelectorLength {
		return []byte(r)
	}
	return []byte(r[:SelectorLength])
}

// Arguments returns the payload after the selector.
func (r Raw) Arguments() []byte {
	if len(r) <= SelectorLength {
		return nil
	}
	return []byte(r[SelectorLength:])
}

func (r Raw) String() string {
	return "0x" + hex.EncodeToString(r.Key())
}

func (Raw) isKind() {}

// Action is a proposed operation. Implementations must be deterministic:
// the same action must yield the same kind, arguments and validation result
// every time it is presented, or its identity would be meaningless.
type Action interface {
	// Kind names the action.
	Kind() Kind

	// Args returns the canonical arguments of a Known action, in order.
	// Nil or empty means the action takes no arguments. Raw actions carry
	// their arguments in the payload and return nil.
	Args() []interface{}

	// Validate checks the domain preconditions that must hold before a vote
	// is recorded.
	Validate() error
}
