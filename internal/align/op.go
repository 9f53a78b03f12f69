// Package align reconstructs and indexes total alignments between reference
// and hypothesis token sequences from sparse edit scripts.
package align

import (
	"encoding/json"
	"fmt"
)

// Kind identifies an alignment operation variant.
type Kind int

const (
	KindMatch Kind = iota
	KindInsert
	KindDelete
	KindSubstitute
)

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "match"
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindSubstitute:
		return "substitute"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Span is a half-open character range [Start, End) into the owning
// standardized text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Op is one alignment operation. It is a sealed sum over Match, Substitute,
// Insert and Delete; each variant carries exactly the fields valid for it,
// so an op with an impossible field combination cannot be constructed.
type Op interface {
	Kind() Kind
	sealedOp()
}

// Match pairs a reference token with an identical hypothesis token.
type Match struct {
	Ref     string
	Hyp     string
	RefIdx  int
	HypIdx  int
	RefSpan Span
	HypSpan Span
}

// Substitute pairs a reference token with a differing hypothesis token.
type Substitute struct {
	Ref     string
	Hyp     string
	RefIdx  int
	HypIdx  int
	RefSpan Span
	HypSpan Span
}

// Insert is a hypothesis token with no reference counterpart.
type Insert struct {
	Hyp     string
	HypIdx  int
	HypSpan Span
}

// Delete is a reference token with no hypothesis counterpart.
type Delete struct {
	Ref     string
	RefIdx  int
	RefSpan Span
}

func (Match) Kind() Kind      { return KindMatch }
func (Substitute) Kind() Kind { return KindSubstitute }
func (Insert) Kind() Kind     { return KindInsert }
func (Delete) Kind() Kind     { return KindDelete }

func (Match) sealedOp()      {}
func (Substitute) sealedOp() {}
func (Insert) sealedOp()     {}
func (Delete) sealedOp()     {}

func (o Match) String() string {
	return fmt.Sprintf("Op(match: %q == %q)", o.Hyp, o.Ref)
}

func (o Substitute) String() string {
	return fmt.Sprintf("Op(substitute: %q -> %q)", o.Hyp, o.Ref)
}

func (o Insert) String() string {
	return fmt.Sprintf("Op(insert: %q)", o.Hyp)
}

func (o Delete) String() string {
	return fmt.Sprintf("Op(delete: %q)", o.Ref)
}

// RefIndex returns the reference token index an op covers, if any. Inserts
// carry none.
func RefIndex(op Op) (int, bool) {
	switch o := op.(type) {
	case Match:
		return o.RefIdx, true
	case Substitute:
		return o.RefIdx, true
	case Delete:
		return o.RefIdx, true
	}
	return 0, false
}

// HypIndex returns the hypothesis token index an op covers, if any. Deletes
// carry none.
func HypIndex(op Op) (int, bool) {
	switch o := op.(type) {
	case Match:
		return o.HypIdx, true
	case Substitute:
		return o.HypIdx, true
	case Insert:
		return o.HypIdx, true
	}
	return 0, false
}

// RefSpan returns the reference character span an op covers, if any.
func RefSpan(op Op) (Span, bool) {
	switch o := op.(type) {
	case Match:
		return o.RefSpan, true
	case Substitute:
		return o.RefSpan, true
	case Delete:
		return o.RefSpan, true
	}
	return Span{}, false
}

// opJSON is the flat external mapping of an op: a type tag plus only the
// fields the variant carries.
type opJSON struct {
	Type    string `json:"type"`
	Ref     string `json:"ref,omitempty"`
	Hyp     string `json:"hyp,omitempty"`
	RefIdx  *int   `json:"ref_idx,omitempty"`
	HypIdx  *int   `json:"hyp_idx,omitempty"`
	RefSpan *Span  `json:"ref_span,omitempty"`
	HypSpan *Span  `json:"hyp_span,omitempty"`
}

func marshalOp(op Op) opJSON {
	out := opJSON{Type: op.Kind().String()}
	switch o := op.(type) {
	case Match:
		out.Ref, out.Hyp = o.Ref, o.Hyp
		out.RefIdx, out.HypIdx = intPtr(o.RefIdx), intPtr(o.HypIdx)
		out.RefSpan, out.HypSpan = spanPtr(o.RefSpan), spanPtr(o.HypSpan)
	case Substitute:
		out.Ref, out.Hyp = o.Ref, o.Hyp
		out.RefIdx, out.HypIdx = intPtr(o.RefIdx), intPtr(o.HypIdx)
		out.RefSpan, out.HypSpan = spanPtr(o.RefSpan), spanPtr(o.HypSpan)
	case Insert:
		out.Hyp = o.Hyp
		out.HypIdx = intPtr(o.HypIdx)
		out.HypSpan = spanPtr(o.HypSpan)
	case Delete:
		out.Ref = o.Ref
		out.RefIdx = intPtr(o.RefIdx)
		out.RefSpan = spanPtr(o.RefSpan)
	}
	return out
}

func intPtr(v int) *int { return &v }

func spanPtr(s Span) *Span { return &s }

// MarshalJSON renders the alignment as a flat list of op objects.
func (a *Alignment) MarshalJSON() ([]byte, error) {
	out := make([]opJSON, len(a.ops))
	for i, op := range a.ops {
		out[i] = marshalOp(op)
	}
	return json.Marshal(out)
}
