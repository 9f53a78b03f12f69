package align

import (
	"errors"
	"fmt"
	"sync"
)

// RangeError reports an OpsFromRefRange or OpAtRefIndex call whose bounds do
// not name reference-bearing ops of the alignment, or are misordered. It is
// recoverable and distinct from the fatal builder errors so callers can tell
// "this span is not in the alignment" from an upstream bug.
type RangeError struct {
	Start  int
	Stop   int
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("ref index range [%d, %d]: %s", e.Start, e.Stop, e.Reason)
}

// Alignment is the total, ordered op sequence covering a reference and a
// hypothesis token sequence. Ops are appended until Seal; afterwards the
// alignment is immutable and its lookup index is built once on first use.
type Alignment struct {
	ops    []Op
	counts [4]int
	sealed bool

	once      sync.Once
	startToOp map[int]int
	endToOp   map[int]int
	refToOp   map[int]int
}

// New returns an empty, unsealed alignment.
func New() *Alignment {
	return &Alignment{}
}

// Append adds ops in reading order. Appending to a sealed alignment is an
// error.
func (a *Alignment) Append(ops ...Op) error {
	if a.sealed {
		return errors.New("alignment is sealed")
	}
	for _, op := range ops {
		a.ops = append(a.ops, op)
		a.counts[op.Kind()]++
	}
	return nil
}

// Seal freezes the alignment. Sealing twice is harmless.
func (a *Alignment) Seal() { a.sealed = true }

func (a *Alignment) Sealed() bool { return a.sealed }

func (a *Alignment) Len() int { return len(a.ops) }

func (a *Alignment) At(i int) Op { return a.ops[i] }

// Ops returns the backing op slice. Callers must not mutate it.
func (a *Alignment) Ops() []Op { return a.ops }

func (a *Alignment) NumMatches() int       { return a.counts[KindMatch] }
func (a *Alignment) NumInsertions() int    { return a.counts[KindInsert] }
func (a *Alignment) NumDeletions() int     { return a.counts[KindDelete] }
func (a *Alignment) NumSubstitutions() int { return a.counts[KindSubstitute] }

// NumEdits is the number of non-match ops.
func (a *Alignment) NumEdits() int {
	return a.NumSubstitutions() + a.NumInsertions() + a.NumDeletions()
}

// ensureIndex builds the offset and ref-index maps exactly once. The
// alignment is frozen at that point: querying implies no further appends.
func (a *Alignment) ensureIndex() {
	a.once.Do(func() {
		a.sealed = true
		a.startToOp = make(map[int]int)
		a.endToOp = make(map[int]int)
		a.refToOp = make(map[int]int)
		for i, op := range a.ops {
			if span, ok := RefSpan(op); ok {
				a.startToOp[span.Start] = i
				a.endToOp[span.End] = i
			}
			if ri, ok := RefIndex(op); ok {
				a.refToOp[ri] = i
			}
		}
	})
}

// StartIndexToOp returns the op whose reference span starts at the given
// character offset, or nil when none does.
func (a *Alignment) StartIndexToOp(off int) Op {
	a.ensureIndex()
	if i, ok := a.startToOp[off]; ok {
		return a.ops[i]
	}
	return nil
}

// EndIndexToOp returns the op whose reference span ends at the given
// character offset, or nil when none does.
func (a *Alignment) EndIndexToOp(off int) Op {
	a.ensureIndex()
	if i, ok := a.endToOp[off]; ok {
		return a.ops[i]
	}
	return nil
}

// OpAtRefIndex returns the single reference-bearing op covering the given
// reference token index.
func (a *Alignment) OpAtRefIndex(refIdx int) (Op, error) {
	a.ensureIndex()
	i, ok := a.refToOp[refIdx]
	if !ok {
		return nil, &RangeError{Start: refIdx, Stop: refIdx, Reason: "no reference-bearing op at index"}
	}
	return a.ops[i], nil
}

// OpsFromRefRange returns the contiguous op subrange spanning reference
// token indexes [start, stop] inclusive. Insert ops interleaved between the
// bounds carry no reference index but belong to the span and are included.
// The returned slice aliases the alignment; callers must not mutate it.
func (a *Alignment) OpsFromRefRange(start, stop int) ([]Op, error) {
	if stop < start {
		return nil, &RangeError{Start: start, Stop: stop, Reason: "stop index precedes start index"}
	}
	a.ensureIndex()
	i0, ok := a.refToOp[start]
	if !ok {
		return nil, &RangeError{Start: start, Stop: stop, Reason: fmt.Sprintf("no reference-bearing op at index %d", start)}
	}
	i1, ok := a.refToOp[stop]
	if !ok {
		return nil, &RangeError{Start: start, Stop: stop, Reason: fmt.Sprintf("no reference-bearing op at index %d", stop)}
	}
	return a.ops[i0 : i1+1], nil
}
