package align

import (
	"fmt"
	"sort"

	"speechscore/internal/editdist"
	"speechscore/internal/textmodel"
)

// Fatal builder errors. Both indicate a bug in the upstream edit-distance
// primitive, not a data problem; no partial alignment is ever returned.
var (
	ErrScriptCardinality = fmt.Errorf("edit script invalid: untouched ref and hyp position counts differ")
	ErrUnknownEditKind   = fmt.Errorf("edit script invalid: unknown op kind")
)

// mergedOp is one entry of the combined match+edit list prior to variant
// mapping. Matches use the real indexes on both sides; edits keep the
// positions the script reported, which order inserts and deletes against
// their neighboring matched context.
type mergedOp struct {
	kind   Kind
	refPos int
	hypPos int
}

// Build reconstructs the total alignment for refTokens/hypTokens from a
// sparse edit script. refTexts/hypTexts are the comparison strings the
// script was computed over (typically the normalized token texts) and become
// the Ref/Hyp fields of the resulting ops.
func Build(refTokens, hypTokens []*textmodel.Token, refTexts, hypTexts []string, script []editdist.Op) (*Alignment, error) {
	if len(refTexts) != len(refTokens) || len(hypTexts) != len(hypTokens) {
		return nil, fmt.Errorf("token/text length mismatch: ref %d/%d, hyp %d/%d",
			len(refTokens), len(refTexts), len(hypTokens), len(hypTexts))
	}

	refTouched := make(map[int]struct{})
	hypTouched := make(map[int]struct{})
	for _, op := range script {
		switch op.Tag {
		case editdist.Substitute:
			refTouched[op.RefPos] = struct{}{}
			hypTouched[op.HypPos] = struct{}{}
		case editdist.Insert:
			hypTouched[op.HypPos] = struct{}{}
		case editdist.Delete:
			refTouched[op.RefPos] = struct{}{}
		default:
			return nil, fmt.Errorf("%w: %v", ErrUnknownEditKind, op.Tag)
		}
	}

	matchRef := untouched(len(refTokens), refTouched)
	matchHyp := untouched(len(hypTokens), hypTouched)
	if len(matchRef) != len(matchHyp) {
		return nil, fmt.Errorf("%w: %d ref vs %d hyp", ErrScriptCardinality, len(matchRef), len(matchHyp))
	}

	merged := make([]mergedOp, 0, len(script)+len(matchRef))
	for k := range matchRef {
		merged = append(merged, mergedOp{kind: KindMatch, refPos: matchRef[k], hypPos: matchHyp[k]})
	}
	for _, op := range script {
		merged = append(merged, mergedOp{kind: kindForTag(op.Tag), refPos: op.RefPos, hypPos: op.HypPos})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].refPos != merged[j].refPos {
			return merged[i].refPos < merged[j].refPos
		}
		return merged[i].hypPos < merged[j].hypPos
	})

	a := New()
	for _, m := range merged {
		op, err := materialize(m, refTokens, hypTokens, refTexts, hypTexts)
		if err != nil {
			return nil, err
		}
		if err := a.Append(op); err != nil {
			return nil, err
		}
	}
	a.Seal()
	return a, nil
}

func untouched(n int, touched map[int]struct{}) []int {
	out := make([]int, 0, n-len(touched))
	for i := 0; i < n; i++ {
		if _, ok := touched[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}

func kindForTag(tag editdist.Tag) Kind {
	switch tag {
	case editdist.Substitute:
		return KindSubstitute
	case editdist.Insert:
		return KindInsert
	case editdist.Delete:
		return KindDelete
	}
	return KindMatch
}

func materialize(m mergedOp, refTokens, hypTokens []*textmodel.Token, refTexts, hypTexts []string) (Op, error) {
	refOK := m.kind == KindMatch || m.kind == KindSubstitute || m.kind == KindDelete
	hypOK := m.kind == KindMatch || m.kind == KindSubstitute || m.kind == KindInsert
	if refOK && (m.refPos < 0 || m.refPos >= len(refTokens)) {
		return nil, fmt.Errorf("edit script invalid: %s ref index %d out of range [0, %d)", m.kind, m.refPos, len(refTokens))
	}
	if hypOK && (m.hypPos < 0 || m.hypPos >= len(hypTokens)) {
		return nil, fmt.Errorf("edit script invalid: %s hyp index %d out of range [0, %d)", m.kind, m.hypPos, len(hypTokens))
	}

	switch m.kind {
	case KindMatch:
		return Match{
			Ref:     refTexts[m.refPos],
			Hyp:     hypTexts[m.hypPos],
			RefIdx:  m.refPos,
			HypIdx:  m.hypPos,
			RefSpan: tokenSpan(refTokens[m.refPos]),
			HypSpan: tokenSpan(hypTokens[m.hypPos]),
		}, nil
	case KindSubstitute:
		return Substitute{
			Ref:     refTexts[m.refPos],
			Hyp:     hypTexts[m.hypPos],
			RefIdx:  m.refPos,
			HypIdx:  m.hypPos,
			RefSpan: tokenSpan(refTokens[m.refPos]),
			HypSpan: tokenSpan(hypTokens[m.hypPos]),
		}, nil
	case KindInsert:
		return Insert{
			Hyp:     hypTexts[m.hypPos],
			HypIdx:  m.hypPos,
			HypSpan: tokenSpan(hypTokens[m.hypPos]),
		}, nil
	case KindDelete:
		return Delete{
			Ref:     refTexts[m.refPos],
			RefIdx:  m.refPos,
			RefSpan: tokenSpan(refTokens[m.refPos]),
		}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownEditKind, m.kind)
}

func tokenSpan(t *textmodel.Token) Span {
	return Span{Start: t.Start, End: t.End}
}
