// Package editdist computes Levenshtein distances and sparse edit scripts
// over token sequences. Scripts report only edits; matched positions are
// implied and reconstructed downstream.
package editdist

import "fmt"

// Tag identifies one edit-script operation kind.
type Tag int

const (
	Substitute Tag = iota
	Insert
	Delete
)

func (t Tag) String() string {
	switch t {
	case Substitute:
		return "substitute"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// Op is one edit. Both positions are always populated: a Substitute pairs
// ref[RefPos] with hyp[HypPos]; an Insert records in RefPos the reference
// position the hypothesis token is inserted before; a Delete records in
// HypPos the hypothesis position the reference token is dropped before.
// Carrying both sides keeps the script totally ordered under
// (RefPos, HypPos), which alignment reconstruction relies on.
type Op struct {
	Tag    Tag
	RefPos int
	HypPos int
}

// Distance returns the token-level Levenshtein distance between ref and hyp.
func Distance(ref, hyp []string) int {
	if len(ref) == 0 {
		return len(hyp)
	}
	if len(hyp) == 0 {
		return len(ref)
	}

	prev := make([]int, len(hyp)+1)
	curr := make([]int, len(hyp)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ref); i++ {
		curr[0] = i
		for j := 1; j <= len(hyp); j++ {
			cost := 1
			if ref[i-1] == hyp[j-1] {
				cost = 0
			}
			curr[j] = minOf(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(hyp)]
}

// DistanceRunes is Distance over runes, for character-level rates.
func DistanceRunes(ref, hyp []rune) int {
	a := make([]string, len(ref))
	for i, r := range ref {
		a[i] = string(r)
	}
	b := make([]string, len(hyp))
	for i, r := range hyp {
		b[i] = string(r)
	}
	return Distance(a, b)
}

// EditOps returns a minimal edit script transforming ref into hyp, in
// reading order. Matches are omitted. The backtrace prefers matches, then
// substitutions, then deletions, then insertions, so the script is
// deterministic for a given input pair.
func EditOps(ref, hyp []string) []Op {
	n, m := len(ref), len(hyp)
	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if ref[i-1] == hyp[j-1] {
				d[i][j] = d[i-1][j-1]
				continue
			}
			d[i][j] = minOf(d[i-1][j-1]+1, d[i-1][j]+1, d[i][j-1]+1)
		}
	}

	var rev []Op
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && ref[i-1] == hyp[j-1] && d[i][j] == d[i-1][j-1]:
			i--
			j--
		case i > 0 && j > 0 && d[i][j] == d[i-1][j-1]+1:
			rev = append(rev, Op{Tag: Substitute, RefPos: i - 1, HypPos: j - 1})
			i--
			j--
		case i > 0 && d[i][j] == d[i-1][j]+1:
			rev = append(rev, Op{Tag: Delete, RefPos: i - 1, HypPos: j})
			i--
		default:
			rev = append(rev, Op{Tag: Insert, RefPos: i, HypPos: j - 1})
			j--
		}
	}

	out := make([]Op, 0, len(rev))
	for k := len(rev) - 1; k >= 0; k-- {
		out = append(out, rev[k])
	}
	return out
}

func minOf(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
