// Package lines implements the line store described in spec §3/§4.1: an
// immutable, cheaply-shared sequence of text lines with the sub-sequence
// search primitives the hunk-application engine is built on.
package lines

import "strings"

// Line is an immutable text line, including its trailing newline if the
// source had one. Equality is exact byte equality.
//
// Lines are plain strings rather than a reference-counted wrapper: Go
// strings are themselves immutable and share their backing array on slice
// and substring operations, which already gives the "carving chunks out of
// the input never copies text" property spec §3 asks for.
type Line string

// ConflictStartMarker, ConflictSeparationMarker and ConflictEndMarker are
// the three synthetic lines the application engine writes around an
// unresolved hunk (spec §4.3 strategy (e), §6 diagnostic stream).
const (
	ConflictStartMarker       Line = "<<<<<<<\n"
	ConflictSeparationMarker  Line = "=======\n"
	ConflictEndMarker         Line = ">>>>>>>\n"
)

// Sequence is an ordered, read-only list of Lines.
type Sequence []Line

// FromString splits a string into Lines, keeping each trailing "\n" attached
// to the line it terminates. A final partial line with no trailing newline
// is kept as its own Line, matching GNU patch's "\ No newline at end of
// file" convention at the format layer.
func FromString(s string) Sequence {
	if s == "" {
		return nil
	}
	var out Sequence
	start := 0
	for {
		idx := strings.IndexByte(s[start:], '\n')
		if idx < 0 {
			out = append(out, Line(s[start:]))
			break
		}
		out = append(out, Line(s[start:start+idx+1]))
		start += idx + 1
		if start == len(s) {
			break
		}
	}
	return out
}

// String concatenates the sequence back into a single string.
func (s Sequence) String() string {
	var b strings.Builder
	for _, l := range s {
		b.WriteString(string(l))
	}
	return b.String()
}

// ContainsAt reports whether sub occurs in s starting at index i — spec
// §4.1 contains_at.
func (s Sequence) ContainsAt(sub Sequence, i int) bool {
	if i < 0 || len(sub)+i > len(s) {
		return false
	}
	for k, l := range sub {
		if s[i+k] != l {
			return false
		}
	}
	return true
}

// FindFirst returns the least index i >= start such that ContainsAt(sub, i)
// holds, or -1 if there is none — spec §4.1 find_first.
func (s Sequence) FindFirst(sub Sequence, start int) int {
	if start < 0 {
		start = 0
	}
	limit := len(s) - len(sub)
	for i := start; i <= limit; i++ {
		if s.ContainsAt(sub, i) {
			return i
		}
	}
	return -1
}

// FirstInequalityFromHead returns the smallest k such that a[k] != b[k], or
// min(len(a), len(b)) if one is a prefix of the other, or -1 when the two
// sequences are exactly equal — spec §4.1.
func FirstInequalityFromHead(a, b Sequence) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for k := 0; k < n; k++ {
		if a[k] != b[k] {
			return k
		}
	}
	if len(a) == len(b) {
		return -1
	}
	return n
}

// FirstInequalityFromTail is the tail-anchored symmetric operation.
func FirstInequalityFromTail(a, b Sequence) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for k := 0; k < n; k++ {
		if a[len(a)-1-k] != b[len(b)-1-k] {
			return k
		}
	}
	if len(a) == len(b) {
		return -1
	}
	return n
}
