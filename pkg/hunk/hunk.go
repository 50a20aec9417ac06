// Package hunk implements the format-independent abstract hunk model from
// spec §3 / §4.2: a pair of ante/post chunks plus the derived context
// lengths the application engine anchors on.
package hunk

import (
	"fmt"

	"gopatch/pkg/errors"
	"gopatch/pkg/lines"
)

// Chunk is a contiguous span of lines in either the ante or post file —
// spec §3 AbstractChunk.
type Chunk struct {
	StartIndex int
	Lines      lines.Sequence
}

// EndIndex returns StartIndex + len(Lines).
func (c Chunk) EndIndex() int {
	return c.StartIndex + len(c.Lines)
}

// MatchesAt reports whether this chunk's lines occur in src at its
// StartIndex shifted by offset — spec §4.2 AbstractChunk::matches_lines.
func (c Chunk) MatchesAt(src lines.Sequence, offset int64) bool {
	idx := int(int64(c.StartIndex) + offset)
	return src.ContainsAt(c.Lines, idx)
}

// Hunk is a pair of (ante, post) chunks describing one localized change,
// plus the leading/trailing context lengths computed once at construction
// — spec §3/§4.2 AbstractHunk.
type Hunk struct {
	Ante, Post     Chunk
	AnteContextLen int
	PostContextLen int
}

// New builds a Hunk from its ante and post chunks. It rejects the two
// chunks with an error if they carry identical line sequences: spec §3
// states this makes the hunk degenerate, with no well-defined context
// lengths, and spec §1 requires rejecting such input rather than crashing
// the process on it.
func New(ante, post Chunk) (Hunk, error) {
	anteLen := lines.FirstInequalityFromHead(ante.Lines, post.Lines)
	postLen := lines.FirstInequalityFromTail(ante.Lines, post.Lines)
	if anteLen == -1 || postLen == -1 {
		return Hunk{}, errors.New(errors.CodeSyntax,
			fmt.Sprintf("degenerate hunk: ante and post chunks are identical at ante start %d", ante.StartIndex))
	}
	return Hunk{
		Ante:           ante,
		Post:           post,
		AnteContextLen: anteLen,
		PostContextLen: postLen,
	}, nil
}

// Side selects which half of a Hunk a caller wants, letting the engine
// switch ante/post uniformly under reverse mode (spec §4.3).
type Side int

const (
	SideAnte Side = iota
	SidePost
)

// Chunk returns the requested side's Chunk.
func (h Hunk) Chunk(side Side) Chunk {
	if side == SideAnte {
		return h.Ante
	}
	return h.Post
}
