// Package apply implements the hunk-application engine from spec §4.3: the
// core of this repository. It walks an ordered list of hunks against a line
// store, trying in turn exact placement, fuzzed/shifted placement,
// already-applied detection, end-of-file failure, and — only when none of
// those succeed — conflict-marker emission, exactly as
// original_source/diff_patch/src/abstract_diff.rs's AbstractDiff::apply_to_lines
// does.
package apply

import (
	"io"

	"go.uber.org/zap"

	"gopatch/pkg/hunk"
	"gopatch/pkg/lines"
)

// defaultFuzzFactor is the context-reduction ceiling spec §4.3 fixes at 2.
const defaultFuzzFactor = 2

// Result tallies what happened to each hunk plus the resulting line
// sequence — spec §4.3 ApplnResult, plus a Conflicts counter.
//
// The original source never increments any counter when a hunk falls through
// to conflict-marker emission (spec §9 Open Question). This repository
// resolves that by adding Conflicts explicitly: Successes+Merges+
// AlreadyApplied+Failures+Conflicts always accounts for every hunk, which the
// original's four-counter tally does not guarantee.
type Result struct {
	Lines          lines.Sequence
	Successes      uint64
	Merges         uint64
	AlreadyApplied uint64
	Failures       uint64
	Conflicts      uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithFuzzFactor overrides the default fuzz factor of 2. Spec §4.3 treats 2
// as fixed; this hook exists for callers (and tests) that want to explore
// the algorithm's behavior at other fuzz levels.
func WithFuzzFactor(n int) Option {
	return func(e *Engine) { e.fuzzFactor = n }
}

// WithLogger attaches a zap logger for internal diagnostics (strategy chosen
// per hunk, and the context reduction a merged hunk needed). This is
// independent of the fixed-shape
// diagnostic stream written to the io.Writer passed to Apply, which is part
// of the spec's external contract (§4.6) and is never routed through zap.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine applies hunks to a line store.
type Engine struct {
	fuzzFactor int
	logger     *zap.Logger
}

// New constructs an Engine with the fixed fuzz factor of 2 unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{fuzzFactor: defaultFuzzFactor, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs every hunk against src in order, writing the fixed-shape
// diagnostic lines of spec §4.6 to diag as it goes. reportedPath, when
// non-empty, is prefixed to each diagnostic line as "<reportedPath>: ...".
// When reverse is true, hunks are applied post-to-ante instead of
// ante-to-post.
func (e *Engine) Apply(hunks []hunk.Hunk, src lines.Sequence, reverse bool, diag io.Writer, reportedPath string) Result {
	var result Result
	var currentOffset int64
	linesIndex := 0

	anteSide, postSide := hunk.SideAnte, hunk.SidePost
	if reverse {
		anteSide, postSide = hunk.SidePost, hunk.SideAnte
	}

	total := len(hunks)
	for hunkIndex, h := range hunks {
		hunkNum := hunkIndex + 1
		anteChunk := h.Chunk(anteSide)
		postChunk := h.Chunk(postSide)

		// (a) exact placement.
		if anteChunk.MatchesAt(src, currentOffset) {
			index := applyOffset(anteChunk.StartIndex, currentOffset)
			result.Lines = append(result.Lines, src[linesIndex:index]...)
			result.Lines = append(result.Lines, postChunk.Lines...)
			linesIndex = applyOffset(anteChunk.StartIndex+len(anteChunk.Lines), currentOffset)
			result.Successes++
			e.logger.Debug("hunk applied exactly", zap.Int("hunk", hunkNum))
			continue
		}

		// (b) fuzzed/shifted placement. The content written is the POST
		// chunk trimmed by the same leading/trailing context reduction that
		// located the ante chunk in the source — the landing site is found
		// via the ante side, but what gets written is the post side, exactly
		// mirroring the exact-placement write policy in strategy (a).
		if cpd, ok := e.getCompromisedPosn(h, src, linesIndex, reverse); ok {
			result.Lines = append(result.Lines, src[linesIndex:cpd.startIndex]...)
			postEnd := len(postChunk.Lines) - cpd.postContextRedn
			result.Lines = append(result.Lines, postChunk.Lines[cpd.anteContextRedn:postEnd]...)
			linesIndex = cpd.startIndex + len(anteChunk.Lines) - cpd.anteContextRedn - cpd.postContextRedn
			currentOffset = int64(cpd.startIndex) - int64(anteChunk.StartIndex) - int64(cpd.anteContextRedn)

			posn := getAppliedPosn(h, postSide, len(result.Lines), cpd.postContextRedn)
			writeMerged(diag, reportedPath, hunkNum, posn)
			result.Merges++
			e.logger.Debug("hunk merged with fuzz", zap.Int("hunk", hunkNum), zap.Int("contextRedn", cpd.anteContextRedn+cpd.postContextRedn))
			continue
		}

		// (c) already-applied detection.
		if isAlreadyApplied(anteChunk, postChunk, src, currentOffset) {
			newLinesIndex := applyOffset(postChunk.EndIndex(), currentOffset)
			result.Lines = append(result.Lines, src[linesIndex:newLinesIndex]...)
			linesIndex = newLinesIndex
			currentOffset += int64(len(postChunk.Lines) - len(anteChunk.Lines))

			posn := getAppliedPosn(h, postSide, len(result.Lines), 0)
			writeAlreadyApplied(diag, reportedPath, hunkNum, posn)
			result.AlreadyApplied++
			e.logger.Debug("hunk already applied", zap.Int("hunk", hunkNum))
			continue
		}

		// (d) end-of-file failure.
		anteHlen := len(anteChunk.Lines) - h.PostContextLen
		if applyOffset(anteChunk.StartIndex+anteHlen, currentOffset) > len(src) {
			remaining := total - hunkIndex
			writeUnexpectedEOF(diag, reportedPath, hunkNum, total, remaining)
			result.Failures += uint64(remaining)
			break
		}

		// (e) conflict-marker emission.
		endIndex := applyOffset(anteChunk.StartIndex, currentOffset)
		result.Lines = append(result.Lines, src[linesIndex:endIndex]...)
		linesIndex = endIndex

		result.Lines = append(result.Lines, lines.ConflictStartMarker)
		startLine := len(result.Lines)
		result.Lines = append(result.Lines, src[linesIndex:linesIndex+anteHlen]...)
		linesIndex += anteHlen
		result.Lines = append(result.Lines, lines.ConflictSeparationMarker)
		result.Lines = append(result.Lines, postChunk.Lines[:lenMinusPostContext(h, postSide)]...)
		result.Lines = append(result.Lines, lines.ConflictEndMarker)
		endLine := len(result.Lines)

		writeNotMerged(diag, reportedPath, hunkNum, startLine, endLine)
		result.Conflicts++
		e.logger.Debug("hunk not merged", zap.Int("hunk", hunkNum))
	}

	result.Lines = append(result.Lines, src[linesIndex:]...)
	return result
}

// applyOffset adds a signed offset to an unsigned index, per spec §4.1
// ApplyOffset / original_source's ApplyOffset trait on usize.
func applyOffset(index int, offset int64) int {
	return int(int64(index) + offset)
}

// compromisedPosn is the result of a successful fuzzed search: where the
// hunk's trimmed ante content was found, and how much leading/trailing
// context had to be dropped to find it.
type compromisedPosn struct {
	startIndex      int
	anteContextRedn int
	postContextRedn int
}

// getCompromisedPosn tries progressively larger context reductions, up to
// the engine's fuzz factor, looking for the ante chunk's interior (the part
// that isn't leading/trailing context) somewhere at or after lineIndex —
// spec §4.3 strategy (b), grounded in AbstractHunk::get_compromised_posn.
func (e *Engine) getCompromisedPosn(h hunk.Hunk, src lines.Sequence, lineIndex int, reverse bool) (compromisedPosn, bool) {
	anteSide := hunk.SideAnte
	if reverse {
		anteSide = hunk.SidePost
	}
	anteChunk := h.Chunk(anteSide)

	maxContext := h.AnteContextLen
	if h.PostContextLen > maxContext {
		maxContext = h.PostContextLen
	}
	limit := e.fuzzFactor
	if maxContext < limit {
		limit = maxContext
	}

	for contextRedn := 0; contextRedn <= limit; contextRedn++ {
		anteRedn := contextRedn
		if anteRedn > h.AnteContextLen {
			anteRedn = h.AnteContextLen
		}
		postRedn := contextRedn
		if postRedn > h.PostContextLen {
			postRedn = h.PostContextLen
		}
		to := len(anteChunk.Lines) - postRedn
		if idx := src.FindFirst(anteChunk.Lines[anteRedn:to], lineIndex); idx != -1 {
			return compromisedPosn{startIndex: idx, anteContextRedn: anteRedn, postContextRedn: postRedn}, true
		}
	}
	return compromisedPosn{}, false
}

// getAppliedPosn recomputes the (1-based start line, length) pair reported
// in a merged/already-applied diagnostic — spec §4.6, grounded in
// AbstractHunk::get_applied_posn.
func getAppliedPosn(h hunk.Hunk, postSide hunk.Side, endPosn int, postContextRedn int) appliedPosn {
	postChunk := h.Chunk(postSide)
	length := len(postChunk.Lines) - h.AnteContextLen - h.PostContextLen
	startPosn := endPosn - length - (h.PostContextLen - postContextRedn) + 1
	return appliedPosn{startPosn: startPosn, length: length}
}

// isAlreadyApplied reports whether the post content of this hunk is already
// present in src at the position the ante content would otherwise occupy —
// spec §4.3 strategy (c), grounded in AbstractHunk::is_already_applied.
func isAlreadyApplied(anteChunk, postChunk hunk.Chunk, src lines.Sequence, currentOffset int64) bool {
	idx := applyOffset(anteChunk.StartIndex, currentOffset)
	return src.ContainsAt(postChunk.Lines, idx)
}

// lenMinusPostContext returns the post-side chunk's length with its trailing
// context stripped — the portion written between the conflict markers'
// separator and end marker.
func lenMinusPostContext(h hunk.Hunk, postSide hunk.Side) int {
	return len(h.Chunk(postSide).Lines) - h.PostContextLen
}
