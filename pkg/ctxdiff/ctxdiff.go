// Package ctxdiff parses the context diff format (spec §4.4): a pair of
// "*** PATH [TS]" / "--- PATH [TS]" file headers followed by hunks delimited
// by a line of 15 asterisks, each hunk holding a "*** a,b ****" ante chunk
// marker and a "--- c,d ----" post chunk marker. Named ctxdiff, not context,
// to avoid shadowing the standard library's context package.
//
// Grounded in original_source/diff_patch/src/context_diff.rs's
// ContextDiffParser/ContextDiffHunk, with two index-arithmetic bugs fixed
// (see DESIGN.md): the Rust source's ante/post chunk spans are inclusive of
// their own "*** a,b ****"/"--- c,d ----" marker line, which — followed
// literally — feeds the marker text itself into extract_source_lines as
// if it were content, and its post-body scan never advances index past the
// "--- c,d ----" marker before testing body-line prefixes, so it always
// scans zero post lines. This package's chunk offsets point at the first
// body line after each marker instead.
package ctxdiff

import (
	"regexp"
	"strconv"
	"strings"

	"gopatch/pkg/errors"
	"gopatch/pkg/hunk"
	"gopatch/pkg/lines"
)

const (
	timestampPattern    = `\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d{9})? [-+]{1}\d{4}`
	altTimestampPattern = `[A-Z][a-z]{2} [A-Z][a-z]{2} \d{2} \d{2}:\d{2}:\d{2} \d{4} [-+]{1}\d{4}`
	pathPattern         = `"([^"]+)"|(\S+)`
)

var (
	anteFileRe  = regexp.MustCompile(`^\*\*\* (` + pathPattern + `)(\s+(` + timestampPattern + `|` + altTimestampPattern + `))?\n?$`)
	postFileRe  = regexp.MustCompile(`^--- (` + pathPattern + `)(\s+(` + timestampPattern + `|` + altTimestampPattern + `))?\n?$`)
	hunkStartRe = regexp.MustCompile(`^\*{15}\s*(.*)\n?$`)
	hunkAnteRe  = regexp.MustCompile(`^\*\*\*\s+(\d+)(,(\d+))?\s+\*\*\*\*\s*(.*)\n?$`)
	hunkPostRe  = regexp.MustCompile(`^---\s+(\d+)(,(\d+))?\s+----(.*)\n?$`)
)

// PathAndTimestamp is a parsed file-header line.
type PathAndTimestamp struct {
	FilePath  string
	Timestamp string
}

// Header is the two-line "*** .../--- ..." pair that opens a context diff.
type Header struct {
	Ante PathAndTimestamp
	Post PathAndTimestamp
}

// Chunk records where one side's body sits within Hunk.Lines (just past its
// own marker line), plus the start line and declared line-range length the
// format's "a,b"/"c,d" header carried.
type Chunk struct {
	Offset       int
	StartLineNum int
	Length       int
	NumLines     int
}

// Hunk is one raw context-diff hunk, spanning from its 15-asterisk
// separator through its last post-body line.
type Hunk struct {
	Lines     lines.Sequence
	AnteChunk Chunk
	PostChunk Chunk
}

// Diff is a fully parsed context diff.
type Diff struct {
	Header Header
	Hunks  []Hunk
}

// ParseAt recognizes a context diff starting at src[start].
func ParseAt(src lines.Sequence, start int) (*Diff, int, error) {
	if len(src)-start < 2 {
		return nil, 0, nil
	}
	index := start

	ante, ok := matchFileHeader(anteFileRe, src, index)
	if !ok {
		return nil, 0, nil
	}
	index++

	post, ok := matchFileHeader(postFileRe, src, index)
	if !ok {
		return nil, 0, errors.MissingPostHeaderError(errors.FormatContext, index+1)
	}
	index++

	var hunks []Hunk
	for index < len(src) {
		h, consumed, err := getHunkAt(src, index)
		if err != nil {
			return nil, 0, err
		}
		if h == nil {
			break
		}
		hunks = append(hunks, *h)
		index += consumed
	}

	return &Diff{Header: Header{Ante: ante, Post: post}, Hunks: hunks}, index - start, nil
}

func matchFileHeader(re *regexp.Regexp, src lines.Sequence, index int) (PathAndTimestamp, bool) {
	if index >= len(src) {
		return PathAndTimestamp{}, false
	}
	m := re.FindStringSubmatch(string(src[index]))
	if m == nil {
		return PathAndTimestamp{}, false
	}
	path := firstNonEmpty(m, 2, 3)
	ts := ""
	if len(m) > 5 {
		ts = m[5]
	}
	return PathAndTimestamp{FilePath: path, Timestamp: ts}, true
}

func firstNonEmpty(groups []string, indices ...int) string {
	for _, i := range indices {
		if i < len(groups) && groups[i] != "" {
			return groups[i]
		}
	}
	return ""
}

type startAndLength struct {
	start  int
	length int
}

// startAndLengthFromMatch reads a "start[,finish]" chunk header pair where
// finish (when present) is the chunk's last line number, not a count —
// length is the inclusive span finish-start+1, or zero for the "0,0"
// empty-chunk convention.
func startAndLengthFromMatch(m []string, line int) (startAndLength, error) {
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return startAndLength{}, errors.NumberParseError(errors.FormatContext, line, "chunk start", err)
	}
	finish := start
	if m[3] != "" {
		finish, err = strconv.Atoi(m[3])
		if err != nil {
			return startAndLength{}, errors.NumberParseError(errors.FormatContext, line, "chunk finish", err)
		}
	}
	length := finish - start + 1
	if start == 0 && finish == 0 {
		length = 0
	}
	return startAndLength{start: start, length: length}, nil
}

func tryAnteSAL(src lines.Sequence, index int) (startAndLength, bool, error) {
	m := hunkAnteRe.FindStringSubmatch(string(src[index]))
	if m == nil {
		return startAndLength{}, false, nil
	}
	sal, err := startAndLengthFromMatch(m, index+1)
	return sal, true, err
}

func tryPostSAL(src lines.Sequence, index int) (startAndLength, bool, error) {
	m := hunkPostRe.FindStringSubmatch(string(src[index]))
	if m == nil {
		return startAndLength{}, false, nil
	}
	sal, err := startAndLengthFromMatch(m, index+1)
	return sal, true, err
}

// getHunkAt parses one hunk beginning with a 15-asterisk separator at
// src[start]. It follows ContextDiffParser::get_hunk_at's scan strategy —
// walk forward from the ante marker hunting for the post marker, falling
// back to a direct probe past an absorbed "\ No newline" line when the scan
// never finds one — but treats both marker lines as consumed before
// counting body lines, per this package's doc comment.
func getHunkAt(src lines.Sequence, start int) (*Hunk, int, error) {
	if !hunkStartRe.MatchString(string(src[start])) {
		return nil, 0, nil
	}
	anteMarkerIndex := start + 1
	if anteMarkerIndex >= len(src) {
		return nil, 0, errors.UnexpectedEOFError(errors.FormatContext)
	}
	anteSAL, ok, err := tryAnteSAL(src, anteMarkerIndex)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, errors.SyntaxError(errors.FormatContext, anteMarkerIndex+1)
	}

	index := anteMarkerIndex + 1
	anteCount := 0
	var postSAL startAndLength
	havePostSAL := false
	postMarkerIndex := index

	for anteCount < anteSAL.length {
		postMarkerIndex = index
		if index >= len(src) {
			return nil, 0, errors.UnexpectedEOFError(errors.FormatContext)
		}
		sal, ok, err := tryPostSAL(src, index)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			postSAL = sal
			havePostSAL = true
			break
		}
		anteCount++
		index++
	}

	if !havePostSAL {
		if index < len(src) && strings.HasPrefix(string(src[index]), `\ `) {
			index++
		}
		postMarkerIndex = index
		if index >= len(src) {
			return nil, 0, errors.UnexpectedEOFError(errors.FormatContext)
		}
		sal, ok, err := tryPostSAL(src, index)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			return nil, 0, errors.SyntaxError(errors.FormatContext, index+1)
		}
		postSAL = sal
	}
	index = postMarkerIndex + 1

	postCount := 0
	for postCount < postSAL.length {
		if index >= len(src) {
			return nil, 0, errors.UnexpectedEOFError(errors.FormatContext)
		}
		line := string(src[index])
		if !strings.HasPrefix(line, "! ") && !strings.HasPrefix(line, "+ ") && !strings.HasPrefix(line, " ") {
			if postCount == 0 {
				break
			}
			return nil, 0, errors.SyntaxError(errors.FormatContext, index+1)
		}
		postCount++
		index++
	}
	if index < len(src) && strings.HasPrefix(string(src[index]), `\ `) {
		index++
	}

	anteBodyIndex := anteMarkerIndex + 1
	ante := Chunk{
		Offset:       anteBodyIndex - start,
		StartLineNum: anteSAL.start,
		Length:       anteSAL.length,
		NumLines:     postMarkerIndex - anteBodyIndex,
	}
	postBodyIndex := postMarkerIndex + 1
	post := Chunk{
		Offset:       postBodyIndex - start,
		StartLineNum: postSAL.start,
		Length:       postSAL.length,
		NumLines:     index - postBodyIndex,
	}
	h := &Hunk{
		Lines:     append(lines.Sequence{}, src[start:index]...),
		AnteChunk: ante,
		PostChunk: post,
	}
	return h, index - start, nil
}

// AnteLines extracts the hunk's ante-side content, trimmed of its two-column
// "! "/" "/"- " marker. Per spec §4.4, when the ante side carries no real
// body lines of its own, it's instead reconstructed from the post region
// (excluding lines that start with "+"), the historical context-diff
// convention for a hunk whose ante chunk declares an empty range.
func (h Hunk) AnteLines() lines.Sequence {
	if h.AnteChunk.NumLines == 0 {
		start := h.PostChunk.Offset
		end := h.PostChunk.Offset + h.PostChunk.NumLines
		return extractSourceLines(h.Lines[start:end], func(l string) bool { return strings.HasPrefix(l, "+") })
	}
	start := h.AnteChunk.Offset
	end := h.AnteChunk.Offset + h.AnteChunk.NumLines
	return extractSourceLines(h.Lines[start:end], func(string) bool { return false })
}

// PostLines extracts the hunk's post-side content, trimmed of its
// two-column marker.
func (h Hunk) PostLines() lines.Sequence {
	start := h.PostChunk.Offset
	end := h.PostChunk.Offset + h.PostChunk.NumLines
	return extractSourceLines(h.Lines[start:end], func(string) bool { return false })
}

func extractSourceLines(body lines.Sequence, excl func(string) bool) lines.Sequence {
	var out lines.Sequence
	for _, l := range body {
		line := string(l)
		if excl(line) {
			continue
		}
		if strings.HasPrefix(line, `\ `) {
			if n := len(out); n > 0 {
				out[n-1] = lines.Line(strings.TrimSuffix(string(out[n-1]), "\n"))
			}
			continue
		}
		if len(line) >= 2 {
			line = line[2:]
		}
		out = append(out, lines.Line(line))
	}
	return out
}

// ToAbstractHunk lowers a context Hunk into the format-independent hunk
// model: start indices are the chunk markers' one-based line numbers minus
// one, per spec §4.4. Returns an error for a degenerate hunk (ante and post
// sides identical), per spec §3/§1 — an all-context hunk must be rejected,
// not crash the process.
func (h Hunk) ToAbstractHunk() (hunk.Hunk, error) {
	ante := hunk.Chunk{StartIndex: h.AnteChunk.StartLineNum - 1, Lines: h.AnteLines()}
	post := hunk.Chunk{StartIndex: h.PostChunk.StartLineNum - 1, Lines: h.PostLines()}
	return hunk.New(ante, post)
}
