// Package unified parses and renders the unified diff format (spec §4.4):
// a pair of "--- PATH [TS]" / "+++ PATH [TS]" file header lines followed by
// a sequence of "@@ -a,b +c,d @@" hunks. Grounded in
// original_source/diff_patch/src/unified_diff.rs and
// original_source/src/text_diff.rs's driving loop.
package unified

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

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
	anteFileRe = regexp.MustCompile(`^--- (` + pathPattern + `)(\s+(` + timestampPattern + `|` + altTimestampPattern + `))?(.*)\n?$`)
	postFileRe = regexp.MustCompile(`^\+\+\+ (` + pathPattern + `)(\s+(` + timestampPattern + `|` + altTimestampPattern + `))?(.*)\n?$`)
	hunkDataRe = regexp.MustCompile(`^@@\s+-(\d+)(,(\d+))?\s+\+(\d+)(,(\d+))?\s+@@\s*(.*)\n?$`)
)

// PathAndTimestamp is a parsed file-header line: its path and the optional
// trailing timestamp.
type PathAndTimestamp struct {
	FilePath  string
	Timestamp string
}

// Header is the two-line "--- .../+++ ..." pair that opens a unified diff.
type Header struct {
	Ante PathAndTimestamp
	Post PathAndTimestamp
}

// Hunk is one raw "@@ ... @@" unified hunk: its header-declared chunk
// positions/lengths plus its body lines (including the leading +/-/space
// column and any trailing "\ No newline" marker).
type Hunk struct {
	Lines         lines.Sequence
	AnteStartLine int
	AnteLength    int
	PostStartLine int
	PostLength    int
}

// Diff is a fully parsed unified diff: its header plus its ordered hunks.
type Diff struct {
	Header Header
	Hunks  []Hunk
}

// ParseAt recognizes a unified diff starting at src[start]: a file-header
// pair followed by zero or more hunks. It returns (nil, 0, nil) when
// src[start] is not a "--- " ante-file header, matching the "no diff of this
// format starts here" contract of spec §4.4.
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
		return nil, 0, errors.MissingPostHeaderError(errors.FormatUnified, index+1)
	}
	index++

	var hunks []Hunk
	for index < len(src) {
		h, consumed, err := parseHunkAt(src, index)
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

// matchFileHeader matches re against src[index] and pulls the path (from
// whichever of the quoted/bare PATH_RE_STR alternatives matched, groups 2/3)
// and the timestamp (group 5) back out.
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

func parseHunkAt(src lines.Sequence, start int) (*Hunk, int, error) {
	m := hunkDataRe.FindStringSubmatch(string(src[start]))
	if m == nil {
		return nil, 0, nil
	}
	anteStart, err := parseUint(m[1], start)
	if err != nil {
		return nil, 0, err
	}
	anteLen := 1
	if m[3] != "" {
		anteLen, err = parseUint(m[3], start)
		if err != nil {
			return nil, 0, err
		}
	}
	postStart, err := parseUint(m[4], start)
	if err != nil {
		return nil, 0, err
	}
	postLen := 1
	if m[6] != "" {
		postLen, err = parseUint(m[6], start)
		if err != nil {
			return nil, 0, err
		}
	}

	index := start + 1
	anteCount, postCount := 0, 0
	for anteCount < anteLen || postCount < postLen {
		if index >= len(src) {
			return nil, 0, errors.UnexpectedEOFError(errors.FormatUnified)
		}
		line := string(src[index])
		switch {
		case strings.HasPrefix(line, "-"):
			anteCount++
		case strings.HasPrefix(line, "+"):
			postCount++
		case strings.HasPrefix(line, " "):
			anteCount++
			postCount++
		case strings.HasPrefix(line, "\\"):
			// no-newline marker, absorbed without counting.
		default:
			return nil, 0, errors.UnexpectedHunkTerminationError(errors.FormatUnified, index+1)
		}
		index++
	}
	if index < len(src) && strings.HasPrefix(string(src[index]), "\\") {
		index++
	}

	h := &Hunk{
		Lines:         append(lines.Sequence{}, src[start:index]...),
		AnteStartLine: anteStart,
		AnteLength:    anteLen,
		PostStartLine: postStart,
		PostLength:    postLen,
	}
	return h, index - start, nil
}

func parseUint(s string, line int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NumberParseError(errors.FormatUnified, line+1, "hunk range", err)
	}
	return n, nil
}

// AnteLines extracts the hunk's ante-side content lines: every body line
// except those starting with "+", column-trimmed by one.
func (h Hunk) AnteLines() lines.Sequence {
	return extractSourceLines(h.Lines, func(l string) bool { return strings.HasPrefix(l, "+") })
}

// PostLines is the symmetric extraction excluding "-" lines.
func (h Hunk) PostLines() lines.Sequence {
	return extractSourceLines(h.Lines, func(l string) bool { return strings.HasPrefix(l, "-") })
}

// extractSourceLines walks body[1:] (the header line is skipped), dropping
// any line for which excl holds, trimming the leading +/-/space column, and
// eliding a trailing "\ No newline at end of file" marker by stripping the
// newline from the content line immediately before it.
func extractSourceLines(body lines.Sequence, excl func(string) bool) lines.Sequence {
	var out lines.Sequence
	for i := 1; i < len(body); i++ {
		line := string(body[i])
		if excl(line) {
			continue
		}
		if strings.HasPrefix(line, "\\") {
			if n := len(out); n > 0 {
				out[n-1] = lines.Line(strings.TrimSuffix(string(out[n-1]), "\n"))
			}
			continue
		}
		if len(line) > 0 {
			line = line[1:]
		}
		out = append(out, lines.Line(line))
	}
	return out
}

// ToAbstractHunk lowers a unified Hunk into the format-independent hunk
// model, per spec §4.4's lowering rule: start indices are the header's
// one-based line numbers minus one, except that an empty ante side keeps
// its raw (non-decremented) start index — the GNU diffutils convention for
// a pure insertion. Returns an error for a degenerate hunk (ante and post
// sides identical), per spec §3/§1 — an all-context hunk must be rejected,
// not crash the process.
func (h Hunk) ToAbstractHunk() (hunk.Hunk, error) {
	anteLines := h.AnteLines()
	postLines := h.PostLines()

	anteStart := h.AnteStartLine - 1
	if len(anteLines) == 0 {
		anteStart = h.AnteStartLine
	}

	ante := hunk.Chunk{StartIndex: anteStart, Lines: anteLines}
	post := hunk.Chunk{StartIndex: h.PostStartLine - 1, Lines: postLines}
	return hunk.New(ante, post)
}

// Render renders an abstract hunk back into unified-diff text, using
// difflib's SequenceMatcher to recompute the +/-/space opcodes between the
// ante and post line sequences — replacing the original's hand-rolled LCS
// table (spec §1's one permitted diff-generation helper).
func Render(h hunk.Hunk) lines.Sequence {
	ante := sequenceStrings(h.Ante.Lines)
	post := sequenceStrings(h.Post.Lines)

	sm := difflib.NewMatcher(ante, post)
	var body lines.Sequence
	for _, op := range sm.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, l := range ante[op.I1:op.I2] {
				body = append(body, lines.Line(" "+l))
			}
		case 'd':
			for _, l := range ante[op.I1:op.I2] {
				body = append(body, lines.Line("-"+l))
			}
		case 'i':
			for _, l := range post[op.J1:op.J2] {
				body = append(body, lines.Line("+"+l))
			}
		case 'r':
			for _, l := range ante[op.I1:op.I2] {
				body = append(body, lines.Line("-"+l))
			}
			for _, l := range post[op.J1:op.J2] {
				body = append(body, lines.Line("+"+l))
			}
		}
	}

	header := hunkHeaderLine(h.Ante.StartIndex+1, len(h.Ante.Lines), h.Post.StartIndex+1, len(h.Post.Lines))
	out := lines.Sequence{header}
	return append(out, body...)
}

func hunkHeaderLine(anteStart, anteLen, postStart, postLen int) lines.Line {
	return lines.Line(
		"@@ -" + strconv.Itoa(anteStart) + "," + strconv.Itoa(anteLen) +
			" +" + strconv.Itoa(postStart) + "," + strconv.Itoa(postLen) + " @@\n")
}

func sequenceStrings(seq lines.Sequence) []string {
	out := make([]string, len(seq))
	for i, l := range seq {
		out[i] = string(l)
	}
	return out
}
