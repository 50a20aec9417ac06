// Package preamble parses the git-style patch preamble (spec §4.4/§3): the
// "diff --git A B" line plus the contiguous run of mode/rename/index
// "extras" lines that can follow it. Grounded in
// original_source/diff_patch/src/preamble.rs's GitPreamble/GitPreambleParser.
package preamble

import (
	"regexp"

	"gopatch/pkg/lines"
)

const pathPattern = `"([^"]+)"|(\S+)`

var diffGitRe = regexp.MustCompile(`^diff\s+--git\s+(` + pathPattern + `)\s+(` + pathPattern + `)\n?$`)

// extraPattern names one recognized preamble extra line and the regex that
// recognizes it; group 1 is always the key, group 2 the value.
type extraPattern struct {
	re *regexp.Regexp
}

var extraPatterns = []extraPattern{
	{regexp.MustCompile(`^(old mode)\s+(\d*)\n?$`)},
	{regexp.MustCompile(`^(new mode)\s+(\d*)\n?$`)},
	{regexp.MustCompile(`^(deleted file mode)\s+(\d*)\n?$`)},
	{regexp.MustCompile(`^(new file mode)\s+(\d*)\n?$`)},
	{regexp.MustCompile(`^(similarity index)\s+(\d*%)\n?$`)},
	{regexp.MustCompile(`^(dissimilarity index)\s+(\d*%)\n?$`)},
	{regexp.MustCompile(`^(index)\s+([a-fA-F0-9]+\.\.[a-fA-F0-9]+(?: \d*)?)\n?$`)},
	{regexp.MustCompile(`^(copy from)\s+(` + pathPattern + `)\n?$`)},
	{regexp.MustCompile(`^(copy to)\s+(` + pathPattern + `)\n?$`)},
	{regexp.MustCompile(`^(rename from)\s+(` + pathPattern + `)\n?$`)},
	{regexp.MustCompile(`^(rename to)\s+(` + pathPattern + `)\n?$`)},
}

// Extra is one recognized preamble extra: its value and the line offset
// (relative to the preamble's start) it was found at.
type Extra struct {
	Value      string
	LineOffset int
}

// Preamble is a parsed "diff --git" header plus whatever extras followed it.
type Preamble struct {
	AnteFilePath  string
	PostFilePath  string
	Extras        map[string]Extra
	LinesConsumed int
}

// firstNonEmpty returns the first non-empty capture group among the given
// indices — PATH_RE_STR has two alternatives (quoted, bare), only one of
// which captures for a given match.
func firstNonEmpty(groups []string, indices ...int) string {
	for _, i := range indices {
		if i < len(groups) && groups[i] != "" {
			return groups[i]
		}
	}
	return ""
}

// ParseAt recognizes a git preamble starting at lines[start]. It returns
// (nil, 0) when lines[start] isn't a "diff --git" line, matching the other
// format parsers' Ok(None) contract — preamble parsing never fails outright,
// it simply doesn't match.
func ParseAt(src lines.Sequence, start int) (*Preamble, int) {
	if start >= len(src) {
		return nil, 0
	}
	m := diffGitRe.FindStringSubmatch(string(src[start]))
	if m == nil {
		return nil, 0
	}
	ante := firstNonEmpty(m, 2, 3)
	post := firstNonEmpty(m, 5, 6)

	extras := make(map[string]Extra)
	index := start + 1
	for ; index < len(src); index++ {
		found := false
		for _, p := range extraPatterns {
			if sm := p.re.FindStringSubmatch(string(src[index])); sm != nil {
				extras[sm[1]] = Extra{Value: sm[2], LineOffset: index - start}
				found = true
				break
			}
		}
		if !found {
			break
		}
	}

	consumed := index - start
	return &Preamble{
		AnteFilePath:  ante,
		PostFilePath:  post,
		Extras:        extras,
		LinesConsumed: consumed,
	}, consumed
}
