// Package diffstat recognizes the diff-stat summary block (spec §4.4) that
// git diff --stat / diffstat emit ahead of a patch body: an optional "---"
// divider, optional blank lines, then either a "0 files changed" line or a
// run of per-file stat lines followed by an "N files changed[, ...]" line.
// Grounded in original_source/diff_patch/src/diff_stats.rs's DiffStatParser.
package diffstat

import (
	"regexp"

	"gopatch/pkg/lines"
)

var (
	emptyRe       = regexp.MustCompile(`^#? 0 files changed\n?$`)
	endRe         = regexp.MustCompile(`^#? (\d+) files? changed(, (\d+) insertions?\(\+\))?(, (\d+) deletions?\(-\))?(, (\d+) modifications?\(!\))?\n?$`)
	fileStatsRe   = regexp.MustCompile(`^#? (\S+)\s*\|((binary)|(\s*(\d+)(\s+\+*-*!*)?))\n$`)
	blankLineRe   = regexp.MustCompile(`^\s*\n$`)
	dividerLineRe = regexp.MustCompile(`^---\n$`)
)

// SummaryRangeAt returns the inclusive [start, end] line range of the
// diff-stat summary beginning at or after src[start], or false if no summary
// starts there.
func SummaryRangeAt(src lines.Sequence, start int) (int, int, bool) {
	index := start

	if index < len(src) && dividerLineRe.MatchString(string(src[index])) {
		index++
	}
	for index < len(src) && blankLineRe.MatchString(string(src[index])) {
		index++
	}
	if index >= len(src) {
		return 0, 0, false
	}
	if emptyRe.MatchString(string(src[index])) {
		return start, index, true
	}
	for index < len(src) && fileStatsRe.MatchString(string(src[index])) {
		index++
	}
	if index < len(src) && endRe.MatchString(string(src[index])) {
		return start, index, true
	}
	return 0, 0, false
}
