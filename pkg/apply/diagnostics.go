package apply

import "fmt"

// appliedPosn is the (start line, length) pair the merged/already-applied
// diagnostic lines report — spec §4.6, original_source's AppliedPosnData.
type appliedPosn struct {
	startPosn int
	length    int
}

// String renders "line S (L lines)", matching AppliedPosnData's Display impl.
func (p appliedPosn) String() string {
	return fmt.Sprintf("line %d (%d lines)", p.startPosn, p.length)
}

func writeMerged(w diagWriter, path string, hunkNum int, posn appliedPosn) {
	if path != "" {
		fmt.Fprintf(w, "%s: Hunk #%d merged at %s.\n", path, hunkNum, posn)
		return
	}
	fmt.Fprintf(w, "Hunk #%d merged at %s.\n", hunkNum, posn)
}

func writeAlreadyApplied(w diagWriter, path string, hunkNum int, posn appliedPosn) {
	if path != "" {
		fmt.Fprintf(w, "%s: Hunk #%d already applied at %s.\n", path, hunkNum, posn)
		return
	}
	fmt.Fprintf(w, "Hunk #%d already applied at %s.\n", hunkNum, posn)
}

func writeUnexpectedEOF(w diagWriter, path string, hunkNum, total, remaining int) {
	if path != "" {
		fmt.Fprintf(w, "%s: Unexpected end of file: ", path)
	} else {
		fmt.Fprint(w, "Unexpected end of file: ")
	}
	if remaining > 1 {
		fmt.Fprintf(w, "Hunks #%d-%d could NOT be applied.\n", hunkNum, total)
		return
	}
	fmt.Fprintf(w, "Hunk #%d could NOT be applied.\n", hunkNum)
}

func writeNotMerged(w diagWriter, path string, hunkNum, startLine, endLine int) {
	if path != "" {
		fmt.Fprintf(w, "%s: Hunk #%d NOT MERGED at %d-%d.\n", path, hunkNum, startLine, endLine)
		return
	}
	fmt.Fprintf(w, "Hunk #%d NOT MERGED at %d-%d.\n", hunkNum, startLine, endLine)
}

// diagWriter is the minimal io.Writer-shaped interface the diagnostic
// helpers need; kept separate from io.Writer only to avoid importing io in
// this file for a single method set.
type diagWriter interface {
	Write(p []byte) (int, error)
}
