// Package diffplus combines the format parsers into the polymorphic
// {Unified, Context, GitBinary, GitPreambleOnly} diff family spec §4.4/§9
// describes, plus the preamble-plus-diff pairing ("DiffPlus") patch
// decomposition consumes. Grounded in original_source/diff_patch/src/diff.rs's
// Diff/DiffParser/DiffPlus/DiffPlusParser.
//
// original_source's DiffParser only ever tries Unified then Context: its
// GitBinaryDiffParser is built but never wired into the Diff enum, leaving
// GIT binary patches unparseable end to end. Since spec §4.4 names GIT
// binary as a first-class recognized format, this package's Parser tries it
// too — first, since "GIT binary patch" is an unambiguous literal unlike
// the unified/context header regexes.
package diffplus

import (
	"gopatch/pkg/ctxdiff"
	"gopatch/pkg/gitbinary"
	"gopatch/pkg/lines"
	"gopatch/pkg/preamble"
	"gopatch/pkg/unified"
)

// Kind tags which format a Diff actually holds.
type Kind int

const (
	KindUnified Kind = iota
	KindContext
	KindGitBinary
	KindGitPreambleOnly
)

// Diff is the tagged union over the four recognized diff-body shapes. Only
// the field matching Kind is populated.
type Diff struct {
	Kind            Kind
	Unified         *unified.Diff
	Context         *ctxdiff.Diff
	GitBinary       *gitbinary.Diff
	GitPreambleOnly *preamble.Preamble
}

// Parser tries each diff-body format in turn at a given position. It holds
// no state; every format sub-parser is a pure function over (lines, index).
type Parser struct{}

// NewParser builds a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseAt tries GIT binary, then unified, then context, returning the first
// format that recognizes src[start]. It returns (nil, 0, nil) when none do.
func (p *Parser) ParseAt(src lines.Sequence, start int) (*Diff, int, error) {
	if gb, consumed, err := gitbinary.ParseAt(src, start); err != nil {
		return nil, 0, err
	} else if gb != nil {
		return &Diff{Kind: KindGitBinary, GitBinary: gb}, consumed, nil
	}

	if u, consumed, err := unified.ParseAt(src, start); err != nil {
		return nil, 0, err
	} else if u != nil {
		return &Diff{Kind: KindUnified, Unified: u}, consumed, nil
	}

	if c, consumed, err := ctxdiff.ParseAt(src, start); err != nil {
		return nil, 0, err
	} else if c != nil {
		return &Diff{Kind: KindContext, Context: c}, consumed, nil
	}

	return nil, 0, nil
}

// DiffPlus pairs an optional git preamble with the diff body that followed
// it — spec §4.5's unit of patch decomposition.
type DiffPlus struct {
	Preamble *preamble.Preamble
	Diff     *Diff
}

// PlusParser decomposes one DiffPlus at a time: a preamble (if any) followed
// by a diff body, or — when a git preamble is followed by no recognizable
// body at all (a pure rename/mode-change patch) — a GitPreambleOnly Diff.
type PlusParser struct {
	diffParser *Parser
}

// NewPlusParser builds a PlusParser.
func NewPlusParser() *PlusParser {
	return &PlusParser{diffParser: NewParser()}
}

// ParseAt recognizes one DiffPlus starting at src[start]. It returns
// (nil, 0, nil) when neither a preamble nor a bare diff body starts there.
func (p *PlusParser) ParseAt(src lines.Sequence, start int) (*DiffPlus, int, error) {
	pre, preConsumed := preamble.ParseAt(src, start)
	if pre != nil {
		diff, diffConsumed, err := p.diffParser.ParseAt(src, start+preConsumed)
		if err != nil {
			return nil, 0, err
		}
		if diff != nil {
			return &DiffPlus{Preamble: pre, Diff: diff}, preConsumed + diffConsumed, nil
		}
		return &DiffPlus{
			Preamble: nil,
			Diff:     &Diff{Kind: KindGitPreambleOnly, GitPreambleOnly: pre},
		}, preConsumed, nil
	}

	diff, diffConsumed, err := p.diffParser.ParseAt(src, start)
	if err != nil {
		return nil, 0, err
	}
	if diff == nil {
		return nil, 0, nil
	}
	return &DiffPlus{Preamble: nil, Diff: diff}, diffConsumed, nil
}
