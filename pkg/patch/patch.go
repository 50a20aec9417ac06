// Package patch decomposes a full patch file into its header and its
// sequence of diff-plus units interleaved with rubbish (spec §4.5). Grounded
// in original_source/diff_patch/src/patch.rs's PatchHeader, generalized from
// a single header split into the full decomposition spec §4.5 describes —
// patch.rs never drives a diff-plus scan itself, so the outer state machine
// here is built directly from the spec's prose rather than adapted from an
// existing Rust loop.
package patch

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gopatch/pkg/diffplus"
	"gopatch/pkg/diffstat"
	"gopatch/pkg/lines"
)

// Rubbish is an uninterpreted block of lines found between two recognized
// diff-plus units, or after the last one. Input with no diff-plus unit at
// all yields no Rubbish: every line of it becomes the header.
type Rubbish struct {
	StartIndex int
	Lines      lines.Sequence
}

// Item is one element of a patch's body: either a recognized DiffPlus or an
// interleaving Rubbish block. Exactly one field is populated.
type Item struct {
	DiffPlus *diffplus.DiffPlus
	Rubbish  *Rubbish
}

// Patch is a fully decomposed patch file: its header (comment, description,
// diff-stat summary) plus the ordered sequence of diff-plus/rubbish items
// that follow it.
type Patch struct {
	ID uuid.UUID

	Lines         lines.Sequence
	Comment       lines.Sequence
	Description   lines.Sequence
	DiffStatLines lines.Sequence

	Items []Item
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger attaches a zap logger the Parser uses to record each decoded
// patch's correlation ID and item counts.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// Parser decomposes patch files per spec §4.5.
type Parser struct {
	diffPlus *diffplus.PlusParser
	logger   *zap.Logger
}

// New constructs a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{diffPlus: diffplus.NewPlusParser(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decomposes src into a Patch. It scans forward trying the diff-plus
// parser at each position: the run of lines before the first successful
// parse becomes the header, gaps between successful parses become Rubbish
// items, and a hard parse error (a diff-plus that started matching but was
// malformed) aborts the scan and is returned directly.
func (p *Parser) Parse(src lines.Sequence) (*Patch, error) {
	headerEnd := len(src)
	firstFound := false
	lastEnd := 0
	var items []Item

	index := 0
	for index < len(src) {
		dp, consumed, err := p.diffPlus.ParseAt(src, index)
		if err != nil {
			return nil, err
		}
		if dp == nil {
			index++
			continue
		}

		if !firstFound {
			headerEnd = index
			firstFound = true
			lastEnd = index
		}
		if lastEnd < index {
			items = append(items, Item{Rubbish: &Rubbish{
				StartIndex: lastEnd,
				Lines:      append(lines.Sequence{}, src[lastEnd:index]...),
			}})
		}
		items = append(items, Item{DiffPlus: dp})
		index += consumed
		lastEnd = index
	}

	if firstFound && lastEnd < len(src) {
		items = append(items, Item{Rubbish: &Rubbish{
			StartIndex: lastEnd,
			Lines:      append(lines.Sequence{}, src[lastEnd:]...),
		}})
	}

	header := src[:headerEnd]
	comment, description, diffStatLines := splitHeader(header)

	id := uuid.New()
	p.logger.Debug("patch parsed",
		zap.String("id", id.String()),
		zap.Int("items", len(items)),
		zap.Int("headerLines", headerEnd))

	return &Patch{
		ID:            id,
		Lines:         append(lines.Sequence{}, src...),
		Comment:       comment,
		Description:   description,
		DiffStatLines: diffStatLines,
		Items:         items,
	}, nil
}

// splitHeader implements PatchHeader::new: leading "#"-prefixed lines form
// comment; the remainder is scanned line by line for a diff-stat summary
// range; everything between comment and that range (or to the end of the
// header if none is found) is description.
func splitHeader(header lines.Sequence) (comment, description, diffStatLines lines.Sequence) {
	descrStartsAt := 0
	for descrStartsAt < len(header) && hasHashPrefix(header[descrStartsAt]) {
		descrStartsAt++
	}

	statStart, statEnd := len(header), len(header)
	found := false
	for index := descrStartsAt; index < len(header); index++ {
		if s, e, ok := diffstat.SummaryRangeAt(header, index); ok {
			statStart, statEnd = s, e+1
			found = true
			break
		}
	}

	comment = header[:descrStartsAt]
	if found {
		description = header[descrStartsAt:statStart]
		diffStatLines = header[statStart:statEnd]
	} else {
		description = header[descrStartsAt:]
		diffStatLines = lines.Sequence{}
	}
	return comment, description, diffStatLines
}

func hasHashPrefix(l lines.Line) bool {
	return len(l) > 0 && l[0] == '#'
}
