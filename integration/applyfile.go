package integration

import (
	"fmt"
	"io"
	"os"

	"gopatch/pkg/apply"
	"gopatch/pkg/ctxdiff"
	"gopatch/pkg/diffplus"
	"gopatch/pkg/hunk"
	"gopatch/pkg/lines"
	"gopatch/pkg/patch"
	"gopatch/pkg/unified"
)

// ApplyPatchToFile reads targetPath, applies the first unified or context
// diff found in patchText against it, and atomically writes the result back
// to targetPath. It is a thin convenience wrapper around pkg/patch and
// pkg/apply for the common single-file case; patches touching several files
// in one stream, git preambles, and GIT binary payloads are all left to a
// caller that wants to route DiffPlus items to their declared paths itself.
func ApplyPatchToFile(targetPath string, patchText []byte, reverse bool, diag io.Writer, opts ...apply.Option) (apply.Result, error) {
	src, err := os.ReadFile(targetPath)
	if err != nil {
		return apply.Result{}, fmt.Errorf("reading %s: %w", targetPath, err)
	}

	info, err := os.Stat(targetPath)
	if err != nil {
		return apply.Result{}, fmt.Errorf("stat %s: %w", targetPath, err)
	}

	p := patch.New()
	parsed, err := p.Parse(lines.FromString(string(patchText)))
	if err != nil {
		return apply.Result{}, fmt.Errorf("parsing patch: %w", err)
	}

	hunks, err := firstFileHunks(parsed)
	if err != nil {
		return apply.Result{}, err
	}
	if hunks == nil {
		return apply.Result{}, fmt.Errorf("no applicable unified or context diff found in patch")
	}

	engine := apply.New(opts...)
	result := engine.Apply(hunks, lines.FromString(string(src)), reverse, diag, targetPath)

	if err := AtomicWrite(targetPath, []byte(joinLines(result.Lines)), info.Mode()); err != nil {
		return result, fmt.Errorf("writing %s: %w", targetPath, err)
	}
	return result, nil
}

// firstFileHunks returns the lowered hunks of the first Unified or Context
// diff body in parsed, or nil if none is present. A degenerate (all-context)
// hunk anywhere in that diff is reported as an error rather than silently
// dropped or crashing the process.
func firstFileHunks(parsed *patch.Patch) ([]hunk.Hunk, error) {
	for _, item := range parsed.Items {
		if item.DiffPlus == nil || item.DiffPlus.Diff == nil {
			continue
		}
		switch item.DiffPlus.Diff.Kind {
		case diffplus.KindUnified:
			return lowerUnifiedHunks(item.DiffPlus.Diff.Unified)
		case diffplus.KindContext:
			return lowerContextHunks(item.DiffPlus.Diff.Context)
		}
	}
	return nil, nil
}

func lowerUnifiedHunks(d *unified.Diff) ([]hunk.Hunk, error) {
	out := make([]hunk.Hunk, len(d.Hunks))
	for i, h := range d.Hunks {
		ah, err := h.ToAbstractHunk()
		if err != nil {
			return nil, fmt.Errorf("hunk #%d: %w", i+1, err)
		}
		out[i] = ah
	}
	return out, nil
}

func lowerContextHunks(d *ctxdiff.Diff) ([]hunk.Hunk, error) {
	out := make([]hunk.Hunk, len(d.Hunks))
	for i, h := range d.Hunks {
		ah, err := h.ToAbstractHunk()
		if err != nil {
			return nil, fmt.Errorf("hunk #%d: %w", i+1, err)
		}
		out[i] = ah
	}
	return out, nil
}

func joinLines(seq lines.Sequence) string {
	var out []byte
	for _, l := range seq {
		out = append(out, l...)
	}
	return string(out)
}
