package ctxdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopatch/pkg/lines"
)

func sampleDiff() lines.Sequence {
	return lines.Sequence{
		"*** a/foo.txt\t2024-01-01 00:00:00.000000000 +0000\n",
		"--- b/foo.txt\t2024-01-01 00:00:01.000000000 +0000\n",
		"***************\n",
		"*** 2 ****\n",
		"! b\n",
		"--- 2,3 ----\n",
		"! B\n",
		"+ b2\n",
	}
}

func TestParseAtBasic(t *testing.T) {
	src := sampleDiff()
	d, consumed, err := ParseAt(src, 0)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, len(src), consumed)
	assert.Equal(t, "a/foo.txt", d.Header.Ante.FilePath)
	assert.Equal(t, "b/foo.txt", d.Header.Post.FilePath)
	require.Len(t, d.Hunks, 1)

	h := d.Hunks[0]
	assert.Equal(t, 2, h.AnteChunk.StartLineNum)
	assert.Equal(t, 1, h.AnteChunk.NumLines)
	assert.Equal(t, 2, h.PostChunk.StartLineNum)
	assert.Equal(t, 2, h.PostChunk.NumLines)
}

func TestHunkSingleLineAnteTakenFromAnteChunk(t *testing.T) {
	src := sampleDiff()
	d, _, err := ParseAt(src, 0)
	require.NoError(t, err)

	h := d.Hunks[0]
	assert.Equal(t, lines.Sequence{"b\n"}, h.AnteLines())
	assert.Equal(t, lines.Sequence{"B\n", "b2\n"}, h.PostLines())
}

func TestHunkToAbstractHunk(t *testing.T) {
	src := sampleDiff()
	d, _, err := ParseAt(src, 0)
	require.NoError(t, err)

	ah, err := d.Hunks[0].ToAbstractHunk()
	require.NoError(t, err)
	assert.Equal(t, 1, ah.Ante.StartIndex)
	assert.Equal(t, lines.Sequence{"b\n"}, ah.Ante.Lines)
	assert.Equal(t, 1, ah.Post.StartIndex)
	assert.Equal(t, lines.Sequence{"B\n", "b2\n"}, ah.Post.Lines)
}

func TestParseAtNoMatch(t *testing.T) {
	src := lines.Sequence{"--- a/foo\n", "+++ b/foo\n"}
	d, consumed, err := ParseAt(src, 0)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.Zero(t, consumed)
}

func TestParseAtMissingPostHeader(t *testing.T) {
	src := lines.Sequence{"*** a/foo.txt\n", "***************\n"}
	_, _, err := ParseAt(src, 0)
	assert.Error(t, err)
}

func TestMultiLineAnteNotReconstructed(t *testing.T) {
	src := lines.Sequence{
		"*** a/foo.txt\n",
		"--- b/foo.txt\n",
		"***************\n",
		"*** 2,3 ****\n",
		"! b\n",
		"! c\n",
		"--- 2,3 ----\n",
		"! B\n",
		"! C\n",
	}
	d, _, err := ParseAt(src, 0)
	require.NoError(t, err)
	h := d.Hunks[0]
	assert.Equal(t, lines.Sequence{"b\n", "c\n"}, h.AnteLines())
	assert.Equal(t, lines.Sequence{"B\n", "C\n"}, h.PostLines())
}

func TestToAbstractHunkRejectsAllContextHunk(t *testing.T) {
	src := lines.Sequence{
		"*** a/foo.txt\n",
		"--- b/foo.txt\n",
		"***************\n",
		"*** 2,3 ****\n",
		"  b\n",
		"  c\n",
		"--- 2,3 ----\n",
		"  b\n",
		"  c\n",
	}
	d, _, err := ParseAt(src, 0)
	require.NoError(t, err)
	require.Len(t, d.Hunks, 1)

	_, err = d.Hunks[0].ToAbstractHunk()
	assert.Error(t, err)
}
