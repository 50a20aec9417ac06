package unified

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopatch/pkg/lines"
)

func sampleDiff() lines.Sequence {
	return lines.Sequence{
		"--- a/foo.txt\t2024-01-01 00:00:00.000000000 +0000\n",
		"+++ b/foo.txt\t2024-01-01 00:00:01.000000000 +0000\n",
		"@@ -2,1 +2,2 @@\n",
		"-b\n",
		"+B\n",
		"+b2\n",
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
	assert.Equal(t, 2, d.Hunks[0].AnteStartLine)
	assert.Equal(t, 1, d.Hunks[0].AnteLength)
	assert.Equal(t, 2, d.Hunks[0].PostStartLine)
	assert.Equal(t, 2, d.Hunks[0].PostLength)
}

func TestParseAtNoMatch(t *testing.T) {
	src := lines.Sequence{"diff --git a/foo b/foo\n", "index 1..2\n"}
	d, consumed, err := ParseAt(src, 0)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.Zero(t, consumed)
}

func TestParseAtMissingPostHeader(t *testing.T) {
	src := lines.Sequence{"--- a/foo.txt\n", "@@ -1,1 +1,1 @@\n"}
	_, _, err := ParseAt(src, 0)
	assert.Error(t, err)
}

func TestParseAtUnexpectedEOF(t *testing.T) {
	src := lines.Sequence{
		"--- a/foo.txt\n",
		"+++ b/foo.txt\n",
		"@@ -1,2 +1,2 @@\n",
		" a\n",
	}
	_, _, err := ParseAt(src, 0)
	assert.Error(t, err)
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

func TestHunkToAbstractHunkEmptyAnteKeepsRawStart(t *testing.T) {
	src := lines.Sequence{
		"--- a/foo.txt\n",
		"+++ b/foo.txt\n",
		"@@ -5,0 +6,1 @@\n",
		"+new\n",
	}
	d, _, err := ParseAt(src, 0)
	require.NoError(t, err)
	ah, err := d.Hunks[0].ToAbstractHunk()
	require.NoError(t, err)
	assert.Equal(t, 5, ah.Ante.StartIndex)
	assert.Empty(t, ah.Ante.Lines)
}

func TestRenderRoundTrip(t *testing.T) {
	src := sampleDiff()
	d, _, err := ParseAt(src, 0)
	require.NoError(t, err)

	ah, err := d.Hunks[0].ToAbstractHunk()
	require.NoError(t, err)
	rendered := Render(ah)

	assert.Contains(t, string(rendered[0]), "@@ -2,1 +2,2 @@")
	assert.Contains(t, rendered, lines.Line("-b\n"))
	assert.Contains(t, rendered, lines.Line("+B\n"))
	assert.Contains(t, rendered, lines.Line("+b2\n"))
}

func TestNoNewlineMarkerElided(t *testing.T) {
	src := lines.Sequence{
		"--- a/foo.txt\n",
		"+++ b/foo.txt\n",
		"@@ -1,1 +1,1 @@\n",
		"-old",
		"\\ No newline at end of file\n",
		"+new",
	}
	d, _, err := ParseAt(src, 0)
	require.NoError(t, err)
	ah, err := d.Hunks[0].ToAbstractHunk()
	require.NoError(t, err)
	assert.Equal(t, lines.Sequence{"old"}, ah.Ante.Lines)
	assert.Equal(t, lines.Sequence{"new"}, ah.Post.Lines)
}

func TestToAbstractHunkRejectsAllContextHunk(t *testing.T) {
	src := lines.Sequence{
		"--- a/foo.txt\n",
		"+++ b/foo.txt\n",
		"@@ -1,2 +1,2 @@\n",
		" a\n",
		" b\n",
	}
	d, _, err := ParseAt(src, 0)
	require.NoError(t, err)
	require.Len(t, d.Hunks, 1)

	_, err = d.Hunks[0].ToAbstractHunk()
	assert.Error(t, err)
}
