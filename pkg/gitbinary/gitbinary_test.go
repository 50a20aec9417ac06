package gitbinary

import (
	"bytes"
	"compress/zlib"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopatch/pkg/base85"
	"gopatch/pkg/lines"
)

// buildLiteralBlock zlib-compresses data, base85-encodes it, and returns the
// "(literal|delta) N" line plus a single base85 data line and a blank
// terminator — the on-disk shape a GIT binary patch payload has.
func buildLiteralBlock(t *testing.T, method string, data []byte) lines.Sequence {
	t.Helper()
	var zipped bytes.Buffer
	w := zlib.NewWriter(&zipped)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	enc := base85.Encode(zipped.Bytes())
	require.Less(t, len(zipped.Bytes()), 52, "test payload must fit on one base85 data line")

	sizeByte := byte('A' + len(zipped.Bytes()))
	if len(zipped.Bytes()) >= 26 {
		sizeByte = byte('a' + len(zipped.Bytes()) - 26)
	}
	dataLine := append([]byte{sizeByte}, enc.Chars...)

	out := lines.Sequence{lines.Line(method + " " + strconv.Itoa(len(data)) + "\n")}
	out = append(out, lines.Line(string(dataLine)+"\n"))
	out = append(out, lines.Line("\n"))
	return out
}

func TestParseAtLiteralRoundTrip(t *testing.T) {
	src := lines.Sequence{"GIT binary patch\n"}
	src = append(src, buildLiteralBlock(t, "literal", []byte("hello"))...)
	src = append(src, buildLiteralBlock(t, "literal", []byte("hello"))...)

	diff, consumed, err := ParseAt(src, 0)
	require.NoError(t, err)
	assert.Equal(t, len(src), consumed)
	assert.Equal(t, []byte("hello"), diff.Forward.Data)
	assert.Equal(t, []byte("hello"), diff.Reverse.Data)
	assert.Equal(t, MethodLiteral, diff.Forward.Method)
	assert.Equal(t, 5, diff.Forward.Size)
}

func TestParseAtNotGitBinary(t *testing.T) {
	src := lines.Sequence{"--- a\n", "+++ b\n"}
	diff, consumed, err := ParseAt(src, 0)
	require.NoError(t, err)
	assert.Nil(t, diff)
	assert.Zero(t, consumed)
}

func TestParseAtSizeMismatch(t *testing.T) {
	src := lines.Sequence{"GIT binary patch\n"}
	block := buildLiteralBlock(t, "literal", []byte("hello"))
	block[0] = "literal 999\n"
	src = append(src, block...)
	src = append(src, buildLiteralBlock(t, "literal", []byte("hello"))...)

	_, _, err := ParseAt(src, 0)
	assert.Error(t, err)
}

func TestApplyDeltaCopyAndInsert(t *testing.T) {
	source := []byte("the quick brown fox")
	// header: source size (len=19 -> 0x13), target size (len("the quick fox")=13 -> 0x0d)
	delta := []byte{0x13, 0x0d}
	// insert "the quick " (10 bytes)
	delta = append(delta, 10)
	delta = append(delta, []byte("the quick ")...)
	// copy "fox" (offset 16, size 3): cmd = 0x80 | 0x01 (offset byte 0) | 0x10 (size byte 0)
	delta = append(delta, 0x80|0x01|0x10, 16, 3)

	got, err := ApplyDelta(source, delta)
	require.NoError(t, err)
	assert.Equal(t, "the quick fox", string(got))
}

func TestApplyDeltaSourceSizeMismatch(t *testing.T) {
	delta := []byte{5, 0}
	_, err := ApplyDelta([]byte("abc"), delta)
	assert.Error(t, err)
}

func TestApplyDeltaCopyOutOfRange(t *testing.T) {
	source := []byte("abc")
	delta := []byte{3, 5}
	delta = append(delta, 0x80|0x01|0x10, 10, 5)
	_, err := ApplyDelta(source, delta)
	assert.Error(t, err)
}
