package base85

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testData = []byte("uioyf2oyqo;3nhi8uydjauyo98ua 54\000jhkh\034hh;kjjh")

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for i := 0; i < 10; i++ {
		data := testData[i:]
		enc := Encode(data)
		got, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}

func TestDecodeLiteralHello(t *testing.T) {
	enc := Encode([]byte("hello"))
	line := append([]byte{'A' + 5}, enc.Chars...)
	got, err := DecodeLine(line)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestDecodeSize(t *testing.T) {
	n, err := DecodeSize('A')
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = DecodeSize('Z')
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	n, err = DecodeSize('a')
	require.NoError(t, err)
	assert.Equal(t, 26, n)

	n, err = DecodeSize('z')
	require.NoError(t, err)
	assert.Equal(t, 51, n)

	_, err = DecodeSize('!')
	assert.Error(t, err)
}

func TestDecodeIllegalCharacter(t *testing.T) {
	_, err := Decode(Encoding{Chars: []byte{0x01}, Size: 1})
	assert.Error(t, err)
}

func TestDecodeLinesConcatenates(t *testing.T) {
	a := Encode([]byte("ab"))
	b := Encode([]byte("cd"))
	lineA := append([]byte{'A' + 2}, a.Chars...)
	lineB := append([]byte{'A' + 2}, b.Chars...)
	got, err := DecodeLines([][]byte{lineA, lineB})
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), got)
}
