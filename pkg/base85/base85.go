// Package base85 implements git's base-85 variant (spec §4.4), used to
// encode/decode the data lines of a GIT binary patch payload. It is grounded
// in original_source/diff_patch/src/git_base85.rs's GitBase85, rewritten as
// stateless functions since Go needs no decode-map receiver — the alphabet
// is a compile-time table.
package base85

import (
	"gopatch/pkg/errors"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz!#$%&()*+-;<=>?@^_`{|}~"

const maxAccumulator = 0xFFFFFFFF

var decodeTable [256]int8

func init() {
	for i := range decodeTable {
		decodeTable[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		decodeTable[alphabet[i]] = int8(i)
	}
}

// Encoding is a single base-85 data line: the encoded character string plus
// the original byte count it represents.
type Encoding struct {
	Chars []byte
	Size  int
}

// Encode converts data into its base-85 representation, 4 bytes per group
// of 5 characters, zero-padding the final partial group.
func Encode(data []byte) Encoding {
	var out []byte
	for index := 0; index < len(data); {
		var acc uint64
		for _, shift := range []uint{24, 16, 8, 0} {
			acc |= uint64(data[index]) << shift
			index++
			if index == len(data) {
				break
			}
		}
		var snippet [5]byte
		for i := 4; i >= 0; i-- {
			snippet[i] = alphabet[acc%85]
			acc /= 85
		}
		out = append(out, snippet[:]...)
	}
	return Encoding{Chars: out, Size: len(data)}
}

// Decode reverses Encode, reconstructing exactly Size bytes from the encoded
// character string.
func Decode(enc Encoding) ([]byte, error) {
	data := make([]byte, enc.Size)
	dIndex, sIndex := 0, 0
	for dIndex < enc.Size {
		var acc uint64
		for i := 0; i < 5; i++ {
			if sIndex == len(enc.Chars) {
				break
			}
			d := decodeTable[enc.Chars[sIndex]]
			if d < 0 {
				return nil, errors.Base85Error("illegal git base85 character")
			}
			acc = acc*85 + uint64(d)
			sIndex++
		}
		if acc > maxAccumulator {
			return nil, errors.Base85Error("base85 accumulator overflow")
		}
		for i := 0; i < 4; i++ {
			if dIndex == enc.Size {
				break
			}
			acc = (acc << 8) | (acc >> 24)
			data[dIndex] = byte(acc % 256)
			dIndex++
		}
	}
	return data, nil
}

// DecodeSize maps a data line's leading length-byte to the payload byte
// count it encodes: 'A'..'Z' -> 0..25, 'a'..'z' -> 26..51, per spec §4.4.
//
// original_source's git_base85.rs computes the lowercase branch as
// ch-'a'+27, one higher than the spec's literal 26..51 rule. Spec.md is not
// silent here, so it — not the Rust source — is the authoritative contract;
// see DESIGN.md for the resolved discrepancy.
func DecodeSize(ch byte) (int, error) {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return int(ch - 'A'), nil
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 26, nil
	default:
		return 0, errors.New(errors.CodeBase85, "expected length byte in [A-Za-z]")
	}
}

// DecodeLine decodes a single base-85 data line (length byte plus encoded
// characters, with any trailing newline already stripped by the caller).
func DecodeLine(line []byte) ([]byte, error) {
	if len(line) == 0 {
		return nil, errors.Base85Error("empty base85 data line")
	}
	size, err := DecodeSize(line[0])
	if err != nil {
		return nil, err
	}
	return Decode(Encoding{Chars: line[1:], Size: size})
}

// DecodeLines decodes a run of base-85 data lines into one concatenated byte
// sequence, as required to reassemble a GIT binary patch payload.
func DecodeLines(lines [][]byte) ([]byte, error) {
	var out []byte
	for _, line := range lines {
		decoded, err := DecodeLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded...)
	}
	return out, nil
}
