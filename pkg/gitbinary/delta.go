package gitbinary

import "gopatch/pkg/errors"

// ApplyDelta applies a git pack-style binary delta to source, reconstructing
// the target bytes a "delta N" GIT binary payload describes. Spec §1
// explicitly scopes this as delta *application* only — construction is a
// non-goal — so there is no corresponding Encode/Diff function here.
//
// Wire format (git's pack-delta, documented informally in
// Documentation/technical/pack-format.txt upstream; not present in
// original_source, whose git_binary_diff.rs stub never implements delta
// application): a varint source size, a varint target size, then a sequence
// of copy ops (top bit set: a bitmask of which offset/size bytes follow) and
// insert ops (top bit clear: a 1-127 literal byte count).
func ApplyDelta(source, delta []byte) ([]byte, error) {
	sourceSize, pos, err := readDeltaVarint(delta, 0)
	if err != nil {
		return nil, err
	}
	if sourceSize != len(source) {
		return nil, errors.GitDeltaError("delta source size does not match provided source")
	}
	targetSize, pos, err := readDeltaVarint(delta, pos)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, targetSize)
	for pos < len(delta) {
		cmd := delta[pos]
		pos++
		if cmd&0x80 != 0 {
			var offset, size uint32
			if cmd&0x01 != 0 {
				offset, pos, err = readDeltaByte(delta, pos, offset, 0)
				if err != nil {
					return nil, err
				}
			}
			if cmd&0x02 != 0 {
				offset, pos, err = readDeltaByte(delta, pos, offset, 8)
				if err != nil {
					return nil, err
				}
			}
			if cmd&0x04 != 0 {
				offset, pos, err = readDeltaByte(delta, pos, offset, 16)
				if err != nil {
					return nil, err
				}
			}
			if cmd&0x08 != 0 {
				offset, pos, err = readDeltaByte(delta, pos, offset, 24)
				if err != nil {
					return nil, err
				}
			}
			if cmd&0x10 != 0 {
				size, pos, err = readDeltaByte(delta, pos, size, 0)
				if err != nil {
					return nil, err
				}
			}
			if cmd&0x20 != 0 {
				size, pos, err = readDeltaByte(delta, pos, size, 8)
				if err != nil {
					return nil, err
				}
			}
			if cmd&0x40 != 0 {
				size, pos, err = readDeltaByte(delta, pos, size, 16)
				if err != nil {
					return nil, err
				}
			}
			if size == 0 {
				size = 0x10000
			}
			if int(offset)+int(size) > len(source) {
				return nil, errors.GitDeltaError("copy instruction references bytes outside source")
			}
			out = append(out, source[offset:offset+size]...)
			continue
		}
		if cmd == 0 {
			return nil, errors.GitDeltaError("delta contains a reserved zero opcode")
		}
		n := int(cmd)
		if pos+n > len(delta) {
			return nil, errors.GitDeltaError("insert instruction runs past end of delta")
		}
		out = append(out, delta[pos:pos+n]...)
		pos += n
	}

	if len(out) != targetSize {
		return nil, errors.GitDeltaError("reconstructed target size does not match delta header")
	}
	return out, nil
}

// readDeltaVarint decodes git's base-128 little-endian varint (continuation
// bit in the high bit of each byte) starting at delta[pos].
func readDeltaVarint(delta []byte, pos int) (int, int, error) {
	size := 0
	shift := uint(0)
	for {
		if pos >= len(delta) {
			return 0, 0, errors.GitDeltaError("delta truncated while reading a size varint")
		}
		c := delta[pos]
		pos++
		size |= int(c&0x7f) << shift
		if c&0x80 == 0 {
			break
		}
		shift += 7
	}
	return size, pos, nil
}

// readDeltaByte folds delta[pos] into acc at the given bit shift and
// advances pos, used to assemble a copy instruction's offset/size fields
// from only the bytes the opcode's bitmask says are present.
func readDeltaByte(delta []byte, pos int, acc uint32, shift uint) (uint32, int, error) {
	if pos >= len(delta) {
		return 0, 0, errors.GitDeltaError("delta truncated while reading a copy instruction")
	}
	return acc | uint32(delta[pos])<<shift, pos + 1, nil
}
