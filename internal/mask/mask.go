// Package mask implements byte-level matching with per-byte wildcards.
//
// A Mask carries one bit per byte of a reference buffer, packed into 64-bit
// words: bit i of word w covers byte 64*w + i, the least-significant bit
// first. A set bit means the byte must match; a clear bit is a wildcard.
// Bits past the reference length are always clear.
package mask

import "bytes"

// Mask is a packed per-byte wildcard mask.
type Mask []uint64

// words returns the number of mask words needed to cover n bytes.
func words(n int) int { return (n + 63) >> 6 }

// AllOnes returns a mask matching every byte of an n-byte reference.
func AllOnes(n int) Mask {
	m := make(Mask, words(n))
	for i := range m {
		m[i] = ^uint64(0)
	}
	if leftover := n & 63; leftover > 0 {
		m[len(m)-1] &= (uint64(1) << leftover) - 1
	}
	return m
}

// Synthesize builds the mask for reference, clearing the bit of every byte
// covered by a non-overlapping occurrence of the joker pattern. Occurrences
// are found left to right, the scan resuming past the end of each match.
// An empty joker, or one longer than the reference, leaves the mask
// all-ones.
func Synthesize(reference, joker []byte) Mask {
	m := AllOnes(len(reference))
	if len(joker) == 0 || len(joker) > len(reference) {
		return m
	}

	pos := 0
	for pos+len(joker) <= len(reference) {
		if !bytes.Equal(reference[pos:pos+len(joker)], joker) {
			pos++
			continue
		}
		for p := pos; p < pos+len(joker); p++ {
			m[p>>6] &^= uint64(1) << (p & 63)
		}
		pos += len(joker)
	}
	return m
}

// matchWindow applies the mask kernel to one window of data, which must be
// at least len(reference) bytes long. The kernel walks 64-byte chunks: an
// all-zero mask word skips the chunk, an all-ones word compares it
// wholesale, and a mixed word compares byte by byte.
func matchWindow(data, reference []byte, m Mask) bool {
	refSize := len(reference)
	blocks := words(refSize)
	bytePos := 0

	for b := 0; b < blocks; b++ {
		w := m[b]
		if w == 0 {
			bytePos += 64
			continue
		}
		if w == ^uint64(0) {
			// A full word only occurs for complete 64-byte chunks; the
			// trailing partial word always has its high bits clear.
			if !bytes.Equal(reference[bytePos:bytePos+64], data[bytePos:bytePos+64]) {
				return false
			}
			bytePos += 64
			continue
		}
		cnt := refSize - bytePos
		if cnt > 64 {
			cnt = 64
		}
		for i := 0; i < cnt; i++ {
			if w>>uint(i)&1 == 1 && reference[bytePos] != data[bytePos] {
				return false
			}
			bytePos++
		}
	}
	return true
}

// searchWindow slides the kernel over data and reports whether any window
// matches.
func searchWindow(data, reference []byte, m Mask) bool {
	if len(data) < len(reference) {
		return false
	}
	end := len(data) - len(reference)
	for i := 0; i <= end; i++ {
		if matchWindow(data[i:], reference, m) {
			return true
		}
	}
	return false
}

// MatchBuffer reports whether data matches reference under the mask. The
// buffers must be the same length.
func MatchBuffer(data, reference []byte, m Mask) (bool, error) {
	if len(data) != len(reference) {
		return false, ErrLengthMismatch
	}
	if len(m) < words(len(reference)) {
		return false, ErrMaskSize
	}
	return matchWindow(data, reference, m), nil
}
