package scan

import "encoding/binary"

// nextVector implements the top-level vector-mode algorithm: drain any
// cached candidates from the last scanned chunk; otherwise scan forward
// chunk by chunk computing a bitmask of candidate positions per chunk (via
// SWAR, 8 bytes at a time) and cache it; fall back to a scalar scan over
// any final partial chunk.
func (s *Scanner) nextVector(buf []byte, start, end int) (int, bool) {
	if s.vector != 0 {
		pos := s.vectorOffset + trailingZeros64(s.vector)
		s.vector &= s.vector - 1
		return pos, true
	}

	i := start
	for i+s.vectorLength <= end {
		chunk := buf[i : i+s.vectorLength]
		mask := classifyChunk(chunk, s.quote, s.delimiter, true)
		if mask != 0 {
			s.vectorOffset = i
			pos := i + trailingZeros64(mask)
			s.vector = mask & (mask - 1)
			return pos, true
		}
		i += s.vectorLength
	}

	return s.nextScalar(buf, i, end)
}

// nextVectorQuote is nextVector's quote-only counterpart, used while
// scanning the interior of a quoted field.
func (s *Scanner) nextVectorQuote(buf []byte, start, end int) (int, bool) {
	if s.qVector != 0 {
		pos := s.qVectorOffset + trailingZeros64(s.qVector)
		s.qVector &= s.qVector - 1
		return pos, true
	}

	i := start
	for i+s.vectorLength <= end {
		chunk := buf[i : i+s.vectorLength]
		mask := classifyChunk(chunk, s.quote, 0, false)
		if mask != 0 {
			s.qVectorOffset = i
			pos := i + trailingZeros64(mask)
			s.qVector = mask & (mask - 1)
			return pos, true
		}
		i += s.vectorLength
	}

	return s.nextScalarQuote(buf, i, end)
}

// classifyChunk computes a bitmask of chunk's candidate bytes, one bit per
// byte position. When includeDelimAndNewline is true a byte also counts as
// a candidate if it equals delimiter or '\n'; quote always counts. It
// processes 8-byte lanes with the SWAR "null byte detection" trick and
// falls back to a scalar loop for any remainder shorter than 8 bytes.
func classifyChunk(chunk []byte, quote, delimiter byte, includeDelimAndNewline bool) uint64 {
	var mask uint64
	n := len(chunk)
	lanes := n / 8

	for lane := 0; lane < lanes; lane++ {
		word := binary.LittleEndian.Uint64(chunk[lane*8 : lane*8+8])
		hi := swarEqHighBits(word, quote)
		if includeDelimAndNewline {
			hi |= swarEqHighBits(word, delimiter) | swarEqHighBits(word, '\n')
		}
		mask |= uint64(compactHighBits(hi)) << uint(lane*8)
	}

	for i := lanes * 8; i < n; i++ {
		b := chunk[i]
		if b == quote || (includeDelimAndNewline && (b == delimiter || b == '\n')) {
			mask |= 1 << uint(i)
		}
	}

	return mask
}

// swarEqHighBits returns a uint64 with the high bit (0x80) of each byte
// lane set wherever the corresponding byte of word equals b, and clear
// elsewhere. This is the classic "subtract one, clear set bits, mask high
// bit" zero-byte detector applied to word XOR broadcast(b).
func swarEqHighBits(word uint64, b byte) uint64 {
	const lo = 0x0101010101010101
	const hi = 0x8080808080808080
	broadcast := uint64(b) * lo
	x := word ^ broadcast
	return (x - lo) &^ x & hi
}

// compactHighBits compresses the eight high-bit lane flags produced by
// swarEqHighBits (bits 7, 15, 23, ..., 63) into the low 8 bits of the
// result, one bit per lane.
func compactHighBits(hi uint64) uint8 {
	var out uint8
	for lane := uint(0); lane < 8; lane++ {
		if hi&(1<<(8*lane+7)) != 0 {
			out |= 1 << lane
		}
	}
	return out
}

// trailingZeros64 returns the number of trailing zero bits in x, or 64 if
// x is zero.
func trailingZeros64(x uint64) int {
	if x == 0 {
		return 64
	}
	const debruijn64 = 0x03f79d71b4ca8b09
	var deBruijnIdx = [64]int{
		0, 1, 56, 2, 57, 49, 28, 3, 61, 58, 42, 50, 38, 29, 17, 4,
		62, 47, 59, 36, 45, 43, 51, 22, 53, 39, 33, 30, 24, 18, 12, 5,
		63, 55, 48, 27, 60, 41, 37, 16, 46, 35, 44, 21, 52, 32, 23, 11,
		54, 26, 40, 15, 34, 20, 31, 10, 25, 14, 19, 9, 13, 8, 7, 6,
	}
	return deBruijnIdx[((x&-x)*debruijn64)>>58]
}
