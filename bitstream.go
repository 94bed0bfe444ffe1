// bitstream.go - big-endian, most-significant-bit-first bit reader

package render

// BitStream borrows a byte slice and reads up to 64 bits at a time,
// most-significant bit first. It does not own the underlying memory.
// Grounded on original_source/source/Base/BitInputStream.h.
type BitStream struct {
	data    []byte
	size    int
	byteIdx uint32
	bitIdx  int8 // 7 downward within the current byte
}

// NewBitStream wraps data for bit-level reads starting at bit 7 of byte 0.
func NewBitStream(data []byte) *BitStream {
	return &BitStream{data: data, size: len(data), bitIdx: 7}
}

// ByteIndex returns the byte offset the cursor currently sits within.
func (b *BitStream) ByteIndex() uint32 { return b.byteIdx }

// Size returns the total number of bytes backing the stream.
func (b *BitStream) Size() int { return b.size }

// SeekToByteIndex repositions the cursor to the start of the given byte.
func (b *BitStream) SeekToByteIndex(byteIndex uint32) error {
	if byteIndex > uint32(b.size) {
		return ErrStreamExhausted
	}
	b.byteIdx = byteIndex
	b.bitIdx = 7
	return nil
}

// ReadBitsAsUInt consumes the next numBits most-significant bits (numBits
// <= 64) and returns them right-aligned in a uint64.
func (b *BitStream) ReadBitsAsUInt(numBits uint8) (uint64, error) {
	assertf(numBits <= 64, "ReadBitsAsUInt: numBits %d > 64", numBits)

	var out uint64
	bitsLeft := numBits

	for bitsLeft > 0 {
		if b.byteIdx >= uint32(b.size) {
			return 0, ErrStreamExhausted
		}

		curByte := b.data[b.byteIdx]
		numByteBitsLeft := uint8(b.bitIdx) + 1
		numBitsToRead := bitsLeft
		if numBitsToRead > numByteBitsLeft {
			numBitsToRead = numByteBitsLeft
		}

		out <<= numBitsToRead

		shiftBitsToLSB := numByteBitsLeft - numBitsToRead
		readMask := uint8(0xFF) >> (8 - numBitsToRead)
		readBits := (curByte >> shiftBitsToLSB) & readMask
		out |= uint64(readBits)

		if numBitsToRead >= numByteBitsLeft {
			b.byteIdx++
			b.bitIdx = 7
		} else {
			b.bitIdx -= int8(numBitsToRead)
		}

		bitsLeft -= numBitsToRead
	}

	return out, nil
}

// Align64 advances the cursor to the start of the next 64-bit boundary.
func (b *BitStream) Align64() error {
	newByteIdx := b.byteIdx
	if b.bitIdx < 7 {
		newByteIdx++
	}
	newByteIdx = (newByteIdx + 7) &^ 7

	if newByteIdx > uint32(b.size) {
		return ErrStreamExhausted
	}
	b.byteIdx = newByteIdx
	b.bitIdx = 7
	return nil
}
