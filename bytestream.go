// bytestream.go - big-endian byte-slice reader for borrowed resource buffers

package render

// ByteStream borrows a byte slice and reads fixed-width big-endian integers
// and raw byte runs from it, advancing a cursor. It never copies or owns the
// underlying data. Grounded on original_source/source/Base/MemStream.h.
type ByteStream struct {
	data   []byte
	cursor int
}

// NewByteStream wraps data for sequential big-endian reads starting at 0.
func NewByteStream(data []byte) *ByteStream {
	return &ByteStream{data: data}
}

func (s *ByteStream) remaining() int { return len(s.data) - s.cursor }

func (s *ByteStream) require(n int) error {
	if n < 0 || s.remaining() < n {
		return ErrStreamExhausted
	}
	return nil
}

// Pos returns the current cursor offset.
func (s *ByteStream) Pos() int { return s.cursor }

// Len returns the total length of the borrowed slice.
func (s *ByteStream) Len() int { return len(s.data) }

// Seek moves the cursor to an absolute offset.
func (s *ByteStream) Seek(offset int) error {
	if offset < 0 || offset > len(s.data) {
		return ErrStreamExhausted
	}
	s.cursor = offset
	return nil
}

// Skip advances the cursor by n bytes.
func (s *ByteStream) Skip(n int) error {
	if err := s.require(n); err != nil {
		return err
	}
	s.cursor += n
	return nil
}

// AlignTo skips forward to the next multiple-of-n boundary (n one of 2,4,8).
func (s *ByteStream) AlignTo(n int) error {
	rem := s.cursor % n
	if rem == 0 {
		return nil
	}
	return s.Skip(n - rem)
}

// ReadBytes returns a sub-slice of n raw bytes without copying.
func (s *ByteStream) ReadBytes(n int) ([]byte, error) {
	if err := s.require(n); err != nil {
		return nil, err
	}
	b := s.data[s.cursor : s.cursor+n]
	s.cursor += n
	return b, nil
}

// ReadU8 reads one unsigned byte.
func (s *ByteStream) ReadU8() (uint8, error) {
	if err := s.require(1); err != nil {
		return 0, err
	}
	v := s.data[s.cursor]
	s.cursor++
	return v, nil
}

// ReadU16BE reads a big-endian uint16.
func (s *ByteStream) ReadU16BE() (uint16, error) {
	if err := s.require(2); err != nil {
		return 0, err
	}
	v := uint16(s.data[s.cursor])<<8 | uint16(s.data[s.cursor+1])
	s.cursor += 2
	return v, nil
}

// ReadS16BE reads a big-endian signed int16.
func (s *ByteStream) ReadS16BE() (int16, error) {
	v, err := s.ReadU16BE()
	return int16(v), err
}

// ReadU32BE reads a big-endian uint32.
func (s *ByteStream) ReadU32BE() (uint32, error) {
	if err := s.require(4); err != nil {
		return 0, err
	}
	d := s.data[s.cursor : s.cursor+4]
	v := uint32(d[0])<<24 | uint32(d[1])<<16 | uint32(d[2])<<8 | uint32(d[3])
	s.cursor += 4
	return v, nil
}

// ReadS32BE reads a big-endian signed int32.
func (s *ByteStream) ReadS32BE() (int32, error) {
	v, err := s.ReadU32BE()
	return int32(v), err
}

// ReadFixedBE reads a big-endian 16.16 fixed-point value.
func (s *ByteStream) ReadFixedBE() (Fixed, error) {
	v, err := s.ReadS32BE()
	return Fixed(v), err
}
