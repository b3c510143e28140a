package smbenc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

// ErrInsufficientData is returned when a buffer is too short for the
// requested field.
var ErrInsufficientData = errors.New("smbenc: insufficient data")

// Integer is the set of fixed-width integers the codec can carry.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Size returns the encoded width of T in bytes.
func Size[T Integer]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// Append appends v to buf in little-endian order and returns the extended
// buffer. Signed values are written as their two's complement bit pattern.
func Append[T Integer](buf []byte, v T) []byte {
	switch Size[T]() {
	case 1:
		return append(buf, byte(v))
	case 2:
		return binary.LittleEndian.AppendUint16(buf, uint16(v))
	case 4:
		return binary.LittleEndian.AppendUint32(buf, uint32(v))
	default:
		return binary.LittleEndian.AppendUint64(buf, uint64(v))
	}
}

// Scan decodes a little-endian T at offset. It reports false, without
// touching buf, when fewer than Size[T]() bytes are available there.
// The offset need not be aligned.
func Scan[T Integer](buf []byte, offset int) (T, bool) {
	n := Size[T]()
	if offset < 0 || offset > len(buf)-n {
		return 0, false
	}

	b := buf[offset : offset+n]
	switch n {
	case 1:
		return T(b[0]), true
	case 2:
		return T(binary.LittleEndian.Uint16(b)), true
	case 4:
		return T(binary.LittleEndian.Uint32(b)), true
	default:
		return T(binary.LittleEndian.Uint64(b)), true
	}
}

// Extract is Scan with an error describing the shortfall.
func Extract[T Integer](buf []byte, offset int) (T, error) {
	v, ok := Scan[T](buf, offset)
	if !ok {
		return 0, shortfall(Size[T](), offset, len(buf))
	}
	return v, nil
}

func shortfall(need, offset, length int) error {
	return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrInsufficientData, need, offset, max(length-offset, 0))
}
