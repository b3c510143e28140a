package smbenc

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrExpectMismatch is returned when ExpectUint16 finds a different value than expected.
var ErrExpectMismatch = errors.New("smbenc: expect mismatch")

// Reader reads little-endian SMB wire data sequentially. The first short
// read is recorded and every later read becomes a no-op returning zero.
type Reader struct {
	data []byte
	pos  int
	err  error
}

// NewReader creates a new Reader wrapping the given byte slice with position at 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// require records ErrInsufficientData unless n bytes remain at the cursor.
func (r *Reader) require(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos > len(r.data)-n {
		r.err = shortfall(n, r.pos, len(r.data))
		return false
	}
	return true
}

func readInt[T Integer](r *Reader) T {
	n := Size[T]()
	if !r.require(n) {
		return 0
	}
	v, _ := Scan[T](r.data, r.pos)
	r.pos += n
	return v
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() uint8 { return readInt[uint8](r) }

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() uint16 { return readInt[uint16](r) }

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() uint32 { return readInt[uint32](r) }

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() uint64 { return readInt[uint64](r) }

// ReadInt16 reads a little-endian int16.
func (r *Reader) ReadInt16() int16 { return readInt[int16](r) }

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() int32 { return readInt[int32](r) }

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64() int64 { return readInt[int64](r) }

// ReadGUID reads a mixed-endian GUID. Returns uuid.Nil on short read.
func (r *Reader) ReadGUID() uuid.UUID {
	if !r.require(GUIDSize) {
		return uuid.Nil
	}
	id, _ := ScanGUID(r.data, r.pos)
	r.pos += GUIDSize
	return id
}

// ReadBytes reads n bytes into a fresh slice.
// Returns nil and sets error if insufficient data.
func (r *Reader) ReadBytes(n int) []byte {
	if !r.require(n) {
		return nil
	}
	b := make([]byte, n)
	copy(b, r.data[r.pos:r.pos+n])
	r.pos += n
	return b
}

// Skip advances the position by n bytes without reading.
func (r *Reader) Skip(n int) {
	if !r.require(n) {
		return
	}
	r.pos += n
}

// ExpectUint16 reads a uint16 and sets error if the value does not match expected.
func (r *Reader) ExpectUint16(expected uint16) {
	v := r.ReadUint16()
	if r.err != nil {
		return
	}
	if v != expected {
		r.err = fmt.Errorf("%w: expected 0x%04X, got 0x%04X at offset %d", ErrExpectMismatch, expected, v, r.pos-2)
	}
}

// EnsureRemaining sets error if fewer than n bytes remain. Does not consume bytes.
func (r *Reader) EnsureRemaining(n int) {
	r.require(n)
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return max(len(r.data)-r.pos, 0)
}

// Position returns the current read position.
func (r *Reader) Position() int {
	return r.pos
}
