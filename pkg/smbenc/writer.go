package smbenc

import (
	"fmt"

	"github.com/google/uuid"
)

// Writer appends little-endian SMB wire data to a growing buffer.
// Only WriteAt can fail; after a failure every write is a no-op.
type Writer struct {
	buf []byte
	err error
}

// NewWriter creates a new Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{
		buf: make([]byte, 0, capacity),
	}
}

func writeInt[T Integer](w *Writer, v T) {
	if w.err != nil {
		return
	}
	w.buf = Append(w.buf, v)
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) { writeInt(w, v) }

// WriteUint16 appends a little-endian uint16.
func (w *Writer) WriteUint16(v uint16) { writeInt(w, v) }

// WriteUint32 appends a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) { writeInt(w, v) }

// WriteUint64 appends a little-endian uint64.
func (w *Writer) WriteUint64(v uint64) { writeInt(w, v) }

// WriteInt16 appends a little-endian int16.
func (w *Writer) WriteInt16(v int16) { writeInt(w, v) }

// WriteInt32 appends a little-endian int32.
func (w *Writer) WriteInt32(v int32) { writeInt(w, v) }

// WriteInt64 appends a little-endian int64.
func (w *Writer) WriteInt64(v int64) { writeInt(w, v) }

// WriteGUID appends id in mixed-endian layout.
func (w *Writer) WriteGUID(id uuid.UUID) {
	if w.err != nil {
		return
	}
	w.buf = AppendGUID(w.buf, id)
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(data []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, data...)
}

// WriteZeros appends n zero bytes.
func (w *Writer) WriteZeros(n int) {
	if w.err != nil || n <= 0 {
		return
	}
	w.buf = append(w.buf, make([]byte, n)...)
}

// Pad appends zero bytes up to the next multiple of alignment.
func (w *Writer) Pad(alignment int) {
	if w.err != nil || alignment <= 0 {
		return
	}
	if rem := len(w.buf) % alignment; rem != 0 {
		w.WriteZeros(alignment - rem)
	}
}

// WriteAt overwrites bytes at offset, e.g. to backpatch a length or offset
// field once the payload size is known.
func (w *Writer) WriteAt(offset int, data []byte) {
	if w.err != nil {
		return
	}
	if offset < 0 || offset+len(data) > len(w.buf) {
		w.err = fmt.Errorf("smbenc: WriteAt out of bounds: offset %d + %d > %d", offset, len(data), len(w.buf))
		return
	}
	copy(w.buf[offset:], data)
}

// PatchUint16 backpatches a little-endian uint16 at offset.
func (w *Writer) PatchUint16(offset int, v uint16) {
	w.WriteAt(offset, Append(nil, v))
}

// PatchUint32 backpatches a little-endian uint32 at offset.
func (w *Writer) PatchUint32(offset int, v uint32) {
	w.WriteAt(offset, Append(nil, v))
}

// Bytes returns the accumulated bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the current length of the buffer.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Err returns the first error encountered, or nil.
func (w *Writer) Err() error {
	return w.err
}
