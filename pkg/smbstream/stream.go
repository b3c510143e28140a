// Package smbstream adapts blocking byte-stream primitives to a
// buffer-oriented read/write contract.
//
// The primitives follow the legacy convention of returning a byte count,
// negative on failure. ReadData and WriteData make a single transfer attempt
// and turn a negative result into an error: the stream's own error when it
// reports one, otherwise posixerr.ErrIO. Short transfers are returned as-is;
// ReadFull and WriteAll loop for callers that need the whole payload.
package smbstream

import (
	"fmt"
	"io"

	"github.com/marmos91/smbwire/pkg/bufpool"
	"github.com/marmos91/smbwire/pkg/posixerr"
)

// InputStream is a blocking source. RawRead fills at most len(p) bytes and
// returns the count transferred, 0 at end of stream, or a negative value on
// failure.
type InputStream interface {
	RawRead(p []byte) int
}

// OutputStream is a blocking sink. RawWrite sends at most len(p) bytes and
// returns the count transferred, or a negative value on failure.
type OutputStream interface {
	RawWrite(p []byte) int
}

// ErrorReporter is implemented by streams that can describe their last failure.
type ErrorReporter interface {
	StreamError() error
}

// ReadData performs one blocking read of up to length bytes and returns
// exactly the bytes transferred.
func ReadData(s InputStream, length int) ([]byte, error) {
	if length < 0 {
		return nil, posixerr.New(posixerr.EINVAL, fmt.Sprintf("negative read length %d", length))
	}

	buf := make([]byte, length)
	n, err := readInto(s, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// readInto is one RawRead attempt into buf with the failure rules of ReadData.
func readInto(s InputStream, buf []byte) (int, error) {
	n := s.RawRead(buf)
	if n < 0 {
		return 0, streamError(s)
	}
	if n > len(buf) {
		return 0, posixerr.New(posixerr.EIO, fmt.Sprintf("stream reported %d bytes for a %d byte read", n, len(buf)))
	}
	return n, nil
}

// WriteData performs one blocking write of data and returns the count of
// bytes written, which may be less than len(data).
func WriteData(s OutputStream, data []byte) (int, error) {
	n := s.RawWrite(data)
	if n < 0 {
		return 0, streamError(s)
	}
	if n > len(data) {
		return 0, posixerr.New(posixerr.EIO, fmt.Sprintf("stream reported %d bytes for a %d byte write", n, len(data)))
	}
	return n, nil
}

// ReadFull reads exactly length bytes, repeating single reads into a pooled
// scratch buffer until the result is complete. It returns io.EOF if the
// stream ends before any byte arrives and io.ErrUnexpectedEOF if it ends
// part way.
func ReadFull(s InputStream, length int) ([]byte, error) {
	out := make([]byte, 0, max(length, 0))
	if length <= 0 {
		return out, nil
	}

	scratch := bufpool.Get(min(length, bufpool.LargeSize))
	defer bufpool.Put(scratch)

	for len(out) < length {
		n, err := readInto(s, scratch[:min(len(scratch), length-len(out))])
		if err != nil {
			return out, err
		}
		if n == 0 {
			if len(out) == 0 {
				return out, io.EOF
			}
			return out, io.ErrUnexpectedEOF
		}
		out = append(out, scratch[:n]...)
	}
	return out, nil
}

// WriteAll writes data completely, calling WriteData until every byte is
// accepted. A stream that accepts nothing yields io.ErrShortWrite.
func WriteAll(s OutputStream, data []byte) (int, error) {
	written := 0
	for written < len(data) {
		n, err := WriteData(s, data[written:])
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
		written += n
	}
	return written, nil
}

func streamError(s any) error {
	if r, ok := s.(ErrorReporter); ok {
		if err := r.StreamError(); err != nil {
			return err
		}
	}
	return posixerr.ErrIO
}
