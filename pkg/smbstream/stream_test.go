package smbstream

import (
	"errors"
	"io"
	"syscall"
	"testing"

	"github.com/marmos91/smbwire/pkg/posixerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource hands out its data in chunks of at most chunk bytes and then
// reports end of stream.
type sliceSource struct {
	data  []byte
	chunk int
	reads int
}

func (s *sliceSource) RawRead(p []byte) int {
	s.reads++
	n := min(len(p), len(s.data))
	if s.chunk > 0 {
		n = min(n, s.chunk)
	}
	copy(p, s.data[:n])
	s.data = s.data[n:]
	return n
}

type failingStream struct {
	err error
}

func (f *failingStream) RawRead([]byte) int  { return -1 }
func (f *failingStream) RawWrite([]byte) int { return -5 }
func (f *failingStream) StreamError() error  { return f.err }

// silentFailure fails without implementing ErrorReporter.
type silentFailure struct{}

func (silentFailure) RawRead([]byte) int  { return -1 }
func (silentFailure) RawWrite([]byte) int { return -1 }

type shortSink struct {
	limit int
	got   []byte
}

func (s *shortSink) RawWrite(p []byte) int {
	n := min(len(p), s.limit)
	s.got = append(s.got, p[:n]...)
	return n
}

type liar struct{}

func (liar) RawRead(p []byte) int  { return len(p) + 1 }
func (liar) RawWrite(p []byte) int { return len(p) + 1 }

func TestReadData(t *testing.T) {
	t.Run("ShortSourceReturnsAvailableBytes", func(t *testing.T) {
		src := &sliceSource{data: []byte("abc")}
		got, err := ReadData(src, 10)
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
		assert.Len(t, got, 3)
		assert.Equal(t, 1, src.reads, "single attempt only")
	})

	t.Run("ExactLength", func(t *testing.T) {
		src := &sliceSource{data: []byte("abcdef")}
		got, err := ReadData(src, 4)
		require.NoError(t, err)
		assert.Equal(t, []byte("abcd"), got)
	})

	t.Run("EndOfStreamIsEmptyNotError", func(t *testing.T) {
		got, err := ReadData(&sliceSource{}, 8)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("StreamErrorPreferred", func(t *testing.T) {
		want := errors.New("connection reset")
		_, err := ReadData(&failingStream{err: want}, 8)
		assert.Same(t, want, err)
	})

	t.Run("NilStreamErrorFallsBackToEIO", func(t *testing.T) {
		_, err := ReadData(&failingStream{}, 8)
		assert.ErrorIs(t, err, posixerr.ErrIO)
		assert.ErrorIs(t, err, syscall.EIO)
	})

	t.Run("NoReporterFallsBackToEIO", func(t *testing.T) {
		_, err := ReadData(silentFailure{}, 8)
		assert.ErrorIs(t, err, posixerr.ErrIO)
	})

	t.Run("NegativeLength", func(t *testing.T) {
		_, err := ReadData(&sliceSource{}, -1)
		assert.ErrorIs(t, err, syscall.EINVAL)
	})

	t.Run("OverreportingStream", func(t *testing.T) {
		_, err := ReadData(liar{}, 4)
		assert.ErrorIs(t, err, syscall.EIO)
	})
}

func TestWriteData(t *testing.T) {
	t.Run("ShortWrite", func(t *testing.T) {
		sink := &shortSink{limit: 2}
		n, err := WriteData(sink, []byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []byte("he"), sink.got)
	})

	t.Run("FullWrite", func(t *testing.T) {
		sink := &shortSink{limit: 100}
		n, err := WriteData(sink, []byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("StreamErrorPreferred", func(t *testing.T) {
		want := posixerr.New(syscall.ECONNRESET, "peer went away")
		_, err := WriteData(&failingStream{err: want}, []byte("x"))
		assert.Same(t, want, err)
	})

	t.Run("NoReporterFallsBackToEIO", func(t *testing.T) {
		_, err := WriteData(silentFailure{}, []byte("x"))
		assert.ErrorIs(t, err, posixerr.ErrIO)
	})

	t.Run("OverreportingStream", func(t *testing.T) {
		_, err := WriteData(liar{}, []byte("x"))
		assert.ErrorIs(t, err, syscall.EIO)
	})
}

func TestReadFull(t *testing.T) {
	t.Run("AssemblesChunks", func(t *testing.T) {
		src := &sliceSource{data: []byte("0123456789"), chunk: 3}
		got, err := ReadFull(src, 10)
		require.NoError(t, err)
		assert.Equal(t, []byte("0123456789"), got)
		assert.Equal(t, 4, src.reads)
	})

	t.Run("UnexpectedEOF", func(t *testing.T) {
		got, err := ReadFull(&sliceSource{data: []byte("abc")}, 5)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.Equal(t, []byte("abc"), got)
	})

	t.Run("EOF", func(t *testing.T) {
		_, err := ReadFull(&sliceSource{}, 5)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("ZeroLength", func(t *testing.T) {
		got, err := ReadFull(&sliceSource{}, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Failure", func(t *testing.T) {
		_, err := ReadFull(silentFailure{}, 5)
		assert.ErrorIs(t, err, posixerr.ErrIO)
	})
}

func TestWriteAll(t *testing.T) {
	sink := &shortSink{limit: 2}
	n, err := WriteAll(sink, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("hello"), sink.got)

	n, err = WriteAll(&shortSink{limit: 0}, []byte("hello"))
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Zero(t, n)
}

func TestReadFullLargePayload(t *testing.T) {
	data := make([]byte, 3<<20)
	for i := range data {
		data[i] = byte(i * 7)
	}
	src := &sliceSource{data: append([]byte(nil), data...)}

	got, err := ReadFull(src, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, 3, src.reads)
}
