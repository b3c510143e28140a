//go:build unix

package posixerr

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	t.Run("ZeroIsSuccess", func(t *testing.T) {
		assert.NoError(t, Check(0, EIO))
	})

	t.Run("PositiveIsSuccess", func(t *testing.T) {
		assert.NoError(t, Check(4096, EIO))
		assert.NoError(t, CheckWithDescription(1, "ignored", EIO))
	})

	t.Run("KnownErrnoIsUsed", func(t *testing.T) {
		err := Check(-2, EIO)
		require.Error(t, err)

		var pe *Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, syscall.ENOENT, pe.Code)
		assert.Empty(t, pe.Description)
		assert.ErrorIs(t, err, syscall.ENOENT)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("UnknownErrnoFallsBack", func(t *testing.T) {
		err := Check(-999999, EIO)
		require.Error(t, err)

		var pe *Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, EIO, pe.Code)
	})

	t.Run("MinInt64FallsBack", func(t *testing.T) {
		var err error
		require.NotPanics(t, func() {
			err = Check(math.MinInt64, ETIMEDOUT)
		})

		var pe *Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, ETIMEDOUT, pe.Code)
	})

	t.Run("HugeErrnoFallsBack", func(t *testing.T) {
		err := Check(-(math.MaxInt32 + 10), EINVAL)

		var pe *Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, EINVAL, pe.Code)
	})
}

func TestCheckWithDescription(t *testing.T) {
	tests := []struct {
		name     string
		result   int64
		wantCode syscall.Errno
		wantDesc string
	}{
		{"Known", -2, syscall.ENOENT, "Error code 2: open failed"},
		{"FallbackKeepsRawErrno", -999999, EIO, "Error code 999999: open failed"},
		{"Pipe", -int64(syscall.EPIPE), syscall.EPIPE, fmt.Sprintf("Error code %d: open failed", int64(syscall.EPIPE))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckWithDescription(tt.result, "open failed", EIO)

			var pe *Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.Equal(t, tt.wantDesc, pe.Description)
			assert.Equal(t, tt.wantCode.Error()+": "+tt.wantDesc, pe.Error())
		})
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(int64(syscall.ENOENT)))
	assert.True(t, Known(int64(syscall.EIO)))
	assert.False(t, Known(0))
	assert.False(t, Known(-1))
	assert.False(t, Known(999999))
	assert.False(t, Known(math.MinInt64))
}

func TestName(t *testing.T) {
	assert.Equal(t, "ENOENT", Name(syscall.ENOENT))
	assert.Equal(t, "ETIMEDOUT", Name(ETIMEDOUT))
	assert.Empty(t, Name(syscall.Errno(999999)))
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		in      string
		want    syscall.Errno
		wantErr bool
	}{
		{in: "ENOENT", want: syscall.ENOENT},
		{in: "eio", want: syscall.EIO},
		{in: " ETIMEDOUT ", want: syscall.ETIMEDOUT},
		{in: "2", want: syscall.ENOENT},
		{in: "999999", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "ENOPE", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorIs(t *testing.T) {
	a := New(EIO, "first")
	b := New(EIO, "second")
	c := New(ENOENT, "")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", a), ErrIO)
	assert.Equal(t, syscall.EIO.Error(), New(EIO, "").Error())
}

func TestCodeOf(t *testing.T) {
	code, ok := CodeOf(fmt.Errorf("ctx: %w", New(ETIMEDOUT, "slow")))
	require.True(t, ok)
	assert.Equal(t, ETIMEDOUT, code)

	code, ok = CodeOf(&os.PathError{Op: "open", Path: "/x", Err: syscall.EACCES})
	require.True(t, ok)
	assert.Equal(t, syscall.EACCES, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want syscall.Errno
	}{
		{"Errno", &os.SyscallError{Syscall: "read", Err: syscall.ECONNRESET}, syscall.ECONNRESET},
		{"Deadline", os.ErrDeadlineExceeded, ETIMEDOUT},
		{"UnexpectedEOF", io.ErrUnexpectedEOF, EPIPE},
		{"ClosedPipe", io.ErrClosedPipe, EPIPE},
		{"NetClosed", net.ErrClosed, EPIPE},
		{"Other", errors.New("boom"), EIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := FromError(tt.err, EIO)
			require.NotNil(t, pe)
			assert.Equal(t, tt.want, pe.Code)
			assert.Equal(t, tt.err.Error(), pe.Description)
		})
	}

	t.Run("Nil", func(t *testing.T) {
		assert.Nil(t, FromError(nil, EIO))
	})

	t.Run("PassThrough", func(t *testing.T) {
		orig := New(ENOENT, "gone")
		assert.Same(t, orig, FromError(fmt.Errorf("wrap: %w", orig), EIO))
	})
}
