// Package posixerr translates the C-style "negative result encodes -errno"
// convention into typed Go errors.
//
// Transports and stream primitives underneath the SMB client report failures
// as negative integers. Check converts such a result at the boundary where
// it is first received:
//
//	if err := posixerr.Check(int64(rc), posixerr.EIO); err != nil {
//	    return err
//	}
//
// The produced *Error unwraps to the underlying syscall.Errno, so callers can
// branch with errors.Is(err, syscall.ENOENT) or errors.Is(err, fs.ErrNotExist).
package posixerr

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// Frequently used default codes.
const (
	EIO       = syscall.EIO
	ENOENT    = syscall.ENOENT
	EPIPE     = syscall.EPIPE
	ETIMEDOUT = syscall.ETIMEDOUT
	EINVAL    = syscall.EINVAL
)

// ErrIO is the generic stream failure reported when a transport signals an
// error without providing one of its own.
var ErrIO = New(EIO, "Unknown stream error.")

// Error is a system error number with an optional description.
// Values are never mutated after creation.
type Error struct {
	Code        syscall.Errno
	Description string
}

// New creates an Error for the given code.
func New(code syscall.Errno, description string) *Error {
	return &Error{Code: code, Description: description}
}

// Error returns the system message for the code, followed by the
// description when one is set.
func (e *Error) Error() string {
	if e.Description == "" {
		return e.Code.Error()
	}
	return e.Code.Error() + ": " + e.Description
}

// Unwrap exposes the errno so errors.Is works against syscall and fs errors.
func (e *Error) Unwrap() error {
	return e.Code
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Check converts a raw result into an error.
//
// A non-negative result is success and returns nil. A negative result is
// interpreted as -errno; unrecognized numbers fall back to defaultCode.
func Check(result int64, defaultCode syscall.Errno) error {
	return check(result, "", false, defaultCode)
}

// CheckWithDescription is Check with a diagnostic string. The resulting
// description reads "Error code <errno>: <description>".
func CheckWithDescription(result int64, description string, defaultCode syscall.Errno) error {
	return check(result, description, true, defaultCode)
}

func check(result int64, description string, hasDescription bool, defaultCode syscall.Errno) error {
	if result >= 0 {
		return nil
	}

	// -math.MinInt64 overflows back to a negative value, which Known rejects.
	errno := -result
	code := defaultCode
	if Known(errno) {
		code = syscall.Errno(errno)
	}

	var desc string
	if hasDescription {
		desc = fmt.Sprintf("Error code %d: %s", errno, description)
	}
	return New(code, desc)
}

// CodeOf extracts the errno carried by err, if any.
func CodeOf(err error) (syscall.Errno, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}

// FromError maps an arbitrary Go error onto the errno domain.
// Errors without a natural errno use defaultCode and keep their message
// as the description.
func FromError(err error, defaultCode syscall.Errno) *Error {
	if err == nil {
		return nil
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return New(errno, err.Error())
	}

	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return New(ETIMEDOUT, err.Error())
	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed):
		return New(EPIPE, err.Error())
	}

	return New(defaultCode, err.Error())
}

// ParseCode accepts either a symbolic name ("ENOENT", case-insensitive) or a
// positive decimal errno and returns the matching code.
func ParseCode(s string) (syscall.Errno, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if !Known(n) {
			return 0, fmt.Errorf("unknown errno %d", n)
		}
		return syscall.Errno(n), nil
	}
	code, ok := lookup(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("unknown errno name %q", s)
	}
	return code, nil
}
