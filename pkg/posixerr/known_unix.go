//go:build unix

package posixerr

import (
	"math"
	"syscall"

	"golang.org/x/sys/unix"
)

// Known reports whether errno is a system error number recognized by the
// host. Non-positive and out-of-range values are never known.
func Known(errno int64) bool {
	if errno <= 0 || errno > math.MaxInt32 {
		return false
	}
	return unix.ErrnoName(syscall.Errno(errno)) != ""
}

// Name returns the symbolic name of code, e.g. "ENOENT", or "" if the host
// does not define it.
func Name(code syscall.Errno) string {
	return unix.ErrnoName(code)
}

// lookup resolves a symbolic name such as "ENOENT" to its code.
func lookup(name string) (syscall.Errno, bool) {
	for code := syscall.Errno(1); code < 4096; code++ {
		if unix.ErrnoName(code) == name {
			return code, true
		}
	}
	return 0, false
}
