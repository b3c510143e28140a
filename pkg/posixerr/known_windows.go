//go:build windows

package posixerr

import (
	"math"
	"syscall"
)

// Known reports whether errno is one of the POSIX error numbers the Go
// runtime maps for Windows.
func Known(errno int64) bool {
	if errno <= 0 || errno > math.MaxInt32 {
		return false
	}
	_, ok := posixNames[syscall.Errno(errno)]
	return ok
}

// Name returns the symbolic name of code, e.g. "ENOENT", or "".
func Name(code syscall.Errno) string {
	return posixNames[code]
}

var posixNames = map[syscall.Errno]string{
	syscall.EPERM:     "EPERM",
	syscall.ENOENT:    "ENOENT",
	syscall.EINTR:     "EINTR",
	syscall.EIO:       "EIO",
	syscall.EBADF:     "EBADF",
	syscall.EAGAIN:    "EAGAIN",
	syscall.ENOMEM:    "ENOMEM",
	syscall.EACCES:    "EACCES",
	syscall.EEXIST:    "EEXIST",
	syscall.ENOTDIR:   "ENOTDIR",
	syscall.EISDIR:    "EISDIR",
	syscall.EINVAL:    "EINVAL",
	syscall.ENOSPC:    "ENOSPC",
	syscall.EPIPE:     "EPIPE",
	syscall.ETIMEDOUT: "ETIMEDOUT",
}

func lookup(name string) (syscall.Errno, bool) {
	for code, n := range posixNames {
		if n == name {
			return code, true
		}
	}
	return 0, false
}
