//go:build !(linux || aix || solaris || darwin || freebsd || netbsd || openbsd || dragonfly)

package logger

// isTerminal disables color where termios is unavailable.
func isTerminal(uintptr) bool {
	return false
}
