package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys. Use them consistently so logs can be queried by field.
const (
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Connection
	KeyAddress = "address" // remote host:port
	KeyTimeout = "timeout"

	// Protocol
	KeyCommand    = "command"    // SMB2 command name
	KeyMessageID  = "message_id" // SMB2 MessageId
	KeyStatus     = "status"     // NT_STATUS code
	KeyDialect    = "dialect"    // negotiated dialect revision
	KeyServerGUID = "server_guid"
	KeyClientGUID = "client_guid"

	// I/O
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"

	KeyError      = "error"
	KeyErrno      = "errno"
	KeyDurationMs = "duration_ms"
)

// Err returns an error attribute; a nil error yields an empty attribute
// that handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Address returns a remote address attribute.
func Address(addr string) slog.Attr {
	return slog.String(KeyAddress, addr)
}

// Status formats an NT_STATUS code as hex.
func Status(code uint32) slog.Attr {
	return slog.String(KeyStatus, fmt.Sprintf("0x%08X", code))
}

// Dialect formats a dialect revision as hex.
func Dialect(d uint16) slog.Attr {
	return slog.String(KeyDialect, fmt.Sprintf("0x%04X", d))
}
