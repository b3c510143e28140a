package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for SMB client operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	AttrServerAddress = "server.address"
	AttrNetworkPeer   = "network.peer.address"

	AttrSMBCommand    = "smb.command"
	AttrSMBMessageID  = "smb.message_id"
	AttrSMBStatus     = "smb.status"
	AttrSMBDialect    = "smb.dialect"
	AttrSMBServerGUID = "smb.server_guid"
	AttrSMBClientGUID = "smb.client_guid"

	AttrBytesRead    = "smb.bytes_read"
	AttrBytesWritten = "smb.bytes_written"
)

// Span names.
const (
	SpanProbe     = "smb.probe"
	SpanDial      = "net.dial"
	SpanNegotiate = "smb.NEGOTIATE"
)

// ServerAddress returns an attribute for the target server address
func ServerAddress(addr string) attribute.KeyValue {
	return attribute.String(AttrServerAddress, addr)
}

// NetworkPeer returns an attribute for the resolved remote address
func NetworkPeer(addr string) attribute.KeyValue {
	return attribute.String(AttrNetworkPeer, addr)
}

// SMBCommand returns an attribute for the SMB2 command name
func SMBCommand(name string) attribute.KeyValue {
	return attribute.String(AttrSMBCommand, name)
}

// SMBMessageID returns an attribute for the SMB2 message ID
func SMBMessageID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrSMBMessageID, int64(id))
}

// SMBStatus returns an attribute for an NT_STATUS code in hex
func SMBStatus(status uint32) attribute.KeyValue {
	return attribute.String(AttrSMBStatus, fmt.Sprintf("0x%08X", status))
}

// SMBDialect returns an attribute for a dialect revision in hex
func SMBDialect(dialect uint16) attribute.KeyValue {
	return attribute.String(AttrSMBDialect, fmt.Sprintf("0x%04X", dialect))
}

// SMBServerGUID returns an attribute for the server GUID
func SMBServerGUID(id uuid.UUID) attribute.KeyValue {
	return attribute.String(AttrSMBServerGUID, id.String())
}

// SMBClientGUID returns an attribute for the client GUID
func SMBClientGUID(id uuid.UUID) attribute.KeyValue {
	return attribute.String(AttrSMBClientGUID, id.String())
}

// BytesRead returns an attribute for bytes received
func BytesRead(n int) attribute.KeyValue {
	return attribute.Int(AttrBytesRead, n)
}

// BytesWritten returns an attribute for bytes sent
func BytesWritten(n int) attribute.KeyValue {
	return attribute.Int(AttrBytesWritten, n)
}

// StartSMBSpan starts a client span for an SMB2 command.
func StartSMBSpan(ctx context.Context, command string, messageID uint64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		SMBCommand(command),
		SMBMessageID(messageID),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "smb."+command,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(allAttrs...),
	)
}
