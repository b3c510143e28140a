package negotiate

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/smbwire/pkg/smbenc"
)

// Parsing and encoding errors
var (
	// ErrNoDialects indicates a request without any dialect to offer.
	ErrNoDialects = errors.New("negotiate: no dialects offered")

	// ErrInvalidProtocolID indicates the message does not start with 0xFE 'S' 'M' 'B'.
	ErrInvalidProtocolID = errors.New("negotiate: invalid SMB2 protocol ID")

	// ErrUnexpectedCommand indicates a response to a command other than NEGOTIATE.
	ErrUnexpectedCommand = errors.New("negotiate: unexpected command in response")

	// ErrNotResponse indicates the SERVER_TO_REDIR flag is missing.
	ErrNotResponse = errors.New("negotiate: message is not a server response")

	// ErrMalformed indicates a truncated or inconsistent response.
	ErrMalformed = errors.New("negotiate: malformed response")
)

// maxFrameLength is the largest payload a 24-bit NetBIOS length can carry.
const maxFrameLength = 0xFFFFFF

// Request describes the NEGOTIATE request sent by the client.
type Request struct {
	MessageID     uint64
	CreditRequest uint16
	SecurityMode  SecurityMode
	Capabilities  Capabilities
	ClientGUID    uuid.UUID
	StartTime     time.Time
	Dialects      []Dialect
}

// Header is the subset of the SMB2 sync header the client inspects.
type Header struct {
	Status    Status
	Command   uint16
	Credits   uint16
	Flags     uint32
	MessageID uint64
	SessionID uint64
}

// Response is a decoded NEGOTIATE response.
type Response struct {
	Header Header

	SecurityMode    SecurityMode
	Dialect         Dialect
	ServerGUID      uuid.UUID
	Capabilities    Capabilities
	MaxTransactSize uint32
	MaxReadSize     uint32
	MaxWriteSize    uint32
	SystemTime      time.Time
	ServerStartTime time.Time

	// SecurityBlob is the GSS-API token offered by the server, usually SPNEGO.
	SecurityBlob []byte
}

// BuildRequest encodes req as a complete direct-TCP frame: the 4-byte
// NetBIOS session header followed by the SMB2 header and NEGOTIATE body.
func BuildRequest(req Request) ([]byte, error) {
	if len(req.Dialects) == 0 {
		return nil, ErrNoDialects
	}
	if len(req.Dialects) > 0xFFFF {
		return nil, fmt.Errorf("negotiate: %d dialects exceed the 16-bit count", len(req.Dialects))
	}

	credits := req.CreditRequest
	if credits == 0 {
		credits = 1
	}

	w := smbenc.NewWriter(4 + HeaderSize + requestStructureSize + 2*len(req.Dialects))
	w.WriteUint32(0) // NetBIOS session header, patched below

	// SMB2 header [MS-SMB2] 2.2.1.2
	w.WriteUint32(ProtocolID)
	w.WriteUint16(HeaderSize)
	w.WriteUint16(0) // CreditCharge
	w.WriteUint32(0) // Status
	w.WriteUint16(CommandNegotiate)
	w.WriteUint16(credits)
	w.WriteUint32(0) // Flags
	w.WriteUint32(0) // NextCommand
	w.WriteUint64(req.MessageID)
	w.WriteUint32(0) // Reserved (ProcessId)
	w.WriteUint32(0) // TreeId
	w.WriteUint64(0) // SessionId
	w.WriteZeros(16) // Signature

	// NEGOTIATE request [MS-SMB2] 2.2.3
	w.WriteUint16(requestStructureSize)
	w.WriteUint16(uint16(len(req.Dialects)))
	w.WriteUint16(uint16(req.SecurityMode))
	w.WriteUint16(0) // Reserved
	w.WriteUint32(uint32(req.Capabilities))
	w.WriteGUID(req.ClientGUID)
	w.WriteUint64(timeToFiletime(req.StartTime))
	for _, d := range req.Dialects {
		w.WriteUint16(uint16(d))
	}

	payload := w.Len() - 4
	w.WriteAt(0, binary.BigEndian.AppendUint32(nil, uint32(payload)))
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ParseHeader decodes the SMB2 sync header at the start of msg.
func ParseHeader(msg []byte) (Header, error) {
	r := smbenc.NewReader(msg)
	r.EnsureRemaining(HeaderSize)
	if r.Err() != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrMalformed, r.Err())
	}

	if r.ReadUint32() != ProtocolID {
		return Header{}, ErrInvalidProtocolID
	}
	r.ExpectUint16(HeaderSize)
	r.Skip(2) // CreditCharge

	var h Header
	h.Status = Status(r.ReadUint32())
	h.Command = r.ReadUint16()
	h.Credits = r.ReadUint16()
	h.Flags = r.ReadUint32()
	r.Skip(4) // NextCommand
	h.MessageID = r.ReadUint64()
	r.Skip(4) // Reserved
	r.Skip(4) // TreeId
	h.SessionID = r.ReadUint64()
	r.Skip(16) // Signature

	if err := r.Err(); err != nil {
		return Header{}, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}
	return h, nil
}

// ParseRequest decodes a NEGOTIATE request (header and body, without the
// NetBIOS session header).
func ParseRequest(msg []byte) (*Request, error) {
	h, err := ParseHeader(msg)
	if err != nil {
		return nil, err
	}
	if h.Command != CommandNegotiate {
		return nil, fmt.Errorf("%w: 0x%04X", ErrUnexpectedCommand, h.Command)
	}
	if h.Flags&FlagServerToRedir != 0 {
		return nil, fmt.Errorf("%w: response flag set on a request", ErrMalformed)
	}

	req := &Request{MessageID: h.MessageID, CreditRequest: h.Credits}

	r := smbenc.NewReader(msg[HeaderSize:])
	r.ExpectUint16(requestStructureSize)
	count := int(r.ReadUint16())
	req.SecurityMode = SecurityMode(r.ReadUint16())
	r.Skip(2) // Reserved
	req.Capabilities = Capabilities(r.ReadUint32())
	req.ClientGUID = r.ReadGUID()
	req.StartTime = filetimeToTime(r.ReadUint64())
	r.EnsureRemaining(2 * count)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: body: %w", ErrMalformed, err)
	}
	if count == 0 {
		return nil, ErrNoDialects
	}

	req.Dialects = make([]Dialect, count)
	for i := range req.Dialects {
		req.Dialects[i] = Dialect(r.ReadUint16())
	}
	return req, nil
}

// ParseResponse decodes an SMB2 NEGOTIATE response (header and body,
// without the NetBIOS session header). An error status from the server is
// reported as *StatusError along with the decoded header.
func ParseResponse(msg []byte) (*Response, error) {
	h, err := ParseHeader(msg)
	if err != nil {
		return nil, err
	}
	if h.Command != CommandNegotiate {
		return nil, fmt.Errorf("%w: 0x%04X", ErrUnexpectedCommand, h.Command)
	}
	if h.Flags&FlagServerToRedir == 0 {
		return nil, ErrNotResponse
	}

	resp := &Response{Header: h}
	if h.Status.IsError() {
		return resp, &StatusError{Status: h.Status}
	}

	// NEGOTIATE response [MS-SMB2] 2.2.4
	r := smbenc.NewReader(msg[HeaderSize:])
	r.EnsureRemaining(responseFixedSize)
	r.ExpectUint16(responseStructureSize)
	resp.SecurityMode = SecurityMode(r.ReadUint16())
	resp.Dialect = Dialect(r.ReadUint16())
	r.Skip(2) // NegotiateContextCount
	resp.ServerGUID = r.ReadGUID()
	resp.Capabilities = Capabilities(r.ReadUint32())
	resp.MaxTransactSize = r.ReadUint32()
	resp.MaxReadSize = r.ReadUint32()
	resp.MaxWriteSize = r.ReadUint32()
	resp.SystemTime = filetimeToTime(r.ReadUint64())
	resp.ServerStartTime = filetimeToTime(r.ReadUint64())
	secOffset := int(r.ReadUint16())
	secLength := int(r.ReadUint16())
	r.Skip(4) // NegotiateContextOffset

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: body: %w", ErrMalformed, err)
	}

	if secLength > 0 {
		// The offset is measured from the start of the SMB2 header.
		if secOffset < HeaderSize+responseFixedSize || secOffset+secLength > len(msg) {
			return nil, fmt.Errorf("%w: security buffer %d+%d outside %d byte message",
				ErrMalformed, secOffset, secLength, len(msg))
		}
		resp.SecurityBlob = append([]byte(nil), msg[secOffset:secOffset+secLength]...)
	}
	return resp, nil
}

// EncodeResponse encodes resp without the NetBIOS session header. Servers
// and tests use it to produce NEGOTIATE responses.
func EncodeResponse(resp *Response) []byte {
	w := smbenc.NewWriter(HeaderSize + responseFixedSize + len(resp.SecurityBlob))

	w.WriteUint32(ProtocolID)
	w.WriteUint16(HeaderSize)
	w.WriteUint16(0)
	w.WriteUint32(uint32(resp.Header.Status))
	w.WriteUint16(CommandNegotiate)
	w.WriteUint16(resp.Header.Credits)
	w.WriteUint32(resp.Header.Flags | FlagServerToRedir)
	w.WriteUint32(0)
	w.WriteUint64(resp.Header.MessageID)
	w.WriteUint32(0)
	w.WriteUint32(0)
	w.WriteUint64(resp.Header.SessionID)
	w.WriteZeros(16)

	if resp.Header.Status.IsError() {
		// ERROR response [MS-SMB2] 2.2.2
		w.WriteUint16(errorStructureSize)
		w.WriteUint8(0) // ErrorContextCount
		w.WriteUint8(0) // Reserved
		w.WriteUint32(0)
		w.WriteUint8(0)
		return w.Bytes()
	}

	w.WriteUint16(responseStructureSize)
	w.WriteUint16(uint16(resp.SecurityMode))
	w.WriteUint16(uint16(resp.Dialect))
	w.WriteUint16(0)
	w.WriteGUID(resp.ServerGUID)
	w.WriteUint32(uint32(resp.Capabilities))
	w.WriteUint32(resp.MaxTransactSize)
	w.WriteUint32(resp.MaxReadSize)
	w.WriteUint32(resp.MaxWriteSize)
	w.WriteUint64(timeToFiletime(resp.SystemTime))
	w.WriteUint64(timeToFiletime(resp.ServerStartTime))
	if len(resp.SecurityBlob) > 0 {
		w.WriteUint16(HeaderSize + responseFixedSize)
	} else {
		w.WriteUint16(0)
	}
	w.WriteUint16(uint16(len(resp.SecurityBlob)))
	w.WriteUint32(0)
	w.WriteBytes(resp.SecurityBlob)
	return w.Bytes()
}
