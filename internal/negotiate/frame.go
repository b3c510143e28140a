package negotiate

import (
	"errors"
	"fmt"
	"io"

	"github.com/marmos91/smbwire/pkg/smbstream"
)

// NetBIOS session message types used on direct TCP (RFC 1002 4.3.1)
const (
	netbiosSessionMessage   = 0x00
	netbiosSessionKeepAlive = 0x85
)

// ErrFrameTooLarge indicates a frame length above the configured limit.
var ErrFrameTooLarge = errors.New("negotiate: frame exceeds maximum size")

// ReadFrame reads one NetBIOS session message from s and returns its
// payload. Keep-alive frames are skipped.
func ReadFrame(s smbstream.InputStream, maxSize int) ([]byte, error) {
	for {
		hdr, err := smbstream.ReadFull(s, 4)
		if err != nil {
			return nil, fmt.Errorf("read session header: %w", err)
		}

		length := int(hdr[1])<<16 | int(hdr[2])<<8 | int(hdr[3])
		switch hdr[0] {
		case netbiosSessionMessage:
		case netbiosSessionKeepAlive:
			if length != 0 {
				return nil, fmt.Errorf("%w: keep-alive with %d byte payload", ErrMalformed, length)
			}
			continue
		default:
			return nil, fmt.Errorf("%w: unsupported NetBIOS message type 0x%02x", ErrMalformed, hdr[0])
		}

		if length > maxSize {
			return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, maxSize)
		}
		payload, err := smbstream.ReadFull(s, length)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("read %d byte message: %w", length, err)
		}
		return payload, nil
	}
}

// WriteFrame writes payload behind a NetBIOS session header.
func WriteFrame(s smbstream.OutputStream, payload []byte) error {
	if len(payload) > maxFrameLength {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(payload), maxFrameLength)
	}
	frame := make([]byte, 0, 4+len(payload))
	frame = append(frame, netbiosSessionMessage, byte(len(payload)>>16), byte(len(payload)>>8), byte(len(payload)))
	frame = append(frame, payload...)
	_, err := smbstream.WriteAll(s, frame)
	return err
}
