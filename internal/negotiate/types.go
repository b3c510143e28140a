// Package negotiate implements the client side of the SMB2 NEGOTIATE
// exchange: building the request, parsing the response and probing a
// server over TCP.
//
// Reference: [MS-SMB2] 2.2.1, 2.2.3, 2.2.4
package negotiate

import (
	"fmt"
	"strings"
	"time"
)

// ProtocolID is the SMB2 protocol identifier (little-endian: 0xFE 'S' 'M' 'B')
const ProtocolID uint32 = 0x424D53FE

// HeaderSize is the fixed size of the SMB2 sync header.
const HeaderSize = 64

// CommandNegotiate is the SMB2 NEGOTIATE command code.
const CommandNegotiate uint16 = 0x0000

// FlagServerToRedir marks a message as a server response.
const FlagServerToRedir uint32 = 0x00000001

const (
	requestStructureSize  = 36
	responseStructureSize = 65
	responseFixedSize     = 64
	errorStructureSize    = 9
)

// Dialect is an SMB2 dialect revision number.
type Dialect uint16

// SMB2 Dialects [MS-SMB2] 2.2.3
const (
	Dialect0202 Dialect = 0x0202 // SMB 2.0.2
	Dialect0210 Dialect = 0x0210 // SMB 2.1
	Dialect0300 Dialect = 0x0300 // SMB 3.0
	Dialect0302 Dialect = 0x0302 // SMB 3.0.2
	Dialect0311 Dialect = 0x0311 // SMB 3.1.1
	DialectWild Dialect = 0x02FF // Wildcard, multi-protocol negotiate
)

// DefaultDialects is offered when a request names none.
var DefaultDialects = []Dialect{Dialect0202, Dialect0210, Dialect0300, Dialect0302}

var dialectNames = map[Dialect]string{
	Dialect0202: "2.0.2",
	Dialect0210: "2.1",
	Dialect0300: "3.0",
	Dialect0302: "3.0.2",
	Dialect0311: "3.1.1",
	DialectWild: "2.???",
}

// String returns the dotted dialect name, e.g. "3.0.2".
func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint16(d))
}

// ParseDialect accepts a dotted name ("2.1") or a hex revision ("0x0210").
// SMB 3.1.1 is rejected: it needs negotiate contexts this client does not send.
func ParseDialect(s string) (Dialect, error) {
	s = strings.TrimSpace(s)
	for d, name := range dialectNames {
		if d == Dialect0311 || d == DialectWild {
			continue
		}
		if strings.EqualFold(s, name) || strings.EqualFold(s, fmt.Sprintf("0x%04X", uint16(d))) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unsupported SMB2 dialect %q", s)
}

// ParseDialects parses every entry of names.
func ParseDialects(names []string) ([]Dialect, error) {
	out := make([]Dialect, 0, len(names))
	for _, name := range names {
		d, err := ParseDialect(name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// SecurityMode holds the SMB2 negotiate security mode bits.
type SecurityMode uint16

const (
	SigningEnabled  SecurityMode = 0x0001
	SigningRequired SecurityMode = 0x0002
)

func (m SecurityMode) String() string {
	switch {
	case m&SigningRequired != 0:
		return "signing-required"
	case m&SigningEnabled != 0:
		return "signing-enabled"
	default:
		return "none"
	}
}

// Capabilities holds the SMB2 global capability bits.
type Capabilities uint32

// SMB2 Capabilities [MS-SMB2] 2.2.3
const (
	CapDFS               Capabilities = 0x00000001
	CapLeasing           Capabilities = 0x00000002
	CapLargeMTU          Capabilities = 0x00000004
	CapMultiChannel      Capabilities = 0x00000008
	CapPersistentHandles Capabilities = 0x00000010
	CapDirectoryLeasing  Capabilities = 0x00000020
	CapEncryption        Capabilities = 0x00000040
)

var capabilityNames = []struct {
	bit  Capabilities
	name string
}{
	{CapDFS, "DFS"},
	{CapLeasing, "LEASING"},
	{CapLargeMTU, "LARGE_MTU"},
	{CapMultiChannel, "MULTI_CHANNEL"},
	{CapPersistentHandles, "PERSISTENT_HANDLES"},
	{CapDirectoryLeasing, "DIRECTORY_LEASING"},
	{CapEncryption, "ENCRYPTION"},
}

// Names lists the set capability bits in ascending order.
func (c Capabilities) Names() []string {
	var names []string
	for _, cn := range capabilityNames {
		if c&cn.bit != 0 {
			names = append(names, cn.name)
		}
	}
	return names
}

func (c Capabilities) String() string {
	names := c.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Windows FILETIME epoch: January 1, 1601 UTC, expressed as the offset from
// the Unix epoch in 100-nanosecond intervals.
const filetimeUnixDiff = 116444736000000000

// filetimeToTime converts a Windows FILETIME to time.Time; zero and
// pre-Unix-epoch values yield the zero time.
func filetimeToTime(ft uint64) time.Time {
	if ft == 0 || ft < filetimeUnixDiff {
		return time.Time{}
	}
	return time.Unix(0, int64(ft-filetimeUnixDiff)*100).UTC()
}

// timeToFiletime converts t to a Windows FILETIME.
func timeToFiletime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano()/100) + filetimeUnixDiff
}
