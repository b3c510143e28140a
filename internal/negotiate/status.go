package negotiate

import "fmt"

// Status represents an NT_STATUS code returned in SMB2 responses.
//
// Bits 30-31 carry the severity: 00 success, 01 informational, 10 warning,
// 11 error. [MS-ERREF] 2.3
type Status uint32

const (
	StatusSuccess               Status = 0x00000000
	StatusPending               Status = 0x00000103
	StatusInvalidParameter      Status = 0xC000000D
	StatusMoreProcessing        Status = 0xC0000016
	StatusAccessDenied          Status = 0xC0000022
	StatusNotSupported          Status = 0xC00000BB
	StatusInsufficientResources Status = 0xC000009A
	StatusRequestNotAccepted    Status = 0xC00000D0
	StatusInternalError         Status = 0xC00000E5
)

var statusNames = map[Status]string{
	StatusSuccess:               "STATUS_SUCCESS",
	StatusPending:               "STATUS_PENDING",
	StatusInvalidParameter:      "STATUS_INVALID_PARAMETER",
	StatusMoreProcessing:        "STATUS_MORE_PROCESSING_REQUIRED",
	StatusAccessDenied:          "STATUS_ACCESS_DENIED",
	StatusNotSupported:          "STATUS_NOT_SUPPORTED",
	StatusInsufficientResources: "STATUS_INSUFFICIENT_RESOURCES",
	StatusRequestNotAccepted:    "STATUS_REQUEST_NOT_ACCEPTED",
	StatusInternalError:         "STATUS_INTERNAL_ERROR",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_0x%08X", uint32(s))
}

// IsError reports whether the severity bits are both set.
func (s Status) IsError() bool {
	return uint32(s)&0xC0000000 == 0xC0000000
}

// StatusError is returned when the server answers NEGOTIATE with an
// error status.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("negotiate failed: %s (0x%08X)", e.Status, uint32(e.Status))
}
