package smbenc

import "github.com/google/uuid"

// GUIDSize is the encoded width of a GUID.
const GUIDSize = 16

// guidOrder maps wire position to the RFC 4122 byte index. Data1 (4 bytes),
// Data2 and Data3 (2 bytes each) are little-endian; Data4 is a byte array.
// The permutation is its own inverse.
var guidOrder = [GUIDSize]int{3, 2, 1, 0, 5, 4, 7, 6, 8, 9, 10, 11, 12, 13, 14, 15}

// AppendGUID appends id in the mixed-endian layout used by SMB2
// ([MS-DTYP] 2.3.4.2).
func AppendGUID(buf []byte, id uuid.UUID) []byte {
	for _, i := range guidOrder {
		buf = append(buf, id[i])
	}
	return buf
}

// ScanGUID decodes a mixed-endian GUID at offset.
func ScanGUID(buf []byte, offset int) (uuid.UUID, bool) {
	var id uuid.UUID
	if offset < 0 || offset > len(buf)-GUIDSize {
		return id, false
	}
	for pos, i := range guidOrder {
		id[i] = buf[offset+pos]
	}
	return id, true
}

// ExtractGUID is ScanGUID with an error describing the shortfall.
func ExtractGUID(buf []byte, offset int) (uuid.UUID, error) {
	id, ok := ScanGUID(buf, offset)
	if !ok {
		return id, shortfall(GUIDSize, offset, len(buf))
	}
	return id, nil
}
