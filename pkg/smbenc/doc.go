// Package smbenc provides the byte-level codecs for the SMB2/3 wire format.
//
// Every integer on the wire is little-endian regardless of the host byte
// order. The one exception is the 16-byte GUID, which keeps the historical
// Microsoft mixed-endian layout: the first three fields are byte-reversed
// and the trailing eight bytes are copied as-is.
//
// The free functions are the primitives:
//
//	buf = smbenc.Append(buf, uint16(0x0311))
//	buf = smbenc.AppendGUID(buf, clientGUID)
//	dialect, err := smbenc.Extract[uint16](resp, 4)
//
// Reader and Writer layer an error-accumulation cursor on top of them, in the
// style of bufio.Scanner: perform a sequence of operations and check Err once:
//
//	r := smbenc.NewReader(body)
//	size := r.ReadUint16()
//	mode := r.ReadUint16()
//	guid := r.ReadGUID()
//	if r.Err() != nil {
//	    return r.Err()
//	}
package smbenc
