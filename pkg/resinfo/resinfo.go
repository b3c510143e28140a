// Package resinfo reads well-known metadata out of the generic key/value
// result sets produced for directory listings and stat calls.
//
// Lookups are defensive: a missing key and a value of the wrong type are
// both reported as absent rather than panicking.
package resinfo

import "fmt"

// Key names a metadata entry.
type Key string

const (
	KeyName     Key = "name"
	KeyPath     Key = "path"
	KeyFileType Key = "file_type"
	KeyFileSize Key = "file_size"
)

// FileType classifies a filesystem entry.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeRegular
	FileTypeDirectory
	FileTypeSymlink
)

func (t FileType) String() string {
	switch t {
	case FileTypeRegular:
		return "regular"
	case FileTypeDirectory:
		return "directory"
	case FileTypeSymlink:
		return "symlink"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// SMB2 file attribute bits used for classification ([MS-FSCC] 2.6).
const (
	AttrDirectory    uint32 = 0x00000010
	AttrReparsePoint uint32 = 0x00000400
)

// FileTypeFromAttributes classifies an entry from its SMB2 FileAttributes.
// Reparse points are reported as symlinks.
func FileTypeFromAttributes(attrs uint32) FileType {
	switch {
	case attrs&AttrReparsePoint != 0:
		return FileTypeSymlink
	case attrs&AttrDirectory != 0:
		return FileTypeDirectory
	default:
		return FileTypeRegular
	}
}

// Values is a metadata result set.
type Values map[Key]any

func lookup[T any](v Values, key Key) (T, bool) {
	raw, ok := v[key]
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := raw.(T)
	return typed, ok
}

// Name returns the entry's base name.
func (v Values) Name() (string, bool) { return lookup[string](v, KeyName) }

// Path returns the entry's full path.
func (v Values) Path() (string, bool) { return lookup[string](v, KeyPath) }

// FileType returns the entry's classification.
func (v Values) FileType() (FileType, bool) { return lookup[FileType](v, KeyFileType) }

// Size returns the entry's size in bytes.
func (v Values) Size() (int64, bool) { return lookup[int64](v, KeyFileSize) }
