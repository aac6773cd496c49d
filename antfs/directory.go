package antfs

import "github.com/go-ant/antcore/pkg"

// File flag bits, per the directory entry's flags byte.
const (
	FlagRead       uint8 = 1 << 7
	FlagWrite      uint8 = 1 << 6
	FlagErase      uint8 = 1 << 5
	FlagArchived   uint8 = 1 << 4
	FlagAppendOnly uint8 = 1 << 3
	FlagEncrypted  uint8 = 1 << 2
)

// CommandPipeIndex is the reserved file index of the ANT-FS Command Pipe.
const CommandPipeIndex uint16 = 0xFFFE

// DirectoryIndex is the reserved file index of the directory itself.
const DirectoryIndex uint16 = 0

// DirectoryHeader is the fixed 16-byte directory header.
type DirectoryHeader struct {
	VersionMajor, VersionMinor uint8
	ElementSize                uint8
	TimeFormat                 uint8
	CurrentSystemTime          uint32
	LastModified               uint32
}

// File is one 16-byte directory entry.
type File struct {
	Index      uint16
	Type       uint8
	Identifier [3]byte
	Flags      uint8
	Size       uint32
	Date       uint32
}

// CanRead reports whether the read flag is set.
func (f File) CanRead() bool { return f.Flags&FlagRead != 0 }

// CanWrite reports whether the write flag is set.
func (f File) CanWrite() bool { return f.Flags&FlagWrite != 0 }

// CanErase reports whether the erase flag is set.
func (f File) CanErase() bool { return f.Flags&FlagErase != 0 }

// IsArchived reports whether the archived flag is set.
func (f File) IsArchived() bool { return f.Flags&FlagArchived != 0 }

// Directory is a fully parsed ANT-FS directory listing.
type Directory struct {
	Header DirectoryHeader
	Files  []File
}

// DecodeDirectory parses a directory's raw bytes: a 16-byte header
// followed by 16-byte file entries, sorted by index.
func DecodeDirectory(buf []byte) (Directory, error) {
	if len(buf) < 16 || len(buf)%16 != 0 {
		return Directory{}, pkg.ErrProtocolViolation
	}
	h := DirectoryHeader{
		VersionMajor:      buf[0] >> 4,
		VersionMinor:      buf[0] & 0x0F,
		ElementSize:       buf[1],
		TimeFormat:        buf[2],
		CurrentSystemTime: decodeLE32(buf[3:7]),
		LastModified:      decodeLE32(buf[7:11]),
	}

	// Entry layout: index(2) + type(1) + identifier(3) + reserved(1) +
	// flags(1) + size(4) + date(4) = 16 bytes.
	var files []File
	for off := 16; off+16 <= len(buf); off += 16 {
		entry := buf[off : off+16]
		files = append(files, File{
			Index:      uint16(entry[0]) | uint16(entry[1])<<8,
			Type:       entry[2],
			Identifier: [3]byte{entry[3], entry[4], entry[5]},
			Flags:      entry[7],
			Size:       decodeLE32(entry[8:12]),
			Date:       decodeLE32(entry[12:16]),
		})
	}
	return Directory{Header: h, Files: files}, nil
}
