package bam

import "fmt"

// Magic is the fixed 6-byte prefix of every BAM file ("pbj\0\n\r").
var Magic = []byte{0x70, 0x62, 0x6A, 0x00, 0x0A, 0x0D}

// Version is a BAM major/minor version pair.
type Version struct {
	Major uint16
	Minor uint16
}

// Version thresholds that gate stream features.
var (
	VersionEndianFlag  = Version{5, 0}  // header carries an endianness byte
	VersionObjectCodes = Version{6, 21} // records carry an opcode byte
	VersionStdFloat    = Version{6, 27} // header carries the float-width flag
)

// Compare returns -1, 0 or 1 as v is older than, equal to, or newer than o.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		if v.Major < o.Major {
			return -1
		}
		return 1
	case v.Minor < o.Minor:
		return -1
	case v.Minor > o.Minor:
		return 1
	}
	return 0
}

// AtLeast reports whether v is o or newer.
func (v Version) AtLeast(o Version) bool {
	return v.Compare(o) >= 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Endian is the header's byte-order flag.
type Endian uint8

const (
	BigEndian    Endian = 0
	LittleEndian Endian = 1
)

func (e Endian) String() string {
	if e == BigEndian {
		return "Big-endian"
	}
	return "Little-endian"
}

// Header holds the decoded file header.
type Header struct {
	Version Version

	// Endian is only stored from 5.0 on; older files report LittleEndian.
	Endian Endian

	// StdFloatDouble selects 64-bit "stdfloat" values. Only stored from 6.27
	// on; older files use 32-bit floats.
	StdFloatDouble bool

	// Extra holds header bytes past the fields this version defines.
	Extra []byte
}

// DefaultHeader is used for files built in code.
var DefaultHeader = Header{Version: Version{6, 45}, Endian: LittleEndian}

// headerFieldsSize returns the size of the header fields the version defines.
func headerFieldsSize(v Version) int {
	switch {
	case v.AtLeast(VersionStdFloat):
		return 6
	case v.AtLeast(VersionEndianFlag):
		return 5
	default:
		return 4
	}
}
