// Package datagram provides the primitive codec used by every layer of the
// BAM engine: an append-only Datagram for writing and an Iterator with a
// cursor for reading.
//
// Both types carry a sticky error, the way nested binary decoders usually
// do: once a read runs past the end of the buffer (or a write cannot be
// represented), every later call is a no-op that returns a zero value, and
// only the top-level caller needs to check Err. This keeps per-type
// interpreters free of error plumbing around every field.
//
// Integers are always little-endian; the header endian flag is informational.
// Strings are length-prefixed with a uint16 (AddString, Str) or a uint32
// (AddString32, Str32).
package datagram
