package datagram

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Iterator reads typed values from a byte slice, advancing a cursor.
type Iterator struct {
	data []byte
	off  int
	err  error
}

// NewIterator creates a little-endian iterator over data.
// The iterator does not copy data; callers must not mutate it while reading.
func NewIterator(data []byte) *Iterator {
	return &Iterator{data: data}
}

// Err returns the first error encountered while reading.
func (it *Iterator) Err() error {
	return it.err
}

// Offset returns the current cursor position.
func (it *Iterator) Offset() int {
	return it.off
}

// Remaining returns the number of unread bytes.
func (it *Iterator) Remaining() int {
	return len(it.data) - it.off
}

// take returns the next n bytes, or nil once the iterator has failed.
func (it *Iterator) take(n int) []byte {
	if it.err != nil {
		return nil
	}
	if n < 0 || n > it.Remaining() {
		it.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrUnexpectedEOF, n, it.off, it.Remaining())
		return nil
	}
	b := it.data[it.off : it.off+n]
	it.off += n
	return b
}

func (it *Iterator) Uint8() uint8 {
	b := it.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (it *Iterator) Int8() int8 {
	return int8(it.Uint8())
}

func (it *Iterator) Bool() bool {
	return it.Uint8() != 0
}

func (it *Iterator) Uint16() uint16 {
	b := it.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (it *Iterator) Int16() int16 {
	return int16(it.Uint16())
}

func (it *Iterator) Uint32() uint32 {
	b := it.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (it *Iterator) Int32() int32 {
	return int32(it.Uint32())
}

func (it *Iterator) Uint64() uint64 {
	b := it.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (it *Iterator) Int64() int64 {
	return int64(it.Uint64())
}

func (it *Iterator) Float32() float32 {
	return math.Float32frombits(it.Uint32())
}

func (it *Iterator) Float64() float64 {
	return math.Float64frombits(it.Uint64())
}

// Str reads a uint16 length-prefixed string.
func (it *Iterator) Str() string {
	n := it.Uint16()
	return string(it.take(int(n)))
}

// Str32 reads a uint32 length-prefixed string.
func (it *Iterator) Str32() string {
	n := it.Uint32()
	return string(it.take(int(n)))
}

// Bytes extracts a copy of the next n bytes.
func (it *Iterator) Bytes(n int) []byte {
	b := it.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// RemainingBytes extracts a copy of every unread byte.
func (it *Iterator) RemainingBytes() []byte {
	return it.Bytes(it.Remaining())
}

// Skip advances the cursor by n bytes.
func (it *Iterator) Skip(n int) {
	it.take(n)
}
