package pointer

import (
	"errors"
	"fmt"

	"github.com/roach88/bamboo/internal/datagram"
)

// Sentinel is the 16-bit value that promotes a stream to 32-bit pointers.
const Sentinel = 0xFFFF

// ErrOverflow is returned when a value above Sentinel must be written while
// the writer is still in 16-bit mode.
var ErrOverflow = errors.New("pointer does not fit in 16 bits")

// Reader decodes pointers for one read pass.
type Reader struct {
	long bool
}

// Long reports whether the reader has been promoted to 32-bit pointers.
func (r *Reader) Long() bool { return r.long }

// Reset returns the reader to 16-bit mode for a new pass.
func (r *Reader) Reset() { r.long = false }

// Read decodes one pointer.
func (r *Reader) Read(it *datagram.Iterator) uint32 {
	if r.long {
		return it.Uint32()
	}
	v := it.Uint16()
	if v == Sentinel && it.Err() == nil {
		r.long = true
	}
	return uint32(v)
}

// ReadUint32List reads a uint32 count followed by that many pointers.
func (r *Reader) ReadUint32List(it *datagram.Iterator) []uint32 {
	return r.readN(it, int64(it.Uint32()))
}

// ReadInt32List reads an int32 count followed by that many pointers.
// A negative count reads nothing.
func (r *Reader) ReadInt32List(it *datagram.Iterator) []uint32 {
	return r.readN(it, int64(it.Int32()))
}

func (r *Reader) readN(it *datagram.Iterator, n int64) []uint32 {
	if n <= 0 || it.Err() != nil {
		return nil
	}
	out := make([]uint32, 0, min(n, int64(it.Remaining()/2)))
	for i := int64(0); i < n; i++ {
		v := r.Read(it)
		if it.Err() != nil {
			return out
		}
		out = append(out, v)
	}
	return out
}

// ReadUntilEnd reads pointers until the iterator is exhausted.
func (r *Reader) ReadUntilEnd(it *datagram.Iterator) []uint32 {
	var out []uint32
	for it.Remaining() > 0 && it.Err() == nil {
		v := r.Read(it)
		if it.Err() != nil {
			break
		}
		out = append(out, v)
	}
	return out
}

// Writer encodes pointers for one write pass.
type Writer struct {
	long bool
}

// Long reports whether the writer has been promoted to 32-bit pointers.
func (w *Writer) Long() bool { return w.long }

// Reset returns the writer to 16-bit mode for a new pass.
func (w *Writer) Reset() { w.long = false }

// Write encodes one pointer.
func (w *Writer) Write(dg *datagram.Datagram, v uint32) error {
	if w.long {
		dg.AddUint32(v)
		return nil
	}
	if v > Sentinel {
		return fmt.Errorf("%w: %d", ErrOverflow, v)
	}
	if v == Sentinel {
		w.long = true
	}
	dg.AddUint16(uint16(v))
	return nil
}

// WriteUint32List writes a uint32 count followed by the pointers.
func (w *Writer) WriteUint32List(dg *datagram.Datagram, ptrs []uint32) error {
	dg.AddUint32(uint32(len(ptrs)))
	return w.writeAll(dg, ptrs)
}

// WriteInt32List writes an int32 count followed by the pointers.
func (w *Writer) WriteInt32List(dg *datagram.Datagram, ptrs []uint32) error {
	dg.AddInt32(int32(len(ptrs)))
	return w.writeAll(dg, ptrs)
}

func (w *Writer) writeAll(dg *datagram.Datagram, ptrs []uint32) error {
	for i, p := range ptrs {
		if err := w.Write(dg, p); err != nil {
			return fmt.Errorf("pointer %d: %w", i, err)
		}
	}
	return nil
}
