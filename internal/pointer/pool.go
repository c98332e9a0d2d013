package pointer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/roach88/bamboo/internal/datagram"
)

var (
	// ErrNonEmptyNullArray is returned when key 0 declares a non-zero length.
	ErrNonEmptyNullArray = errors.New("null array key with non-zero length")

	// ErrTypeMismatch is returned when one key is read with two element types.
	ErrTypeMismatch = errors.New("interned array element type mismatch")

	// ErrPoolExhausted is returned when no free 16-bit key is left to assign.
	ErrPoolExhausted = errors.New("array pool keys exhausted")
)

// Pool is the read-side interned array table for one pass.
type Pool struct {
	arrays map[uint16]any
	keys   map[sliceID]uint16
}

// sliceID identifies a slice value: its backing array, length and capacity.
// A re-slice of an interned array is a different value.
type sliceID struct {
	data     uintptr
	len, cap int
}

func idOf[T any](s []T) sliceID {
	return sliceID{
		data: uintptr(unsafe.Pointer(unsafe.SliceData(s))),
		len:  len(s),
		cap:  cap(s),
	}
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		arrays: make(map[uint16]any),
		keys:   make(map[sliceID]uint16),
	}
}

// Reset forgets every interned array.
func (p *Pool) Reset() {
	p.arrays = make(map[uint16]any)
	p.keys = make(map[sliceID]uint16)
}

// Len returns the number of interned arrays.
func (p *Pool) Len() int {
	return len(p.arrays)
}

// Keys returns the set of keys in use.
func (p *Pool) Keys() []uint16 {
	out := make([]uint16, 0, len(p.arrays))
	for k := range p.arrays {
		out = append(out, k)
	}
	return out
}

// KeyOf returns the key the slice was interned under, if any. Only the
// exact slice value returned by ReadArray matches.
func KeyOf[T any](p *Pool, s []T) (uint16, bool) {
	if p == nil || cap(s) == 0 {
		return 0, false
	}
	k, ok := p.keys[idOf(s)]
	return k, ok
}

// ReadArray reads an interned array reference. The first occurrence of a key
// is followed by a uint32 count and the elements; later occurrences consume
// only the key and return the slice read the first time.
func ReadArray[T any](p *Pool, it *datagram.Iterator, elem func(*datagram.Iterator) T) ([]T, error) {
	key := it.Uint16()
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("read array key: %w", err)
	}

	if key == 0 {
		n := it.Uint32()
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("read null array length: %w", err)
		}
		if n != 0 {
			return nil, fmt.Errorf("%w: %d", ErrNonEmptyNullArray, n)
		}
		return []T{}, nil
	}

	if cached, ok := p.arrays[key]; ok {
		s, ok := cached.([]T)
		if !ok {
			return nil, fmt.Errorf("%w: key %d holds %T, want %T", ErrTypeMismatch, key, cached, s)
		}
		return s, nil
	}

	n := it.Uint32()
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("read array %d count: %w", key, err)
	}
	// Capacity is at least 1 so that an empty array under a non-zero key
	// still has its own backing array and keeps the key on write.
	s := make([]T, 0, max(1, min(int64(n), int64(it.Remaining()))))
	for i := uint32(0); i < n; i++ {
		v := elem(it)
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("read array %d element %d: %w", key, i, err)
		}
		s = append(s, v)
	}

	p.arrays[key] = s
	p.keys[idOf(s)] = key
	return s, nil
}

// WritePool is the write-side counterpart of Pool. Each distinct slice value
// is written in full once, then referenced by key. Slices that came out of
// a read Pool keep their original key, including empty ones.
type WritePool struct {
	seed    *Pool
	keys    map[sliceID]uint16
	used    map[uint16]bool
	written map[uint16]bool
	next    uint32

	// refs keeps keyed slices reachable so their backing arrays cannot be
	// reused by another slice during the pass.
	refs []any
}

// NewWritePool creates a write pool. seed may be nil.
func NewWritePool(seed *Pool) *WritePool {
	wp := &WritePool{
		seed:    seed,
		keys:    make(map[sliceID]uint16),
		used:    make(map[uint16]bool),
		written: make(map[uint16]bool),
		next:    1,
	}
	if seed != nil {
		for k := range seed.arrays {
			wp.used[k] = true
		}
	}
	return wp
}

func (wp *WritePool) keyFor(id sliceID, ref any, seeded uint16, hasSeed bool) (uint16, error) {
	if k, ok := wp.keys[id]; ok {
		return k, nil
	}
	if hasSeed {
		wp.keys[id] = seeded
		wp.refs = append(wp.refs, ref)
		return seeded, nil
	}
	for wp.next <= 0xFFFF && wp.used[uint16(wp.next)] {
		wp.next++
	}
	if wp.next > 0xFFFF {
		return 0, ErrPoolExhausted
	}
	k := uint16(wp.next)
	wp.next++
	wp.used[k] = true
	wp.keys[id] = k
	wp.refs = append(wp.refs, ref)
	return k, nil
}

// WriteArray writes an interned array reference for s. Empty slices that
// were not read under a key are written as the null key.
func WriteArray[T any](wp *WritePool, dg *datagram.Datagram, s []T, elem func(*datagram.Datagram, T)) error {
	seeded, hasSeed := KeyOf(wp.seed, s)
	if len(s) == 0 && !hasSeed {
		dg.AddUint16(0)
		dg.AddUint32(0)
		return nil
	}

	key, err := wp.keyFor(idOf(s), s, seeded, hasSeed)
	if err != nil {
		return err
	}

	dg.AddUint16(key)
	if wp.written[key] {
		return nil
	}
	wp.written[key] = true

	dg.AddUint32(uint32(len(s)))
	for _, v := range s {
		elem(dg, v)
	}
	return nil
}
