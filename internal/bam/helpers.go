package bam

import (
	"errors"
	"fmt"

	"github.com/roach88/bamboo/internal/datagram"
	"github.com/roach88/bamboo/internal/pointer"
)

// Helpers for interpreters. Pointers and arrays share the File's pass state,
// so payloads must be read during Load and written during Write.

// ReadPointer decodes an object reference.
func (f *File) ReadPointer(it *datagram.Iterator) uint32 {
	return f.ptrIn.Read(it)
}

// WritePointer encodes an object reference.
func (f *File) WritePointer(dg *datagram.Datagram, id uint32) error {
	return f.ptrOut.Write(dg, id)
}

// ReadPointerUint32List reads a uint32-counted list of references.
func (f *File) ReadPointerUint32List(it *datagram.Iterator) []uint32 {
	return f.ptrIn.ReadUint32List(it)
}

// ReadPointerInt32List reads an int32-counted list of references.
func (f *File) ReadPointerInt32List(it *datagram.Iterator) []uint32 {
	return f.ptrIn.ReadInt32List(it)
}

// WritePointerUint32List writes a uint32-counted list of references.
func (f *File) WritePointerUint32List(dg *datagram.Datagram, ids []uint32) error {
	return f.ptrOut.WriteUint32List(dg, ids)
}

// WritePointerInt32List writes an int32-counted list of references.
func (f *File) WritePointerInt32List(dg *datagram.Datagram, ids []uint32) error {
	return f.ptrOut.WriteInt32List(dg, ids)
}

// ReadStdFloat reads a float at the width the header selects.
func (f *File) ReadStdFloat(it *datagram.Iterator) float64 {
	if f.header.StdFloatDouble {
		return it.Float64()
	}
	return float64(it.Float32())
}

// WriteStdFloat writes a float at the width the header selects.
func (f *File) WriteStdFloat(dg *datagram.Datagram, v float64) {
	if f.header.StdFloatDouble {
		dg.AddFloat64(v)
		return
	}
	dg.AddFloat32(float32(v))
}

// ReadUint16Array reads an interned uint16 array.
func (f *File) ReadUint16Array(it *datagram.Iterator) ([]uint16, error) {
	return arrayResult(pointer.ReadUint16Array(f.pool, it))
}

// ReadUint32Array reads an interned uint32 array.
func (f *File) ReadUint32Array(it *datagram.Iterator) ([]uint32, error) {
	return arrayResult(pointer.ReadUint32Array(f.pool, it))
}

// ReadVec2Array reads an interned Vec2 array.
func (f *File) ReadVec2Array(it *datagram.Iterator) ([]pointer.Vec2, error) {
	return arrayResult(pointer.ReadVec2Array(f.pool, it))
}

// ReadVec3Array reads an interned Vec3 array.
func (f *File) ReadVec3Array(it *datagram.Iterator) ([]pointer.Vec3, error) {
	return arrayResult(pointer.ReadVec3Array(f.pool, it))
}

// ReadVec4Array reads an interned Vec4 array.
func (f *File) ReadVec4Array(it *datagram.Iterator) ([]pointer.Vec4, error) {
	return arrayResult(pointer.ReadVec4Array(f.pool, it))
}

// WriteUint16Array writes an interned uint16 array. Passing the slice
// returned by ReadUint16Array, unmodified in length, keeps its key.
func (f *File) WriteUint16Array(dg *datagram.Datagram, s []uint16) error {
	return pointer.WriteUint16Array(f.outPool(), dg, s)
}

// WriteUint32Array writes an interned uint32 array.
func (f *File) WriteUint32Array(dg *datagram.Datagram, s []uint32) error {
	return pointer.WriteUint32Array(f.outPool(), dg, s)
}

// WriteVec2Array writes an interned Vec2 array.
func (f *File) WriteVec2Array(dg *datagram.Datagram, s []pointer.Vec2) error {
	return pointer.WriteVec2Array(f.outPool(), dg, s)
}

// WriteVec3Array writes an interned Vec3 array.
func (f *File) WriteVec3Array(dg *datagram.Datagram, s []pointer.Vec3) error {
	return pointer.WriteVec3Array(f.outPool(), dg, s)
}

// WriteVec4Array writes an interned Vec4 array.
func (f *File) WriteVec4Array(dg *datagram.Datagram, s []pointer.Vec4) error {
	return pointer.WriteVec4Array(f.outPool(), dg, s)
}

func (f *File) outPool() *pointer.WritePool {
	if f.writePool == nil {
		f.writePool = pointer.NewWritePool(f.pool)
	}
	return f.writePool
}

// arrayResult maps pool errors onto format errors.
func arrayResult[T any](s []T, err error) ([]T, error) {
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, pointer.ErrNonEmptyNullArray):
		return nil, newFormatError(ErrCodeNonZeroNullArray, "expected zero length array", err)
	case errors.Is(err, pointer.ErrTypeMismatch):
		return nil, newFormatError(ErrCodeArrayTypeMismatch, "array key reused with another element type", err)
	case errors.Is(err, datagram.ErrUnexpectedEOF):
		return nil, newFormatError(ErrCodeTruncated, "array", err)
	default:
		return nil, fmt.Errorf("array: %w", err)
	}
}
