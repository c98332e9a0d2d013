package bam

import (
	"fmt"

	"github.com/roach88/bamboo/internal/datagram"
)

// Object is the contract every per-type interpreter implements.
//
// Load decodes the payload; bytes it leaves unread are preserved by the File
// as extra data. Write encodes the interpreter's own fields; the extra data
// is appended after it. Embed Base to get the default extra-data behavior
// and no-op Load/Write.
type Object interface {
	Load(it *datagram.Iterator) error
	Write(v Version, dg *datagram.Datagram) error
	ObjectBase() *Base
	ExtraData() []byte
	SetExtraData(data []byte)
}

// Base carries the state shared by every interpreter.
type Base struct {
	file    *File
	version Version
	objID   uint32
	extra   []byte
}

// NewBase returns a Base bound to f and v. The object id is assigned when
// the File attaches the interpreter to a record.
func NewBase(f *File, v Version) Base {
	return Base{file: f, version: v}
}

// ObjectBase returns b. Embedding types inherit it, satisfying Object.
func (b *Base) ObjectBase() *Base { return b }

// File returns the owning container, for following references by id.
func (b *Base) File() *File { return b.file }

// Version returns the stream version the object was created for.
func (b *Base) Version() Version { return b.version }

// ObjectID returns the id of the record this object was loaded from.
func (b *Base) ObjectID() uint32 { return b.objID }

func (b *Base) ExtraData() []byte { return b.extra }

func (b *Base) SetExtraData(data []byte) { b.extra = data }

// Load consumes nothing; the whole payload becomes extra data.
func (b *Base) Load(it *datagram.Iterator) error { return nil }

// Write emits nothing of its own.
func (b *Base) Write(v Version, dg *datagram.Datagram) error { return nil }

func (b *Base) bind(f *File, v Version, objID uint32) {
	b.file = f
	b.version = v
	b.objID = objID
}

// LoadType constructs a nested value with b's file and version and loads it
// from it.
func LoadType[T Object](b *Base, ctor func(*File, Version) T, it *datagram.Iterator) (T, error) {
	obj := ctor(b.file, b.version)
	obj.ObjectBase().bind(b.file, b.version, 0)
	if err := obj.Load(it); err != nil {
		return obj, err
	}
	return obj, it.Err()
}

// EncodeObject serializes obj at version v: the interpreter's output
// followed by its extra data.
func EncodeObject(obj Object, v Version) ([]byte, error) {
	dg := datagram.New()
	if err := obj.Write(v, dg); err != nil {
		return nil, fmt.Errorf("encode object %d: %w", obj.ObjectBase().ObjectID(), err)
	}
	dg.AppendData(obj.ExtraData())
	if err := dg.Err(); err != nil {
		return nil, fmt.Errorf("encode object %d: %w", obj.ObjectBase().ObjectID(), err)
	}
	return dg.Bytes(), nil
}
