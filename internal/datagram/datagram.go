package datagram

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnexpectedEOF is reported when a read needs more bytes than remain.
	ErrUnexpectedEOF = errors.New("unexpected end of datagram")

	// ErrStringTooLong is reported when a string does not fit its length prefix.
	ErrStringTooLong = errors.New("string too long for length prefix")
)

// Datagram is an append-only byte buffer with typed put operations.
type Datagram struct {
	buf []byte
	err error
}

// New creates an empty little-endian datagram.
func New() *Datagram {
	return &Datagram{}
}

// Err returns the first error recorded by a put operation.
func (d *Datagram) Err() error {
	return d.err
}

// Bytes returns the accumulated message. The slice aliases the buffer.
func (d *Datagram) Bytes() []byte {
	return d.buf
}

// Len returns the number of bytes written so far.
func (d *Datagram) Len() int {
	return len(d.buf)
}

func (d *Datagram) AddUint8(v uint8) {
	d.buf = append(d.buf, v)
}

func (d *Datagram) AddInt8(v int8) {
	d.buf = append(d.buf, byte(v))
}

func (d *Datagram) AddBool(v bool) {
	if v {
		d.AddUint8(1)
		return
	}
	d.AddUint8(0)
}

func (d *Datagram) AddUint16(v uint16) {
	d.buf = binary.LittleEndian.AppendUint16(d.buf, v)
}

func (d *Datagram) AddInt16(v int16) {
	d.AddUint16(uint16(v))
}

func (d *Datagram) AddUint32(v uint32) {
	d.buf = binary.LittleEndian.AppendUint32(d.buf, v)
}

func (d *Datagram) AddInt32(v int32) {
	d.AddUint32(uint32(v))
}

func (d *Datagram) AddUint64(v uint64) {
	d.buf = binary.LittleEndian.AppendUint64(d.buf, v)
}

func (d *Datagram) AddInt64(v int64) {
	d.AddUint64(uint64(v))
}

func (d *Datagram) AddFloat32(v float32) {
	d.AddUint32(math.Float32bits(v))
}

func (d *Datagram) AddFloat64(v float64) {
	d.AddUint64(math.Float64bits(v))
}

// AddString writes s with a uint16 length prefix.
func (d *Datagram) AddString(s string) {
	if len(s) > math.MaxUint16 {
		d.setErr(fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s)))
		return
	}
	d.AddUint16(uint16(len(s)))
	d.buf = append(d.buf, s...)
}

// AddString32 writes s with a uint32 length prefix.
func (d *Datagram) AddString32(s string) {
	if uint64(len(s)) > math.MaxUint32 {
		d.setErr(fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s)))
		return
	}
	d.AddUint32(uint32(len(s)))
	d.buf = append(d.buf, s...)
}

// AppendData appends raw bytes with no prefix.
func (d *Datagram) AppendData(data []byte) {
	d.buf = append(d.buf, data...)
}

func (d *Datagram) setErr(err error) {
	if d.err == nil {
		d.err = err
	}
}
