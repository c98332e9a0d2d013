package bam

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/bamboo/internal/datagram"
	"github.com/roach88/bamboo/internal/handle"
	"github.com/roach88/bamboo/internal/pointer"
)

// fileDataEscape marks a 64-bit length following a 32-bit length field.
const fileDataEscape = math.MaxUint32

// LoadBytes decodes a whole container. On error the File must be discarded.
func (f *File) LoadBytes(data []byte) error {
	f.reset()

	if len(data) < len(Magic) || !bytes.Equal(data[:len(Magic)], Magic) {
		return newFormatError(ErrCodeBadMagic, "invalid BAM header", nil)
	}

	it := datagram.NewIterator(data[len(Magic):])
	hdr, err := readHeader(it)
	if err != nil {
		return err
	}
	f.header = hdr

	for it.Remaining() > 0 {
		if err := f.readObjectCode(it); err != nil {
			return err
		}
	}

	if f.nesting != 0 {
		f.logger.Warn("unbalanced object nesting at end of stream",
			"nesting", f.nesting,
			"version", f.header.Version.String(),
		)
	}

	f.logger.Debug("container loaded",
		"version", f.header.Version.String(),
		"objects", len(f.records),
		"handles", f.handles.Len(),
		"interpreted", len(f.live),
		"file_data", len(f.fileData),
	)
	return nil
}

func readHeader(it *datagram.Iterator) (Header, error) {
	size := it.Uint32()
	body := it.Bytes(int(size))
	if err := it.Err(); err != nil {
		return Header{}, newFormatError(ErrCodeTruncated, "header", err)
	}

	hit := datagram.NewIterator(body)
	h := Header{Endian: LittleEndian}
	h.Version.Major = hit.Uint16()
	h.Version.Minor = hit.Uint16()
	if h.Version.AtLeast(VersionEndianFlag) {
		h.Endian = Endian(hit.Uint8())
	}
	if h.Version.AtLeast(VersionStdFloat) {
		h.StdFloatDouble = hit.Bool()
	}
	if err := hit.Err(); err != nil {
		return Header{}, newFormatError(ErrCodeTruncated, "header fields", err)
	}
	if hit.Remaining() > 0 {
		h.Extra = hit.RemainingBytes()
	}
	return h, nil
}

// readObjectCode consumes one framed record.
func (f *File) readObjectCode(it *datagram.Iterator) error {
	size := it.Uint32()
	body := it.Bytes(int(size))
	if err := it.Err(); err != nil {
		return newFormatError(ErrCodeTruncated, "record frame", err)
	}
	rec := datagram.NewIterator(body)

	code := CodeAdjunct
	if f.header.Version.AtLeast(VersionObjectCodes) {
		code = ObjectCode(rec.Uint8())
		if err := rec.Err(); err != nil {
			return newFormatError(ErrCodeTruncated, "record opcode", err)
		}
	}

	switch code {
	case CodePush:
		f.nesting++
		return f.readObject(rec)
	case CodePop:
		f.nesting--
		return nil
	case CodeAdjunct:
		return f.readObject(rec)
	case CodeRemove:
		ids := f.ptrIn.ReadUntilEnd(rec)
		if err := rec.Err(); err != nil {
			return newFormatError(ErrCodeTruncated, "freed object list", err)
		}
		f.freed = append(f.freed, ids...)
		return nil
	case CodeFileData:
		data, err := readFileData(rec)
		if err != nil {
			return err
		}
		f.fileData = append(f.fileData, data)
		return nil
	default:
		f.logger.Warn("skipping record with unknown opcode",
			"opcode", uint8(code),
			"size", size,
		)
		return nil
	}
}

func readFileData(rec *datagram.Iterator) ([]byte, error) {
	n := uint64(rec.Uint32())
	if n == fileDataEscape {
		n = rec.Uint64()
	}
	if err := rec.Err(); err != nil {
		return nil, newFormatError(ErrCodeTruncated, "file data length", err)
	}
	if n > uint64(rec.Remaining()) {
		return nil, newFormatError(ErrCodeTruncated,
			fmt.Sprintf("file data declares %d bytes, record holds %d", n, rec.Remaining()), nil)
	}
	return rec.Bytes(int(n)), nil
}

// readObject decodes the handle, object id and payload of one object.
func (f *File) readObject(rec *datagram.Iterator) error {
	hid, err := f.handles.Read(rec)
	if err != nil {
		return handleFormatError(err)
	}
	objID := f.ptrIn.Read(rec)
	if err := rec.Err(); err != nil {
		return newFormatError(ErrCodeTruncated, "object id", err)
	}

	h, ok := f.handles.Lookup(hid)
	if !ok {
		return &FormatError{
			Code:    ErrCodeUndefinedHandle,
			Message: fmt.Sprintf("object references undefined handle %d", hid),
			ObjID:   objID,
		}
	}
	if _, dup := f.index[objID]; dup {
		return NewDuplicateObjectError(objID, h.Name)
	}

	r := &Record{
		ObjID:      objID,
		HandleID:   hid,
		HandleName: h.Name,
		Data:       rec.RemainingBytes(),
	}
	f.appendRecord(r)
	return f.materialize(r)
}

func handleFormatError(err error) error {
	code := ErrCodeTruncated
	switch {
	case errors.Is(err, handle.ErrTooDeep):
		code = ErrCodeHandleDepth
	case errors.Is(err, handle.ErrRedefined):
		code = ErrCodeHandleRedefined
	}
	return newFormatError(code, "type handle", err)
}

// materialize hands a record's payload to its interpreter, if one is
// registered for the type.
func (f *File) materialize(r *Record) error {
	v := f.header.Version
	obj := f.registry.Create(f, v, r.HandleName)
	if obj == nil {
		if !f.unknownSeen[r.HandleName] {
			f.unknownSeen[r.HandleName] = true
			f.unknown = append(f.unknown, r.HandleName)
			f.logger.Debug("no interpreter for type", "type", r.HandleName, "obj_id", r.ObjID)
		}
		return nil
	}

	obj.ObjectBase().bind(f, v, r.ObjID)
	it := datagram.NewIterator(r.Data)
	if err := obj.Load(it); err != nil {
		if IsFormatError(err) {
			return err
		}
		return fmt.Errorf("load object %d (%s): %w", r.ObjID, r.HandleName, err)
	}
	if err := it.Err(); err != nil {
		return &FormatError{
			Code:    ErrCodeTruncated,
			Message: "interpreter read past end of payload",
			ObjID:   r.ObjID,
			Handle:  r.HandleName,
			Err:     err,
		}
	}

	if it.Remaining() > 0 {
		extra := it.RemainingBytes()
		obj.SetExtraData(extra)
		r.Extra = extra
		if f.warnTruncated {
			f.logger.Warn("loading truncated data",
				"type", r.HandleName,
				"obj_id", r.ObjID,
				"extra_bytes", len(extra),
			)
		}
	}

	f.live[r.ObjID] = obj
	return nil
}

// Bytes serializes the container.
func (f *File) Bytes() ([]byte, error) {
	v := f.header.Version
	if len(f.fileData) > 0 && !v.AtLeast(VersionObjectCodes) {
		return nil, fmt.Errorf("write: file data needs version %s or later, have %s", VersionObjectCodes, v)
	}

	dg := datagram.New()
	dg.AppendData(Magic)
	writeHeader(dg, f.header)

	f.beginWrite()
	for i, r := range f.records {
		code := CodeAdjunct
		if i == 0 {
			code = CodePush
		}
		if err := f.writeObject(dg, code, r); err != nil {
			return nil, err
		}
	}

	for _, data := range f.fileData {
		if err := writeFileData(dg, data); err != nil {
			return nil, err
		}
	}

	if v.AtLeast(VersionObjectCodes) {
		body := datagram.New()
		body.AddUint8(uint8(CodePop))
		if err := writeFrame(dg, body); err != nil {
			return nil, err
		}
	}

	if err := dg.Err(); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return dg.Bytes(), nil
}

// beginWrite resets the write-side pointer, handle and array state.
func (f *File) beginWrite() {
	f.ptrOut.Reset()
	f.written = handle.WrittenSet{}
	f.writePool = pointer.NewWritePool(f.pool)
}

func writeHeader(dg *datagram.Datagram, h Header) {
	dg.AddUint32(uint32(headerFieldsSize(h.Version) + len(h.Extra)))
	dg.AddUint16(h.Version.Major)
	dg.AddUint16(h.Version.Minor)
	if h.Version.AtLeast(VersionEndianFlag) {
		dg.AddUint8(uint8(h.Endian))
	}
	if h.Version.AtLeast(VersionStdFloat) {
		dg.AddBool(h.StdFloatDouble)
	}
	dg.AppendData(h.Extra)
}

func (f *File) writeObject(dg *datagram.Datagram, code ObjectCode, r *Record) error {
	v := f.header.Version
	body := datagram.New()
	if v.AtLeast(VersionObjectCodes) {
		body.AddUint8(uint8(code))
	}

	if err := f.handles.Write(body, r.HandleID, f.written); err != nil {
		return fmt.Errorf("write object %d: %w", r.ObjID, err)
	}
	if err := f.ptrOut.Write(body, r.ObjID); err != nil {
		return fmt.Errorf("write object %d: %w", r.ObjID, err)
	}

	payload := r.Data
	if obj, ok := f.live[r.ObjID]; ok {
		data, err := EncodeObject(obj, v)
		if err != nil {
			return fmt.Errorf("write object %d (%s): %w", r.ObjID, r.HandleName, err)
		}
		payload = data
	}
	body.AppendData(payload)

	return writeFrame(dg, body)
}

func writeFileData(dg *datagram.Datagram, data []byte) error {
	body := datagram.New()
	body.AddUint8(uint8(CodeFileData))
	if uint64(len(data)) >= fileDataEscape {
		body.AddUint32(fileDataEscape)
		body.AddUint64(uint64(len(data)))
	} else {
		body.AddUint32(uint32(len(data)))
	}
	body.AppendData(data)
	return writeFrame(dg, body)
}

// writeFrame appends body to dg behind a uint32 length.
func writeFrame(dg *datagram.Datagram, body *datagram.Datagram) error {
	if err := body.Err(); err != nil {
		return err
	}
	if uint64(body.Len()) > math.MaxUint32 {
		return fmt.Errorf("record of %d bytes exceeds frame limit", body.Len())
	}
	dg.AddUint32(uint32(body.Len()))
	dg.AppendData(body.Bytes())
	return nil
}
