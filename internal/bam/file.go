package bam

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/bamboo/internal/handle"
	"github.com/roach88/bamboo/internal/pointer"
)

// Record is the raw form of one object in the stream.
type Record struct {
	ObjID      uint32
	HandleID   handle.ID
	HandleName string

	// Data is the payload after the handle and object id.
	Data []byte

	// Extra is the tail of Data the interpreter left unread, if any.
	Extra []byte
}

// File is an in-memory BAM container.
type File struct {
	header   Header
	filename string

	handles  *handle.Registry
	records  []*Record
	index    map[uint32]int // obj id -> position in records
	live     map[uint32]Object
	pool     *pointer.Pool
	fileData [][]byte
	freed    []uint32

	unknown     []string
	unknownSeen map[string]bool

	// Read pass state.
	nesting int
	ptrIn   pointer.Reader

	// Write pass state.
	ptrOut    pointer.Writer
	writePool *pointer.WritePool
	written   handle.WrittenSet

	registry      *Registry
	logger        *slog.Logger
	warnTruncated bool
}

// Option configures a File.
type Option func(*File)

// WithRegistry sets the interpreter registry. Without one every object is
// kept as an opaque record.
func WithRegistry(r *Registry) Option {
	return func(f *File) {
		f.registry = r
	}
}

// WithLogger sets the logger used for diagnostics.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(f *File) {
		f.logger = l
	}
}

// WithWarnTruncated logs a warning whenever an interpreter leaves payload
// bytes unread.
func WithWarnTruncated(warn bool) Option {
	return func(f *File) {
		f.warnTruncated = warn
	}
}

// NewFile creates an empty container with DefaultHeader.
func NewFile(opts ...Option) *File {
	f := &File{
		header: DefaultHeader,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.reset()
	return f
}

// reset clears every table populated by a load.
func (f *File) reset() {
	f.handles = handle.NewRegistry()
	f.records = nil
	f.index = make(map[uint32]int)
	f.live = make(map[uint32]Object)
	f.pool = pointer.NewPool()
	f.fileData = nil
	f.freed = nil
	f.unknown = nil
	f.unknownSeen = make(map[string]bool)
	f.nesting = 0
	f.ptrIn.Reset()
}

// Load reads a whole container from r.
func (f *File) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read container: %w", err)
	}
	return f.LoadBytes(data)
}

// LoadFile reads the container at path and remembers the absolute path.
func (f *File) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read container: %w", err)
	}
	if err := f.LoadBytes(data); err != nil {
		return err
	}
	return f.setFilename(path)
}

// Write serializes the container to w.
func (f *File) Write(w io.Writer) error {
	data, err := f.Bytes()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write container: %w", err)
	}
	return nil
}

// WriteFile serializes the container to path and remembers the absolute path.
func (f *File) WriteFile(path string) error {
	data, err := f.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write container: %w", err)
	}
	return f.setFilename(path)
}

func (f *File) setFilename(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	f.filename = abs
	return nil
}

// Filename returns the absolute path last loaded from or written to.
func (f *File) Filename() string { return f.filename }

// Header returns the decoded header.
func (f *File) Header() Header { return f.header }

// SetHeader replaces the header used by the next Write.
func (f *File) SetHeader(h Header) { f.header = h }

// Version returns the stream version.
func (f *File) Version() Version { return f.header.Version }

// Registry returns the interpreter registry, which may be nil.
func (f *File) Registry() *Registry { return f.registry }

// Nesting returns the scope depth reached at the end of the last load.
func (f *File) Nesting() int { return f.nesting }

// Len returns the number of object records.
func (f *File) Len() int { return len(f.records) }

// Object returns the live interpreter for id.
func (f *File) Object(id uint32) (Object, bool) {
	obj, ok := f.live[id]
	return obj, ok
}

// Record returns the raw record for id.
func (f *File) Record(id uint32) (*Record, bool) {
	i, ok := f.index[id]
	if !ok {
		return nil, false
	}
	return f.records[i], true
}

// Records returns every record in stream order.
func (f *File) Records() []*Record {
	return append([]*Record(nil), f.records...)
}

// Handles returns the type handles in registration order.
func (f *File) Handles() []handle.Handle { return f.handles.All() }

// Handle returns the type handle registered under id.
func (f *File) Handle(id handle.ID) (handle.Handle, bool) { return f.handles.Lookup(id) }

// HandleIDByName returns the id of the handle named name.
func (f *File) HandleIDByName(name string) (handle.ID, bool) { return f.handles.IDByName(name) }

// FindRelated returns the id of the handle named name and of every handle
// that derives from it. It returns nil for an unknown name.
func (f *File) FindRelated(name string) []handle.ID { return f.handles.Related(name) }

// ObjectsOfType returns the live objects whose type is name or derives from
// it, in stream order. Opaque records are never included.
func (f *File) ObjectsOfType(name string) []Object {
	related := f.FindRelated(name)
	if len(related) == 0 {
		return nil
	}
	want := make(map[handle.ID]bool, len(related))
	for _, id := range related {
		want[id] = true
	}

	var out []Object
	for _, r := range f.records {
		if !want[r.HandleID] {
			continue
		}
		if obj, ok := f.live[r.ObjID]; ok {
			out = append(out, obj)
		}
	}
	return out
}

// UnknownHandles returns the type names seen without an interpreter, each
// once, in first-seen order.
func (f *File) UnknownHandles() []string {
	return append([]string(nil), f.unknown...)
}

// FileData returns the raw file-level data blocks.
func (f *File) FileData() [][]byte {
	return append([][]byte(nil), f.fileData...)
}

// AddFileData appends a raw file-level data block.
func (f *File) AddFileData(data []byte) {
	f.fileData = append(f.fileData, bytes.Clone(data))
}

// FreedObjects returns the object ids announced by remove records. They are
// informational; the records they name are kept.
func (f *File) FreedObjects() []uint32 {
	return append([]uint32(nil), f.freed...)
}

// ArrayPool returns the interned array pool of the last load.
func (f *File) ArrayPool() *pointer.Pool { return f.pool }

// RegisterHandle adds a type handle for building a container in code.
func (f *File) RegisterHandle(h handle.Handle) error {
	return f.handles.Register(h)
}

// AddObject appends a record for building a container in code. The payload
// is handed to the registered interpreter, if any, exactly as on load.
func (f *File) AddObject(handleID handle.ID, objID uint32, data []byte) (*Record, error) {
	if objID == 0 {
		return nil, fmt.Errorf("add object: id 0 is reserved")
	}
	h, ok := f.handles.Lookup(handleID)
	if !ok {
		return nil, fmt.Errorf("add object %d: handle %d: %w", objID, handleID, handle.ErrUndefined)
	}
	if _, dup := f.index[objID]; dup {
		return nil, NewDuplicateObjectError(objID, h.Name)
	}

	r := &Record{ObjID: objID, HandleID: handleID, HandleName: h.Name, Data: bytes.Clone(data)}
	f.appendRecord(r)
	if err := f.materialize(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Save re-encodes obj at version v and stores the result as its record's
// payload.
func (f *File) Save(obj Object, v Version) error {
	id := obj.ObjectBase().ObjectID()
	if id == 0 {
		return ErrObjectIDUnset
	}
	r, ok := f.Record(id)
	if !ok {
		return fmt.Errorf("save object %d: no such record", id)
	}

	// Payload pointers are encoded against a fresh write context.
	f.beginWrite()
	data, err := EncodeObject(obj, v)
	if err != nil {
		return err
	}
	r.Data = data
	r.Extra = obj.ExtraData()
	return nil
}

func (f *File) appendRecord(r *Record) {
	f.index[r.ObjID] = len(f.records)
	f.records = append(f.records, r)
}

func (f *File) String() string {
	width := "32-bit"
	if f.header.StdFloatDouble {
		width = "64-bit"
	}
	return fmt.Sprintf("BAM file version %s (%s, %s)", f.header.Version, f.header.Endian, width)
}
