package handle

import (
	"errors"
	"fmt"

	"github.com/roach88/bamboo/internal/datagram"
)

// ID identifies a type handle within one file.
type ID uint16

// None is the reserved null handle id.
const None ID = 0

// MaxDepth bounds nested inline handle definitions on read.
const MaxDepth = 64

var (
	// ErrTooDeep is returned when inline parent definitions nest past MaxDepth.
	ErrTooDeep = errors.New("handle definitions nested too deeply")

	// ErrRedefined is returned when a stream defines the same handle id twice.
	ErrRedefined = errors.New("handle redefined")

	// ErrUndefined is returned when an id has no definition in the registry.
	ErrUndefined = errors.New("handle not defined")
)

// Handle is a type-identity record.
type Handle struct {
	ID      ID
	Name    string
	Parents []ID
}

// Registry is the id-indexed handle table for one file.
//
// The registry is not safe for concurrent use.
type Registry struct {
	handles map[ID]*Handle
	order   []ID // registration order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[ID]*Handle)}
}

// Reset forgets every handle.
func (r *Registry) Reset() {
	r.handles = make(map[ID]*Handle)
	r.order = nil
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	return len(r.order)
}

// Lookup returns the handle registered under id.
func (r *Registry) Lookup(id ID) (Handle, bool) {
	h, ok := r.handles[id]
	if !ok {
		return Handle{}, false
	}
	return h.clone(), true
}

// All returns every handle in registration order.
func (r *Registry) All() []Handle {
	out := make([]Handle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.handles[id].clone())
	}
	return out
}

// Register adds a handle built in code rather than read from a stream.
// Every parent must already be registered.
func (r *Registry) Register(h Handle) error {
	if h.ID == None {
		return fmt.Errorf("register %q: id 0 is reserved", h.Name)
	}
	if _, ok := r.handles[h.ID]; ok {
		return fmt.Errorf("register %q: %w: id %d", h.Name, ErrRedefined, h.ID)
	}
	for _, p := range h.Parents {
		if _, ok := r.handles[p]; !ok {
			return fmt.Errorf("register %q: parent %d: %w", h.Name, p, ErrUndefined)
		}
	}
	r.add(h)
	return nil
}

func (r *Registry) add(h Handle) {
	c := h.clone()
	r.handles[c.ID] = &c
	r.order = append(r.order, c.ID)
}

func (h Handle) clone() Handle {
	c := h
	if h.Parents != nil {
		c.Parents = append([]ID(nil), h.Parents...)
	}
	return c
}

// Read resolves the handle id at the iterator's cursor, consuming its
// inline definition when the id has not been seen before. Parents are
// resolved depth-first the same way.
func (r *Registry) Read(it *datagram.Iterator) (ID, error) {
	return r.read(it, 0)
}

func (r *Registry) read(it *datagram.Iterator, depth int) (ID, error) {
	if depth > MaxDepth {
		return None, fmt.Errorf("%w (limit %d)", ErrTooDeep, MaxDepth)
	}

	id := ID(it.Uint16())
	if err := it.Err(); err != nil {
		return None, fmt.Errorf("read handle id: %w", err)
	}
	if id == None {
		return id, nil
	}
	if _, ok := r.handles[id]; ok {
		return id, nil
	}

	name := it.Str()
	count := int(it.Uint8())
	if err := it.Err(); err != nil {
		return None, fmt.Errorf("read handle %d: %w", id, err)
	}

	var parents []ID
	for i := 0; i < count; i++ {
		p, err := r.read(it, depth+1)
		if err != nil {
			return None, fmt.Errorf("handle %d (%s) parent %d: %w", id, name, i, err)
		}
		parents = append(parents, p)
	}

	// A parent chain that loops back to id defines it a second time.
	if _, ok := r.handles[id]; ok {
		return None, fmt.Errorf("%w: id %d (%s)", ErrRedefined, id, name)
	}

	r.add(Handle{ID: id, Name: name, Parents: parents})
	return id, nil
}

// WrittenSet records which handle ids have been defined in a write pass.
type WrittenSet map[ID]struct{}

// Write emits id and, the first time it is seen in written, its definition
// followed by the definitions of its parents.
func (r *Registry) Write(dg *datagram.Datagram, id ID, written WrittenSet) error {
	dg.AddUint16(uint16(id))
	if id == None {
		return nil
	}
	if _, ok := written[id]; ok {
		return nil
	}

	h, ok := r.handles[id]
	if !ok {
		return fmt.Errorf("write handle %d: %w", id, ErrUndefined)
	}
	if len(h.Parents) > 0xFF {
		return fmt.Errorf("write handle %d (%s): %d parents exceed uint8 count", id, h.Name, len(h.Parents))
	}
	written[id] = struct{}{}

	dg.AddString(h.Name)
	dg.AddUint8(uint8(len(h.Parents)))
	for _, p := range h.Parents {
		if err := r.Write(dg, p, written); err != nil {
			return err
		}
	}
	return dg.Err()
}
