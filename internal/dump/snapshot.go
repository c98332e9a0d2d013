package dump

import (
	"fmt"
	"strings"

	"github.com/roach88/bamboo/internal/bam"
	"github.com/roach88/bamboo/internal/handle"
)

// Summary is an ordered, payload-free view of a container.
type Summary struct {
	Version        string
	Endian         string
	StdFloatDouble bool
	Handles        []HandleEntry
	Objects        []ObjectEntry
	FileData       []BlobEntry
	UnknownHandles []string
	FreedObjects   []uint32
}

// HandleEntry describes one type handle.
type HandleEntry struct {
	ID      handle.ID
	Name    string
	Parents []handle.ID
}

// ObjectEntry describes one object record.
type ObjectEntry struct {
	ID          uint32
	HandleID    handle.ID
	Type        string
	Size        int
	Interpreted bool
	ExtraBytes  int
	Digest      string
}

// BlobEntry describes one file data block.
type BlobEntry struct {
	Size   int
	Digest string
}

// Snapshot summarizes f. Object digests cover the stored payload, so a
// mutated interpreter is only reflected after File.Save.
func Snapshot(f *bam.File) Summary {
	h := f.Header()
	s := Summary{
		Version:        h.Version.String(),
		Endian:         h.Endian.String(),
		StdFloatDouble: h.StdFloatDouble,
		UnknownHandles: f.UnknownHandles(),
		FreedObjects:   f.FreedObjects(),
	}

	for _, hd := range f.Handles() {
		s.Handles = append(s.Handles, HandleEntry{ID: hd.ID, Name: hd.Name, Parents: hd.Parents})
	}
	for _, r := range f.Records() {
		_, live := f.Object(r.ObjID)
		s.Objects = append(s.Objects, ObjectEntry{
			ID:          r.ObjID,
			HandleID:    r.HandleID,
			Type:        r.HandleName,
			Size:        len(r.Data),
			Interpreted: live,
			ExtraBytes:  len(r.Extra),
			Digest:      Digest(DomainObject, r.Data),
		})
	}
	for _, data := range f.FileData() {
		s.FileData = append(s.FileData, BlobEntry{Size: len(data), Digest: Digest(DomainFileData, data)})
	}
	return s
}

// Canonical returns the canonical JSON form of s.
func (s Summary) Canonical() ([]byte, error) {
	return MarshalCanonical(s.value())
}

// Digest returns a digest over the canonical form of s.
func (s Summary) Digest() (string, error) {
	data, err := s.Canonical()
	if err != nil {
		return "", fmt.Errorf("summary digest: %w", err)
	}
	return Digest(DomainSummary, data), nil
}

func (s Summary) value() map[string]any {
	handles := make([]any, 0, len(s.Handles))
	for _, h := range s.Handles {
		parents := make([]any, 0, len(h.Parents))
		for _, p := range h.Parents {
			parents = append(parents, uint16(p))
		}
		handles = append(handles, map[string]any{
			"id":      uint16(h.ID),
			"name":    h.Name,
			"parents": parents,
		})
	}

	objects := make([]any, 0, len(s.Objects))
	for _, o := range s.Objects {
		objects = append(objects, map[string]any{
			"id":          o.ID,
			"handle_id":   uint16(o.HandleID),
			"type":        o.Type,
			"size":        o.Size,
			"interpreted": o.Interpreted,
			"extra_bytes": o.ExtraBytes,
			"digest":      o.Digest,
		})
	}

	blobs := make([]any, 0, len(s.FileData))
	for _, b := range s.FileData {
		blobs = append(blobs, map[string]any{"size": b.Size, "digest": b.Digest})
	}

	freed := make([]any, 0, len(s.FreedObjects))
	for _, id := range s.FreedObjects {
		freed = append(freed, id)
	}

	unknown := s.UnknownHandles
	if unknown == nil {
		unknown = []string{}
	}

	return map[string]any{
		"version":         s.Version,
		"endian":          s.Endian,
		"stdfloat_double": s.StdFloatDouble,
		"handles":         handles,
		"objects":         objects,
		"file_data":       blobs,
		"unknown_handles": unknown,
		"freed_objects":   freed,
	}
}

// HandlesText lists handles one per line as "id: name", followed by
// " <- parent ids" when the handle has parents.
func (s Summary) HandlesText() string {
	lines := make([]string, 0, len(s.Handles))
	for _, h := range s.Handles {
		line := fmt.Sprintf("%d: %s", h.ID, h.Name)
		if len(h.Parents) > 0 {
			ids := make([]string, len(h.Parents))
			for i, p := range h.Parents {
				ids[i] = fmt.Sprint(p)
			}
			line += " <- " + strings.Join(ids, ", ")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ObjectsText lists objects one per line. Objects without an interpreter
// are marked as raw data.
func (s Summary) ObjectsText() string {
	lines := make([]string, 0, len(s.Objects))
	for _, o := range s.Objects {
		if o.Interpreted {
			lines = append(lines, fmt.Sprintf("%d: %s", o.ID, o.Type))
			continue
		}
		lines = append(lines, fmt.Sprintf("%d: data, %s (%d bytes)", o.ID, o.Type, o.Size))
	}
	return strings.Join(lines, "\n")
}
