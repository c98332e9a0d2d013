package harness

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/bamboo/internal/bam"
	"github.com/roach88/bamboo/internal/dump"
	"github.com/roach88/bamboo/internal/handle"
)

// Option configures a scenario run.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger handed to the containers a run creates.
//
// Default: a logger that discards everything
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func newConfig(opts []Option) *config {
	c := &config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// passthrough keeps the whole payload as extra data.
type passthrough struct {
	bam.Base
}

// Registry returns an interpreter registry with a pass-through interpreter
// for each of the scenario's interpreter names.
func (s *Scenario) Registry() (*bam.Registry, error) {
	reg := bam.NewRegistry()
	for _, name := range s.Interpreters {
		err := reg.Register(name, func(f *bam.File, v bam.Version) bam.Object {
			return &passthrough{Base: bam.NewBase(f, v)}
		})
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Header returns the container header the scenario describes.
func (s *Scenario) Header() bam.Header {
	h := bam.Header{
		Version:        bam.Version{Major: s.Version[0], Minor: s.Version[1]},
		Endian:         bam.LittleEndian,
		StdFloatDouble: s.StdFloat,
	}
	if strings.EqualFold(s.Endian, "big") {
		h.Endian = bam.BigEndian
	}
	return h
}

// Build assembles the scenario's container in memory and serializes it.
func Build(s *Scenario, opts ...Option) (*bam.File, []byte, error) {
	c := newConfig(opts)
	reg, err := s.Registry()
	if err != nil {
		return nil, nil, fmt.Errorf("build %s: %w", s.Name, err)
	}

	f := bam.NewFile(bam.WithRegistry(reg), bam.WithLogger(c.logger))
	f.SetHeader(s.Header())

	for _, h := range s.Handles {
		parents := make([]handle.ID, len(h.Parents))
		for i, p := range h.Parents {
			parents[i] = handle.ID(p)
		}
		if err := f.RegisterHandle(handle.Handle{ID: handle.ID(h.ID), Name: h.Name, Parents: parents}); err != nil {
			return nil, nil, fmt.Errorf("build %s: handle %d: %w", s.Name, h.ID, err)
		}
	}

	for _, o := range s.Objects {
		payload, err := hex.DecodeString(o.Payload)
		if err != nil {
			return nil, nil, fmt.Errorf("build %s: object %d payload: %w", s.Name, o.ID, err)
		}
		if _, err := f.AddObject(handle.ID(o.Handle), o.ID, payload); err != nil {
			return nil, nil, fmt.Errorf("build %s: %w", s.Name, err)
		}
	}

	for i, d := range s.FileData {
		data, err := hex.DecodeString(d)
		if err != nil {
			return nil, nil, fmt.Errorf("build %s: file data %d: %w", s.Name, i, err)
		}
		f.AddFileData(data)
	}

	data, err := f.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("build %s: %w", s.Name, err)
	}
	return f, data, nil
}

// Run builds the scenario, loads the bytes into a fresh File and checks
// the expectations. A returned error means the scenario could not be
// executed; failed expectations are reported in the Result.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	c := newConfig(opts)
	_, data, err := Build(s, opts...)
	if err != nil {
		return nil, err
	}

	reg, err := s.Registry()
	if err != nil {
		return nil, err
	}
	f := bam.NewFile(bam.WithRegistry(reg), bam.WithLogger(c.logger))
	result := NewResult()
	result.Bytes = data

	if err := f.LoadBytes(data); err != nil {
		result.AddError("load: %v", err)
		return result, nil
	}
	result.Summary = dump.Snapshot(f)

	c.logger.Debug("scenario loaded",
		"scenario", s.Name,
		"bytes", len(data),
		"objects", f.Len(),
	)

	checkExpect(f, s.Expect, data, result)
	return result, nil
}

func checkExpect(f *bam.File, e Expect, built []byte, result *Result) {
	if e.Objects != nil && f.Len() != *e.Objects {
		result.AddError("objects: got %d, want %d", f.Len(), *e.Objects)
	}

	if e.Handles != nil {
		var names []string
		for _, h := range f.Handles() {
			names = append(names, h.Name)
		}
		if !slices.Equal(names, e.Handles) {
			result.AddError("handles: got %v, want %v", names, e.Handles)
		}
	}

	if e.UnknownHandles != nil && !slices.Equal(f.UnknownHandles(), e.UnknownHandles) {
		result.AddError("unknown_handles: got %v, want %v", f.UnknownHandles(), e.UnknownHandles)
	}

	for _, name := range sortedKeys(e.Related) {
		var got []string
		for _, id := range f.FindRelated(name) {
			h, _ := f.Handle(id)
			got = append(got, h.Name)
		}
		want := slices.Clone(e.Related[name])
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			result.AddError("related[%s]: got %v, want %v", name, got, want)
		}
	}

	for _, name := range sortedKeys(e.OfType) {
		var got []uint32
		for _, obj := range f.ObjectsOfType(name) {
			got = append(got, obj.ObjectBase().ObjectID())
		}
		if !slices.Equal(got, e.OfType[name]) {
			result.AddError("of_type[%s]: got %v, want %v", name, got, e.OfType[name])
		}
	}

	if e.Roundtrip {
		out, err := f.Bytes()
		switch {
		case err != nil:
			result.AddError("roundtrip: %v", err)
		case !bytes.Equal(out, built):
			result.AddError("roundtrip: wrote %d bytes, built %d, contents differ", len(out), len(built))
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
