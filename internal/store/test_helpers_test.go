package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bamboo/internal/bam"
	"github.com/roach88/bamboo/internal/datagram"
	"github.com/roach88/bamboo/internal/handle"
)

// createTestStore creates a store in a temp dir with fixed file ids.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(NewFixedGenerator(ids...)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type counter struct {
	bam.Base
	N uint32
}

func (c *counter) Load(it *datagram.Iterator) error {
	c.N = it.Uint32()
	return nil
}

func (c *counter) Write(v bam.Version, dg *datagram.Datagram) error {
	dg.AddUint32(c.N)
	return nil
}

// createTestFile builds a container with a small type tree:
//
//	Node(1) <- Geom(2) <- Mesh(3), Light(4) <- Node
//
// Only Node has an interpreter.
func createTestFile(t *testing.T) *bam.File {
	t.Helper()
	reg := bam.NewRegistry()
	reg.MustRegister("Node", func(f *bam.File, v bam.Version) bam.Object {
		return &counter{Base: bam.NewBase(f, v)}
	})

	f := bam.NewFile(
		bam.WithRegistry(reg),
		bam.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	for _, h := range []handle.Handle{
		{ID: 1, Name: "Node"},
		{ID: 2, Name: "Geom", Parents: []handle.ID{1}},
		{ID: 3, Name: "Mesh", Parents: []handle.ID{2}},
		{ID: 4, Name: "Light", Parents: []handle.ID{1}},
	} {
		require.NoError(t, f.RegisterHandle(h))
	}

	objects := []struct {
		handle handle.ID
		id     uint32
		data   []byte
	}{
		{1, 10, []byte{1, 0, 0, 0}},
		{3, 11, []byte("mesh")},
		{4, 12, []byte("light")},
		{2, 13, nil},
		{1, 14, []byte{2, 0, 0, 0, 0xEE}},
	}
	for _, o := range objects {
		_, err := f.AddObject(o.handle, o.id, o.data)
		require.NoError(t, err)
	}
	f.AddFileData([]byte("first"))
	f.AddFileData([]byte{})
	return f
}
