package bam

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bamboo/internal/datagram"
)

// streamBuilder assembles container bytes by hand.
type streamBuilder struct {
	header Header
	frames [][]byte
}

func newStream(v Version, stdFloatDouble bool) *streamBuilder {
	return &streamBuilder{header: Header{Version: v, Endian: LittleEndian, StdFloatDouble: stdFloatDouble}}
}

// record appends a framed record. The opcode is written only when the
// version carries opcodes.
func (s *streamBuilder) record(code ObjectCode, body func(dg *datagram.Datagram)) *streamBuilder {
	dg := datagram.New()
	if s.header.Version.AtLeast(VersionObjectCodes) {
		dg.AddUint8(uint8(code))
	}
	if body != nil {
		body(dg)
	}
	s.frames = append(s.frames, dg.Bytes())
	return s
}

// raw appends a frame exactly as given.
func (s *streamBuilder) raw(frame []byte) *streamBuilder {
	s.frames = append(s.frames, frame)
	return s
}

func (s *streamBuilder) bytes() []byte {
	dg := datagram.New()
	dg.AppendData(Magic)
	writeHeader(dg, s.header)
	for _, fr := range s.frames {
		dg.AddUint32(uint32(len(fr)))
		dg.AppendData(fr)
	}
	return dg.Bytes()
}

// defineHandle writes a handle id with an inline definition. Parents must
// already be defined earlier in the stream.
func defineHandle(dg *datagram.Datagram, id uint16, name string, parents ...uint16) {
	dg.AddUint16(id)
	dg.AddString(name)
	dg.AddUint8(uint8(len(parents)))
	for _, p := range parents {
		dg.AddUint16(p)
	}
}

// counter reads a single uint32.
type counter struct {
	Base
	N uint32
}

func newCounter(f *File, v Version) Object {
	return &counter{Base: NewBase(f, v)}
}

func (c *counter) Load(it *datagram.Iterator) error {
	c.N = it.Uint32()
	return nil
}

func (c *counter) Write(v Version, dg *datagram.Datagram) error {
	dg.AddUint32(c.N)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func registryWith(t *testing.T, types map[string]Constructor) *Registry {
	t.Helper()
	r := NewRegistry()
	for name, ctor := range types {
		require.NoError(t, r.Register(name, ctor))
	}
	return r
}

func loadBytes(t *testing.T, data []byte, opts ...Option) *File {
	t.Helper()
	f := NewFile(append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, f.LoadBytes(data))
	return f
}
