package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_YAML(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/root_child.yaml")
	require.NoError(t, err)

	assert.Equal(t, "root_child", s.Name)
	assert.Equal(t, []uint16{6, 30}, s.Version)
	assert.True(t, s.StdFloat)
	assert.Equal(t, []string{"Root"}, s.Interpreters)
	require.Len(t, s.Handles, 2)
	assert.Equal(t, []uint16{1}, s.Handles[1].Parents)
	require.NotNil(t, s.Expect.Objects)
	assert.Equal(t, 2, *s.Expect.Objects)
	assert.Equal(t, []string{"Root", "Child"}, s.Expect.Related["Root"])
	assert.Equal(t, []uint32{1}, s.Expect.OfType["Root"])
}

func TestLoadScenario_CUE(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/legacy_stream.cue")
	require.NoError(t, err)

	assert.Equal(t, "legacy_stream", s.Name)
	assert.Equal(t, []uint16{6, 14}, s.Version)
	require.Len(t, s.Objects, 2)
	assert.Equal(t, uint16(7), s.Objects[0].Handle)
	assert.Empty(t, s.Objects[1].Payload)
	assert.True(t, s.Expect.Roundtrip)
}

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_YAMLUnknownField(t *testing.T) {
	path := writeScenario(t, "bad.yaml", `
name: bad
description: typo in a field name
version: [6, 45]
handels: []
`)
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoadScenario_CUESchemaViolation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "version out of range",
			content: `
name: "bad", description: "x"
version: [70000, 1]
handles: []
`,
		},
		{
			name: "payload not hex",
			content: `
name: "bad", description: "x"
version: [6, 45]
handles: [{id: 1, name: "A"}]
objects: [{id: 1, handle: 1, payload: "zz"}]
`,
		},
		{
			name: "unknown field",
			content: `
name: "bad", description: "x"
version: [6, 45]
handles: []
extra: true
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, "bad.cue", tt.content))
			assert.ErrorContains(t, err, "schema violation")
		})
	}
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing name",
			content: "description: x\nversion: [6, 45]\nhandles: []\n",
			want:    "name is required",
		},
		{
			name:    "short version",
			content: "name: a\ndescription: x\nversion: [6]\nhandles: []\n",
			want:    "version must be",
		},
		{
			name:    "parent declared later",
			content: "name: a\ndescription: x\nversion: [6, 45]\nhandles: [{id: 2, name: B, parents: [1]}, {id: 1, name: A}]\n",
			want:    "parent 1 must be declared first",
		},
		{
			name:    "undeclared handle",
			content: "name: a\ndescription: x\nversion: [6, 45]\nhandles: []\nobjects: [{id: 1, handle: 4}]\n",
			want:    "undeclared handle 4",
		},
		{
			name:    "duplicate object",
			content: "name: a\ndescription: x\nversion: [6, 45]\nhandles: [{id: 1, name: A}]\nobjects: [{id: 1, handle: 1}, {id: 1, handle: 1}]\n",
			want:    "duplicate id 1",
		},
		{
			name:    "bad endian",
			content: "name: a\ndescription: x\nversion: [6, 45]\nendian: middle\nhandles: []\n",
			want:    "endian must be",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, "s.yaml", tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadScenario_UnsupportedExtension(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "s.json", "{}"))
	assert.ErrorContains(t, err, "unsupported scenario format")
}

func TestLoadScenarios_SortedByFileName(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"file_data", "legacy_stream", "root_child"}, names)
}
