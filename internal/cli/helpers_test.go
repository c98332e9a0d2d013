package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bamboo/internal/harness"
)

const rootChildScenario = `
name: root_child
description: Child derives from Root
version: [6, 30]
handles:
  - {id: 1, name: Root}
  - {id: 2, name: Child, parents: [1]}
objects:
  - {id: 1, handle: 1, payload: "2a000000"}
  - {id: 2, handle: 2, payload: "aabb"}
file_data: ["cafe"]
expect:
  objects: 2
  related:
    Root: [Root, Child]
  roundtrip: true
`

// writeContainer builds rootChildScenario and writes it to dir/scene.bam.
func writeContainer(t *testing.T, dir string) (string, []byte) {
	t.Helper()

	s, err := harness.ParseYAML([]byte(rootChildScenario))
	require.NoError(t, err)
	_, data, err := harness.Build(s)
	require.NoError(t, err)

	path := filepath.Join(dir, "scene.bam")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
