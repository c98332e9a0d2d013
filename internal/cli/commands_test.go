package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoCommand(t *testing.T) {
	path, _ := writeContainer(t, t.TempDir())

	out, err := execute(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "BAM file version 6.30 (Little-endian, 32-bit)")
	assert.Contains(t, out, "Objects:   2")
	assert.Contains(t, out, "Handles:   2")
	assert.Contains(t, out, "File data: 1")
	assert.Contains(t, out, "Unknown:   Root, Child")
}

func TestInfoCommandJSON(t *testing.T) {
	path, _ := writeContainer(t, t.TempDir())

	out, err := execute(t, "--format", "json", "--interpret", "Root,Child", "info", path)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   InfoResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "6.30", resp.Data.Version)
	assert.Equal(t, 2, resp.Data.Objects)
	assert.Empty(t, resp.Data.UnknownHandles)
}

func TestInfoCommandMissingFile(t *testing.T) {
	out, err := execute(t, "info", filepath.Join(t.TempDir(), "missing.bam"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestInfoCommandBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bam")
	require.NoError(t, os.WriteFile(path, []byte("not a bam file"), 0o644))

	out, err := execute(t, "info", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
}

func TestDumpCommandText(t *testing.T) {
	path, _ := writeContainer(t, t.TempDir())

	out, err := execute(t, "--interpret", "Root", "dump", path)
	require.NoError(t, err)

	want := "Handles:\n1: Root\n2: Child <- 1\n\nObjects:\n1: Root\n2: data, Child (2 bytes)\n"
	assert.Equal(t, want, out)
}

func TestDumpCommandJSON(t *testing.T) {
	path, _ := writeContainer(t, t.TempDir())

	out, err := execute(t, "--format", "json", "dump", path)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Version string `json:"version"`
			Objects []struct {
				ID   uint32 `json:"id"`
				Type string `json:"type"`
			} `json:"objects"`
			FileData []struct {
				Size int `json:"size"`
			} `json:"file_data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "6.30", resp.Data.Version)
	require.Len(t, resp.Data.Objects, 2)
	assert.Equal(t, "Child", resp.Data.Objects[1].Type)
	require.Len(t, resp.Data.FileData, 1)
	assert.Equal(t, 2, resp.Data.FileData[0].Size)
}

func TestRoundtripCommandIdentical(t *testing.T) {
	dir := t.TempDir()
	path, data := writeContainer(t, dir)
	outPath := filepath.Join(dir, "out.bam")

	out, err := execute(t, "--interpret", "Root", "roundtrip", path, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "identical")

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestRoundtripCommandDiffers(t *testing.T) {
	dir := t.TempDir()
	_, data := writeContainer(t, dir)

	// Drop the trailing pop record; the writer puts it back.
	trimmed := data[:len(data)-5]
	path := filepath.Join(dir, "unbalanced.bam")
	require.NoError(t, os.WriteFile(path, trimmed, 0o644))

	out, err := execute(t, "--format", "json", "roundtrip", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Data RoundtripResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Identical)
	assert.Equal(t, len(trimmed), resp.Data.FirstDiff)
	assert.Equal(t, len(data), resp.Data.OutputBytes)
}

func TestFirstDiff(t *testing.T) {
	assert.Equal(t, -1, firstDiff([]byte("abc"), []byte("abc")))
	assert.Equal(t, 1, firstDiff([]byte("abc"), []byte("axc")))
	assert.Equal(t, 2, firstDiff([]byte("ab"), []byte("abc")))
	assert.Equal(t, -1, firstDiff(nil, nil))
}

func TestIndexAndObjectsCommands(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeContainer(t, dir)
	db := filepath.Join(dir, "index.db")

	out, err := execute(t, "--format", "json", "--interpret", "Root", "index", path, "--db", db)
	require.NoError(t, err)

	var indexed struct {
		Data []IndexedFile `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &indexed))
	require.Len(t, indexed.Data, 1)
	assert.Equal(t, 2, indexed.Data[0].Objects)
	fileID := indexed.Data[0].ID
	require.NotEmpty(t, fileID)

	out, err = execute(t, "objects", fileID, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "1: Root\n2: data, Child (2 bytes)\n", out)

	out, err = execute(t, "objects", fileID, "--db", db, "--type", "Child")
	require.NoError(t, err)
	assert.Equal(t, "2: data, Child (2 bytes)\n", out)

	out, err = execute(t, "objects", fileID, "--db", db, "--type", "Missing")
	require.NoError(t, err)
	assert.Contains(t, out, "No objects found.")
}

func TestObjectsCommandUnknownFile(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeContainer(t, dir)
	db := filepath.Join(dir, "index.db")

	_, err := execute(t, "index", path, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "objects", "no-such-id", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestIndexCommandRequiresDB(t *testing.T) {
	path, _ := writeContainer(t, t.TempDir())

	_, err := execute(t, "index", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	scenario := filepath.Join(dir, "root_child.yaml")
	require.NoError(t, os.WriteFile(scenario, []byte(rootChildScenario), 0o644))
	outPath := filepath.Join(dir, "built.bam")

	out, err := execute(t, "build", scenario, "-o", outPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Wrote "+outPath))

	_, want := writeContainer(t, dir)
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBuildCommandInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(scenario, []byte("name: broken\nbogus: 1\n"), 0o644))

	out, err := execute(t, "build", scenario, "-o", filepath.Join(dir, "out.bam"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
}

func TestIndexCommandReportsIdenticalContainers(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeContainer(t, dir)
	db := filepath.Join(dir, "index.db")

	out, err := execute(t, "--format", "json", "index", path, path, "--db", db)
	require.NoError(t, err)

	var indexed struct {
		Data []IndexedFile `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &indexed))
	require.Len(t, indexed.Data, 2)
	assert.Empty(t, indexed.Data[0].SameAs)
	assert.Equal(t, []string{indexed.Data[0].ID}, indexed.Data[1].SameAs)
}
