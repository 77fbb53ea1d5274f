package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingManifestIsEmpty(t *testing.T) {
	entries, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppendThenLoad(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Append(dir, Entry{Path: "/docs/a.txt", ChunkCount: 2}))
	require.NoError(t, Append(dir, Entry{Path: "/docs/b.txt", ChunkCount: 1}))

	entries, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Path: "/docs/a.txt", ChunkCount: 2}, entries[0])
	assert.Equal(t, Entry{Path: "/docs/b.txt", ChunkCount: 1}, entries[1])
}

func TestAppend_CreatesStateDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, Entry{Path: "a.txt", ChunkCount: 1}))

	info, err := os.Stat(filepath.Join(dir, StateDirName))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAppend_RejectsNonPositiveCount(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, Append(dir, Entry{Path: "a.txt", ChunkCount: 0}))
	assert.Error(t, Append(dir, Entry{Path: "a.txt", ChunkCount: -1}))
}

func TestAppend_PathWithSpacesRoundTrips(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, Entry{Path: "/docs/meeting notes.txt", ChunkCount: 3}))

	entries, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/docs/meeting notes.txt", entries[0].Path)
	assert.Equal(t, 3, entries[0].ChunkCount)
}

func TestLoad_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, StateDirName), 0755))
	raw := "a.txt 2\n\nnot-a-record\nb.txt x\nc.txt 1\n"
	require.NoError(t, os.WriteFile(Path(dir), []byte(raw), 0644))

	entries, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Path)
	assert.Equal(t, "c.txt", entries[1].Path)
}

func TestIsIndexed(t *testing.T) {
	entries := []Entry{
		{Path: "a.txt", ChunkCount: 2},
		{Path: "b.txt", ChunkCount: 1},
	}

	assert.True(t, IsIndexed(entries, "a.txt"))
	assert.True(t, IsIndexed(entries, "b.txt"))
	assert.False(t, IsIndexed(entries, "c.txt"))
	assert.False(t, IsIndexed(nil, "a.txt"))
}

func TestTotalChunks(t *testing.T) {
	assert.EqualValues(t, 0, TotalChunks(nil))
	assert.EqualValues(t, 3, TotalChunks([]Entry{
		{Path: "a.txt", ChunkCount: 2},
		{Path: "b.txt", ChunkCount: 1},
	}))
}

func TestLocate(t *testing.T) {
	entries := []Entry{
		{Path: "a.txt", ChunkCount: 2},
		{Path: "b.txt", ChunkCount: 1},
	}

	entry, local, ok := Locate(entries, 0)
	require.True(t, ok)
	assert.Equal(t, "a.txt", entry.Path)
	assert.Equal(t, 0, local)

	entry, local, ok = Locate(entries, 1)
	require.True(t, ok)
	assert.Equal(t, "a.txt", entry.Path)
	assert.Equal(t, 1, local)

	entry, local, ok = Locate(entries, 2)
	require.True(t, ok)
	assert.Equal(t, "b.txt", entry.Path)
	assert.Equal(t, 0, local)

	_, _, ok = Locate(entries, 3)
	assert.False(t, ok)

	_, _, ok = Locate(entries, -1)
	assert.False(t, ok)

	_, _, ok = Locate(nil, 0)
	assert.False(t, ok)
}
