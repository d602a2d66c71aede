package archive

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/intentbot/internal/ierrors"
)

func TestArchive_MovesAndRenames(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "intents_train.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"intents":[]}`), 0644))
	dest := filepath.Join(dir, "old", "nested")

	got, err := Archive(src, Name("2024-01-02_03-04-05", src), dest)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "2024-01-02_03-04-05_intents_train.json"), got)
	assert.NoFileExists(t, src)
	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, `{"intents":[]}`, string(data))
}

func TestArchive_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "old")
	require.NoError(t, os.MkdirAll(dest, 0755))
	existing := filepath.Join(dest, "s_intents.json")
	require.NoError(t, os.WriteFile(existing, []byte("first"), 0644))

	src := filepath.Join(dir, "intents.json")
	require.NoError(t, os.WriteFile(src, []byte("second"), 0644))

	got, err := Archive(src, "s_intents.json", dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "s_intents_1.json"), got)

	first, _ := os.ReadFile(existing)
	assert.Equal(t, "first", string(first))
	second, _ := os.ReadFile(got)
	assert.Equal(t, "second", string(second))
}

func TestArchive_SourceNotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := Archive(filepath.Join(dir, "missing.json"), "x.json", filepath.Join(dir, "old"))
	assert.ErrorIs(t, err, ierrors.ErrSourceNotFound)

	_, err = Archive(dir, "x.json", filepath.Join(dir, "old"))
	assert.ErrorIs(t, err, ierrors.ErrSourceNotFound)
}

func TestArchive_CrossDeviceFallback(t *testing.T) {
	orig := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { renameFunc = orig }()

	dir := t.TempDir()
	src := filepath.Join(dir, "intents.json")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0600))

	got, err := Archive(src, "a_intents.json", filepath.Join(dir, "old"))
	require.NoError(t, err)

	assert.NoFileExists(t, src)
	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestArchive_RenameFailureKeepsSource(t *testing.T) {
	orig := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EPERM}
	}
	defer func() { renameFunc = orig }()

	dir := t.TempDir()
	src := filepath.Join(dir, "intents.json")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0600))

	_, err := Archive(src, "a_intents.json", filepath.Join(dir, "old"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ierrors.ErrIOFailure)
	assert.ErrorIs(t, err, syscall.EPERM)

	assert.FileExists(t, src)
	assert.NoFileExists(t, filepath.Join(dir, "old", "a_intents.json"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "2024-01-02_03-04-05_intents.json", Name("2024-01-02_03-04-05", "/data/intents.json"))
}
