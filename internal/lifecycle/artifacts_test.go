package lifecycle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListArtifacts_NewestByModTime(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	files := map[string]time.Duration{
		"trained_model_2024-01-03_00-00-00.gob": -2 * time.Hour, // newest name, oldest mtime
		"trained_model_2024-01-01_00-00-00.gob": 0,
		"trained_model_2024-01-02_00-00-00.gob": -time.Hour,
		"notes.txt":                             time.Hour,
	}
	for name, age := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		require.NoError(t, os.Chtimes(path, now.Add(age), now.Add(age)))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.gob"), 0755))

	artifacts, err := ListArtifacts(dir)
	require.NoError(t, err)
	require.Len(t, artifacts, 3)
	assert.Equal(t, "trained_model_2024-01-01_00-00-00.gob", artifacts[0].Name)
	assert.Equal(t, "trained_model_2024-01-02_00-00-00.gob", artifacts[1].Name)
	assert.Equal(t, "trained_model_2024-01-03_00-00-00.gob", artifacts[2].Name)
	assert.Equal(t, int64(1), artifacts[0].Size)
}

func TestListArtifacts_TieBreaksOnName(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, name := range []string{artifactName("2024-01-01_00-00-00"), artifactName("2024-01-01_00-00-00_1")} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, nil, 0644))
		require.NoError(t, os.Chtimes(path, ts, ts))
	}

	artifacts, err := ListArtifacts(dir)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "trained_model_2024-01-01_00-00-00_1.gob", artifacts[0].Name)
}

func TestListArtifacts_MissingDir(t *testing.T) {
	artifacts, err := ListArtifacts(filepath.Join(t.TempDir(), "models"))
	assert.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "MERGE_AND_RETRAIN", StateMergeAndRetrain.String())
	assert.Equal(t, "READY", StateReady.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
	assert.Equal(t, "invalid", PendingInvalid.String())
}
