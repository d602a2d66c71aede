package lifecycle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	artifactPrefix = "trained_model_"
	artifactExt    = ".gob"
)

// Artifact is a serialized classifier on disk
type Artifact struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// ListArtifacts returns the model artifacts in dir, newest first. File
// modification time decides recency; equal times fall back to the name. A
// missing directory holds no artifacts.
func ListArtifacts(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list models in %s: %w", dir, err)
	}

	var artifacts []Artifact
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), artifactExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(artifacts, func(i, j int) bool {
		if !artifacts[i].ModTime.Equal(artifacts[j].ModTime) {
			return artifacts[i].ModTime.After(artifacts[j].ModTime)
		}
		return artifacts[i].Name > artifacts[j].Name
	})

	return artifacts, nil
}

func artifactName(stamp string) string {
	return artifactPrefix + stamp + artifactExt
}
