package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ppiankov/intentbot/internal/ierrors"
)

// Load reads a corpus from a JSON file
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ierrors.New(ierrors.KindNotFound, "load corpus", path, err)
		}
		return nil, ierrors.New(ierrors.KindIOFailure, "load corpus", path, err)
	}

	return Decode(data, path)
}

// Decode parses corpus JSON; path is only used for error context
func Decode(data []byte, path string) (*Corpus, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ierrors.Newf(ierrors.KindMalformedData, "decode corpus", path, "content is not a JSON object")
	}

	var c Corpus
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, ierrors.New(ierrors.KindMalformedData, "decode corpus", path, err)
	}

	return &c, nil
}

// Save writes the corpus with 4-space indentation and unescaped UTF-8. The file
// is written to a temp file next to path and renamed into place.
func Save(c *Corpus, path string) (err error) {
	if c == nil {
		return ierrors.Newf(ierrors.KindSerializationError, "save corpus", path, "nil corpus")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return ierrors.New(ierrors.KindSerializationError, "save corpus", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return writeError(path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return writeError(path, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return writeError(path, err)
	}
	if err = tmp.Close(); err != nil {
		return writeError(path, err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return writeError(path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return writeError(path, err)
	}

	return nil
}

func writeError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return ierrors.New(ierrors.KindPermissionDenied, "save corpus", path, err)
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return ierrors.New(ierrors.KindPathInvalid, "save corpus", path, err)
	default:
		return ierrors.New(ierrors.KindIOFailure, "save corpus", path, fmt.Errorf("write: %w", err))
	}
}
