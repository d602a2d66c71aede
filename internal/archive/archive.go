// Package archive moves superseded corpus and training files out of the way.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ppiankov/intentbot/internal/ierrors"
	"github.com/ppiankov/intentbot/internal/util"
)

// renameFunc is os.Rename (injectable for tests)
var renameFunc = os.Rename

// Archive moves sourcePath to destDir/newName, creating destDir if needed.
// An existing file at the destination is never replaced: the name gets a
// numeric suffix instead. Returns the final destination path.
func Archive(sourcePath, newName, destDir string) (string, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ierrors.New(ierrors.KindSourceNotFound, "archive", sourcePath, err)
		}
		return "", ierrors.New(ierrors.KindIOFailure, "archive", sourcePath, err)
	}
	if info.IsDir() {
		return "", ierrors.Newf(ierrors.KindSourceNotFound, "archive", sourcePath, "source is a directory")
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", ierrors.New(ierrors.KindIOFailure, "archive", destDir, fmt.Errorf("create archive dir: %w", err))
	}

	dest, err := util.UniquePath(destDir, newName)
	if err != nil {
		return "", ierrors.New(ierrors.KindIOFailure, "archive", destDir, err)
	}

	if err := renameFunc(sourcePath, dest); err != nil {
		// Rename cannot cross filesystems; copy then remove
		if !errors.Is(err, syscall.EXDEV) {
			return "", ierrors.New(ierrors.KindIOFailure, "archive", sourcePath, err)
		}
		if err := copyFile(sourcePath, dest, info.Mode().Perm()); err != nil {
			return "", ierrors.New(ierrors.KindIOFailure, "archive", sourcePath, fmt.Errorf("copy to %s: %w", dest, err))
		}
		if err := os.Remove(sourcePath); err != nil {
			return "", ierrors.New(ierrors.KindIOFailure, "archive", sourcePath, fmt.Errorf("remove after copy: %w", err))
		}
	}

	return dest, nil
}

// Name builds the archived file name for a stamp: <stamp>_<original base name>
func Name(stamp, sourcePath string) string {
	return stamp + "_" + filepath.Base(sourcePath)
}

func copyFile(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// O_EXCL: never clobber a file that appeared after UniquePath chose the name
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
