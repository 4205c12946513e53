package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Error constants for better error handling
var (
	ErrFileNotFound = fmt.Errorf("filesystem: file not found")
	ErrInvalidPath  = fmt.Errorf("filesystem: invalid path")
)

// Filesystem is the read side of device storage the server streams files
// and templates from. Paths are slash separated and relative to the root.
type Filesystem interface {
	Open(path string) (io.ReadCloser, error)
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)

	FileExists(path string) (bool, error)
	FileSize(path string) (int64, error)
	IsFile(path string) (bool, error)
}

type localFileSystem struct {
	root string
}

// NewLocalFileSystem serves files below root. Paths can never climb out of
// root: "../x" resolves to "x".
func NewLocalFileSystem(root string) Filesystem {
	return &localFileSystem{root: root}
}

func (filesystem *localFileSystem) resolve(name string) (string, error) {
	if name == "" || strings.IndexByte(name, 0) >= 0 {
		return "", ErrInvalidPath
	}

	cleaned := path.Clean("/" + name)
	return filepath.Join(filesystem.root, filepath.FromSlash(cleaned)), nil
}

func (filesystem *localFileSystem) Open(name string) (io.ReadCloser, error) {
	fullPath, err := filesystem.resolve(name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return file, err
}

func (filesystem *localFileSystem) Stat(name string) (os.FileInfo, error) {
	fullPath, err := filesystem.resolve(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return info, err
}

func (filesystem *localFileSystem) ReadFile(name string) ([]byte, error) {
	fullPath, err := filesystem.resolve(name)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return content, err
}

func (filesystem *localFileSystem) FileExists(name string) (bool, error) {
	_, err := filesystem.Stat(name)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (filesystem *localFileSystem) FileSize(name string) (int64, error) {
	info, err := filesystem.Stat(name)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (filesystem *localFileSystem) IsFile(name string) (bool, error) {
	info, err := filesystem.Stat(name)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}
