package fs

import (
	"errors"
	"fmt"
	"os"
)

type FileSystem interface {
	Open(path string) (*os.File, error)
	Create(path string, force bool) (*os.File, error)

	ReadFile(path string) ([]byte, error)
	WriteFile(path string, permission os.FileMode, contents []byte) error

	Exists(path string) (bool, error)
	Size(path string) (int64, error)
}

type LocalFileSystem struct{}

func NewLocalFileSystem() *LocalFileSystem {
	return &LocalFileSystem{}
}

// Opens a file for reading.
func (lfs *LocalFileSystem) Open(path string) (*os.File, error) {
	return os.Open(path)
}

// Creates a file for writing. Returns a non nil error if the file
// already exists and the force flag is false.
func (lfs *LocalFileSystem) Create(path string, force bool) (*os.File, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("file %s already exists", path)
		}
	}
	return os.Create(path)
}

// Reads file contents.
func (lfs *LocalFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Writes to a file.
func (lfs *LocalFileSystem) WriteFile(path string, permission os.FileMode, contents []byte) error {
	return os.WriteFile(path, contents, permission)
}

// Checks if a file exists or not.
func (lfs *LocalFileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Returns the size of a file in bytes.
func (lfs *LocalFileSystem) Size(path string) (int64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}
