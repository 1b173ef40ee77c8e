package shell

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sideloadhq/depot/contracts"
)

type DiskFileSystem struct{}

func NewDiskFileSystem() *DiskFileSystem {
	return &DiskFileSystem{}
}

func (this *DiskFileSystem) Stat(path string) (contracts.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return FileInfo{path: path, size: info.Size(), mod: info.ModTime()}, nil
}

func (this *DiskFileSystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (this *DiskFileSystem) Create(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func (this *DiskFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (this *DiskFileSystem) WriteFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

func (this *DiskFileSystem) Delete(path string) error {
	return os.Remove(path)
}

////////////////////////////////////////

type FileInfo struct {
	path string
	size int64
	mod  time.Time
}

func (this FileInfo) Path() string       { return this.path }
func (this FileInfo) Size() int64        { return this.size }
func (this FileInfo) ModTime() time.Time { return this.mod }
