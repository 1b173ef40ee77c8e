package fs

import (
	"bytes"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sideloadhq/depot/contracts"
)

// InMemoryFileSystem backs coordinator tests; it satisfies the same contracts
// as the disk implementation without touching the real filesystem.
type InMemoryFileSystem struct {
	mu    sync.Mutex
	files map[string]*file

	// ErrorOn fails the named operation ("create", "open", "stat", "delete")
	// for any path, simulating disk trouble.
	ErrorOn map[string]error
}

func NewInMemoryFileSystem() *InMemoryFileSystem {
	return &InMemoryFileSystem{
		files:   make(map[string]*file),
		ErrorOn: make(map[string]error),
	}
}

func (this *InMemoryFileSystem) Create(path string) (io.WriteCloser, error) {
	if err := this.ErrorOn["create"]; err != nil {
		return nil, err
	}
	this.mu.Lock()
	defer this.mu.Unlock()
	created := &file{path: path, mod: InMemoryModTime}
	this.files[path] = created
	return created, nil
}

func (this *InMemoryFileSystem) Open(path string) (io.ReadCloser, error) {
	if err := this.ErrorOn["open"]; err != nil {
		return nil, err
	}
	this.mu.Lock()
	defer this.mu.Unlock()
	target, found := this.files[path]
	if !found {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(target.contents)), nil
}

func (this *InMemoryFileSystem) Stat(path string) (contracts.FileInfo, error) {
	if err := this.ErrorOn["stat"]; err != nil {
		return nil, err
	}
	this.mu.Lock()
	defer this.mu.Unlock()
	target, found := this.files[path]
	if !found {
		return nil, os.ErrNotExist
	}
	return target, nil
}

func (this *InMemoryFileSystem) Delete(path string) error {
	if err := this.ErrorOn["delete"]; err != nil {
		return err
	}
	this.mu.Lock()
	defer this.mu.Unlock()
	delete(this.files, path)
	return nil
}

func (this *InMemoryFileSystem) ReadFile(path string) ([]byte, error) {
	this.mu.Lock()
	defer this.mu.Unlock()
	target, found := this.files[path]
	if !found {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), target.contents...), nil
}

func (this *InMemoryFileSystem) WriteFile(path string, content []byte) error {
	this.mu.Lock()
	defer this.mu.Unlock()
	this.files[path] = &file{path: path, contents: content, mod: InMemoryModTime}
	return nil
}

func (this *InMemoryFileSystem) Exists(path string) bool {
	this.mu.Lock()
	defer this.mu.Unlock()
	_, found := this.files[path]
	return found
}

func (this *InMemoryFileSystem) Paths() (paths []string) {
	this.mu.Lock()
	defer this.mu.Unlock()
	for path := range this.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

/////////////////////////////////////////////////

var InMemoryModTime = time.Now()

type file struct {
	path     string
	contents []byte
	mod      time.Time
}

func (this *file) Write(p []byte) (int, error) {
	this.contents = append(this.contents, p...)
	return len(p), nil
}

func (this *file) Close() error       { return nil }
func (this *file) Path() string       { return this.path }
func (this *file) Size() int64        { return int64(len(this.contents)) }
func (this *file) ModTime() time.Time { return this.mod }
