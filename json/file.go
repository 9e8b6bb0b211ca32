package json

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/chatlib"
)

// Interface compliance check.
var _ chatlib.Persister = (*FileStore)(nil)

// FileStore persists the store state as a single JSON file named after the
// storage namespace.
type FileStore struct {
	Dir       string
	Namespace string
}

// NewFileStore returns a FileStore writing to dir under
// chatlib.DefaultNamespace.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, Namespace: chatlib.DefaultNamespace}
}

// Path returns the file the state is stored in.
func (f *FileStore) Path() string {
	ns := f.Namespace
	if ns == "" {
		ns = chatlib.DefaultNamespace
	}
	return filepath.Join(f.Dir, ns+".json")
}

// Save writes the state atomically, creating parent directories as needed.
func (f *FileStore) Save(_ context.Context, s chatlib.State) error {
	data, err := MarshalState(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	path := f.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads the state. A missing file yields the empty state.
func (f *FileStore) Load(_ context.Context) (chatlib.State, error) {
	data, err := os.ReadFile(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return chatlib.State{}, nil
	}
	if err != nil {
		return chatlib.State{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalState(data)
}
