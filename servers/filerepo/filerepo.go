// Package filerepo stores the server registry document as a JSON file,
// written atomically and guarded by a file lock against concurrent writers.
package filerepo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/udap-tools/udap-client-app/servers"
)

var _ servers.Store = (*FileStore)(nil)

type FileStore struct {
	path string
	lock *flock.Flock
}

func New(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Read loads the registry document. A missing file is not an error; anything
// else (unreadable, corrupt JSON) is reported as servers.ErrStorage.
func (s *FileStore) Read() (*servers.Document, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("[Read] %s: %w: %w", s.path, servers.ErrStorage, err)
	}

	var doc servers.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("[Read] %s: %w: %w", s.path, servers.ErrStorage, err)
	}
	return &doc, true, nil
}

// Write replaces the document using a temp file and rename so a crash cannot
// leave a half-written registry behind.
func (s *FileStore) Write(doc *servers.Document) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("[Write] locking %s: %w: %w", s.path, servers.ErrStorage, err)
	}
	defer s.lock.Unlock() //nolint:errcheck

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("[Write] %s: %w: %w", s.path, servers.ErrStorage, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("[Write] encoding registry: %w: %w", servers.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("[Write] %s: %w: %w", s.path, servers.ErrStorage, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("[Write] %s: %w: %w", tmpName, servers.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("[Write] %s: %w: %w", tmpName, servers.ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("[Write] renaming to %s: %w: %w", s.path, servers.ErrStorage, err)
	}
	return nil
}
