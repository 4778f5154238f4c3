package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mbodj/packhouse/internal/domain/models"
	"github.com/mbodj/packhouse/internal/repository"
)

// Store implements repository.Store on a local newline-delimited JSON file.
// One line per entry, appended with a single write so a row is either fully
// present or absent. Insertion order is file order.
type Store struct {
	path string

	mu      sync.Mutex
	nextSeq int64
}

// NewStore prepares the backing file's directory and counts existing rows so
// generated identifiers keep increasing across restarts.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", repository.ErrStorageUnavailable, err)
	}

	s := &Store{path: path, nextSeq: 1}

	entries, err := s.readAll()
	if err != nil {
		return nil, err
	}
	s.nextSeq = int64(len(entries)) + 1

	return s, nil
}

// Append writes the entry as one JSON line and returns it with its generated
// identifier.
func (s *Store) Append(_ context.Context, entry models.PackingLogEntry) (models.PackingLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = fmt.Sprintf("entry-%06d", s.nextSeq)

	line, err := json.Marshal(entry)
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("%w: encode entry: %v", repository.ErrStorageUnavailable, err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("%w: open %s: %v", repository.ErrStorageUnavailable, s.path, err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("%w: append to %s: %v", repository.ErrStorageUnavailable, s.path, err)
	}
	if err := f.Sync(); err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("%w: sync %s: %v", repository.ErrStorageUnavailable, s.path, err)
	}

	s.nextSeq++
	return entry, nil
}

// ReadAll returns every stored entry in file order. A missing file is an
// empty log, not an error.
func (s *Store) ReadAll(_ context.Context) ([]models.PackingLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *Store) readAll() ([]models.PackingLogEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.PackingLogEntry{}, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", repository.ErrStorageUnavailable, s.path, err)
	}
	defer f.Close()

	entries := make([]models.PackingLogEntry, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry models.PackingLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("%w: corrupt row in %s: %v", repository.ErrStorageUnavailable, s.path, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", repository.ErrStorageUnavailable, s.path, err)
	}

	return entries, nil
}

var _ repository.Store = (*Store)(nil)
