package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/valuechain/pkg/errors"
)

// FileStore is a file-based document store for CLI applications.
// Documents are stored as <id>.json in a directory. Each file is a valid
// import document, so it can also be opened with the import command.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store in baseDir.
// If baseDir is empty, defaults to $XDG_DATA_HOME/valuechain/snapshots/
// (~/.local/share/valuechain/snapshots/ when XDG_DATA_HOME is unset).
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "create document dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDir returns the file backend's default directory.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "valuechain", "snapshots"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStoreUnavailable, err, "get home dir")
	}
	return filepath.Join(home, ".local", "share", "valuechain", "snapshots"), nil
}

func (s *FileStore) docPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	if err := errors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.docPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeDocumentNotFound, "document %q not found", id)
		}
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "read document file")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse document %q", id)
	}
	snap.ID = id
	return &snap, nil
}

// Save writes the snapshot to a temporary file and renames it into place,
// so a crash never leaves a truncated document behind.
func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := errors.ValidateDocumentID(snap.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal document")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, "."+snap.ID+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write document file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write document file")
	}
	if err := os.Rename(tmp.Name(), s.docPath(snap.ID)); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "replace document file")
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateDocumentID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.docPath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "remove document file")
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "read document dir")
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for document files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
