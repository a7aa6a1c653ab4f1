package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ckpt-go/internal/ckpt"
)

// restorePointsKey is the field of the shared project-state document that
// holds the restore-point ledger.
const restorePointsKey = "restore_points"

// FileStore persists restore points as one field of a larger shared JSON
// project-state document. Unrelated fields of the document are preserved on
// every rewrite. Mutations take an advisory lock file and write atomically
// (temp file + rename in the same directory).
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore over the given state document path. The
// document does not need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) List() ([]*ckpt.RestorePoint, error) {
	_, entries, err := s.read()
	return entries, err
}

func (s *FileStore) Get(id string) (*ckpt.RestorePoint, error) {
	_, entries, err := s.read()
	if err != nil {
		return nil, err
	}
	for _, rp := range entries {
		if rp.ID == id {
			return rp, nil
		}
	}
	return nil, nil
}

func (s *FileStore) Append(rp *ckpt.RestorePoint) error {
	lock, err := acquireLock(s.path)
	if err != nil {
		return err
	}
	defer lock.release()

	doc, entries, err := s.read()
	if err != nil {
		return err
	}
	return s.write(doc, append([]*ckpt.RestorePoint{rp}, entries...))
}

func (s *FileStore) Remove(id string) error {
	lock, err := acquireLock(s.path)
	if err != nil {
		return err
	}
	defer lock.release()

	doc, entries, err := s.read()
	if err != nil {
		return err
	}
	for i, rp := range entries {
		if rp.ID == id {
			return s.write(doc, append(entries[:i], entries[i+1:]...))
		}
	}
	return nil
}

// read loads the state document and decodes the restore-point field. A
// missing document yields an empty ledger; a corrupt one is an error.
func (s *FileStore) read() (map[string]json.RawMessage, []*ckpt.RestorePoint, error) {
	doc := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil, nil
		}
		return nil, nil, fmt.Errorf("reading state file: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("state file %s is corrupt: %w", s.path, err)
	}

	raw, ok := doc[restorePointsKey]
	if !ok {
		return doc, nil, nil
	}

	var entries []*ckpt.RestorePoint
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil, fmt.Errorf("restore point ledger in %s is corrupt: %w", s.path, err)
	}
	return doc, entries, nil
}

// write re-encodes the ledger into the document and replaces the state file
// atomically.
func (s *FileStore) write(doc map[string]json.RawMessage, entries []*ckpt.RestorePoint) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding restore points: %w", err)
	}
	doc[restorePointsKey] = raw

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-state-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

var _ ckpt.RestorePointStore = (*FileStore)(nil)
