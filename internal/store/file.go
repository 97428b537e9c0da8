package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Shivanand-hulikatti/eventspark/internal/codec"
	"github.com/Shivanand-hulikatti/eventspark/internal/logging"
)

// FileStore keeps each collection as a JSON array in <dir>/<collection>.json.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file backing a collection.
func (s *FileStore) Path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Load reads a collection file. Missing and blank files load as empty.
func (s *FileStore) Load(_ context.Context, collection string) ([]codec.Record, error) {
	path := s.Path(collection)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []codec.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []codec.Record{}, nil
	}

	var records []codec.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrCorrupt, path, err)
	}
	if records == nil {
		records = []codec.Record{}
	}
	return records, nil
}

// Save overwrites the collection file with records.
func (s *FileStore) Save(_ context.Context, collection string, records []codec.Record) error {
	if records == nil {
		records = []codec.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	path := s.Path(collection)
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return err
	}
	logging.Debugf("saved %d %s to %s", len(records), collection, path)
	return nil
}

// UpdateOne rewrites the collection file with one record changed. A corrupt
// file is reported rather than overwritten.
func (s *FileStore) UpdateOne(ctx context.Context, collection, id string, mutate func(codec.Record)) error {
	records, err := s.Load(ctx, collection)
	if err != nil {
		return err
	}
	if !updateFirst(records, id, mutate) {
		logging.Debugf("update %s: no record with id %s", collection, id)
	}
	return s.Save(ctx, collection, records)
}

// Close is a no-op; files are opened per call.
func (s *FileStore) Close() error { return nil }

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers see either the old or the new snapshot.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
