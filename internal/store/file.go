package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimezsa/jobradar/internal/models"
)

// File is a Memory store mirrored to a JSON array on disk after every write.
type File struct {
	*Memory
	path string
}

// OpenFile loads path, treating a missing or empty file as an empty store.
func OpenFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	postings, err := ReadPostingsAllowMissing(path)
	if err != nil {
		return nil, err
	}
	mem := NewMemory()
	mem.put(postings)
	return &File{Memory: mem, path: path}, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Upsert(_ context.Context, postings []models.Posting) (int, error) {
	if err := validate(postings); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(postings)
	if err := WritePostings(f.path, f.snapshot()); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return len(postings), nil
}

func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = nil
	f.items = map[string]models.Posting{}
	if err := WritePostings(f.path, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// ReadPostings reads a JSON array of postings from path.
func ReadPostings(path string) ([]models.Posting, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Posting{}, nil
	}

	var postings []models.Posting
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if postings == nil {
		return []models.Posting{}, nil
	}
	return postings, nil
}

// ReadPostingsAllowMissing treats a missing file as no postings.
func ReadPostingsAllowMissing(path string) ([]models.Posting, error) {
	postings, err := ReadPostings(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Posting{}, nil
		}
		return nil, err
	}
	return postings, nil
}

// WritePostings writes postings as pretty JSON, replacing path atomically.
func WritePostings(path string, postings []models.Posting) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if postings == nil {
		postings = []models.Posting{}
	}
	data, err := json.MarshalIndent(postings, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".postings-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
