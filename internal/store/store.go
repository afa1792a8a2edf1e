// Package store persists postings keyed by id.
//
// Every backend upserts by id (last write wins, the original position is
// kept) and enumerates postings in first-insertion order.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/jobradar/internal/models"
)

// ErrWrite wraps any failure to persist a batch.
var ErrWrite = errors.New("store write failed")

// Store is the persistence contract used by the pipeline.
type Store interface {
	Upsert(ctx context.Context, postings []models.Posting) (int, error)
	All(ctx context.Context) ([]models.Posting, error)
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	Path        string
	RedisURL    string
	RedisPrefix string
}

// Open builds the backend named by opts.Backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return OpenFile(opts.Path)
	case BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

func validate(postings []models.Posting) error {
	for i, posting := range postings {
		if strings.TrimSpace(posting.ID) == "" {
			return fmt.Errorf("%w: posting %d (%q) has no id", ErrWrite, i, posting.Title)
		}
	}
	return nil
}
