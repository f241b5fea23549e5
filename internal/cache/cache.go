package cache

import (
	"context"
	"errors"
)

// NoteEntry is a cached note lookup. Found is false when the settings store has
// no override for the key and culture.
type NoteEntry struct {
	Note  string `json:"note"`
	Found bool   `json:"found"`
}

type NoteCache interface {
	Get(ctx context.Context, key, culture string) (*NoteEntry, error)
	Set(ctx context.Context, key, culture string, entry *NoteEntry) error
	Delete(ctx context.Context, key, culture string) error
}

var ErrCacheMiss = errors.New("cache miss")
