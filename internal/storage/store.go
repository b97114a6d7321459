// Package storage persists the serialized game as a single opaque blob.
package storage

import (
	"context"
	"errors"
)

// DefaultKey names the saved game in every backend.
const DefaultKey = "pixelpet_game_state"

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("no saved game")

// BlobStore keeps one blob under a fixed key.
type BlobStore interface {
	// Load returns the saved blob or ErrNotFound.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}
