// Package storage keeps the raw statements users upload so they can be
// listed and imported again later, e.g. after merchant rules change.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a statement id is unknown for the user.
var ErrNotFound = errors.New("statement not found")

// Statement describes one archived upload
type Statement struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	SHA256    string    `json:"sha256"`
	Path      string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Archive stores uploaded statements per user.
type Archive interface {
	// Save copies r into the archive under the original filename.
	Save(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*Statement, error)

	// Open returns the statement content for streaming into the importer.
	Open(ctx context.Context, userID, id uuid.UUID) (io.ReadCloser, *Statement, error)

	// List returns the user's statements, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]*Statement, error)

	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// New opens a filesystem archive rooted at dir.
func New(dir string) (Archive, error) {
	return NewLocalArchive(dir)
}
