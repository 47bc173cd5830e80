package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const metaDir = ".meta"

// sidecar is the on-disk metadata. Path stays out of API responses.
type sidecar struct {
	Statement
	Path string `json:"path"`
}

// LocalArchive implements Archive on the local filesystem. Each user gets a
// directory holding the statements plus a .meta directory of JSON sidecars.
type LocalArchive struct {
	basePath string
	now      func() time.Time
}

// NewLocalArchive creates the base directory if needed
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if basePath == "" {
		return nil, errors.New("archive directory is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalArchive{basePath: basePath, now: time.Now}, nil
}

// Save stores r and writes its metadata sidecar. A partially written file is
// removed on error.
func (a *LocalArchive) Save(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.New()

	userDir := a.userDir(userID)
	if err := os.MkdirAll(filepath.Join(userDir, metaDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create user directory: %w", err)
	}

	stored := fmt.Sprintf("%s_%s", id.String()[:8], sanitizeFilename(filename))
	path := filepath.Join(userDir, stored)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, h), r)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write statement: %w", err)
	}

	st := &Statement{
		ID:        id,
		Name:      filename,
		Size:      size,
		SHA256:    hex.EncodeToString(h.Sum(nil)),
		Path:      stored,
		CreatedAt: a.now().UTC(),
	}
	if err := a.writeMeta(userID, st); err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return st, nil
}

// Open returns the stored content
func (a *LocalArchive) Open(ctx context.Context, userID, id uuid.UUID) (io.ReadCloser, *Statement, error) {
	st, err := a.readMeta(userID, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(a.userDir(userID), st.Path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open statement: %w", err)
	}
	return f, st, nil
}

// List reads every sidecar of the user. Unreadable sidecars are skipped.
func (a *LocalArchive) List(ctx context.Context, userID uuid.UUID) ([]*Statement, error) {
	entries, err := os.ReadDir(filepath.Join(a.userDir(userID), metaDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*Statement{}, nil
		}
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}

	out := make([]*Statement, 0, len(entries))
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if entry.IsDir() || !ok {
			continue
		}
		id, err := uuid.Parse(name)
		if err != nil {
			continue
		}
		st, err := a.readMeta(userID, id)
		if err != nil {
			continue
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes the statement and its sidecar
func (a *LocalArchive) Delete(ctx context.Context, userID, id uuid.UUID) error {
	st, err := a.readMeta(userID, id)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(a.userDir(userID), st.Path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	if err := os.Remove(a.metaPath(userID, id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

func (a *LocalArchive) userDir(userID uuid.UUID) string {
	return filepath.Join(a.basePath, userID.String())
}

func (a *LocalArchive) metaPath(userID, id uuid.UUID) string {
	return filepath.Join(a.userDir(userID), metaDir, id.String()+".json")
}

func (a *LocalArchive) readMeta(userID, id uuid.UUID) (*Statement, error) {
	data, err := os.ReadFile(a.metaPath(userID, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	st := sc.Statement
	st.Path = sc.Path
	return &st, nil
}

func (a *LocalArchive) writeMeta(userID uuid.UUID, st *Statement) error {
	data, err := json.MarshalIndent(sidecar{Statement: *st, Path: st.Path}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(a.metaPath(userID, st.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// sanitizeFilename keeps stored names inside the user directory
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(strings.TrimSpace(name))
	if name == "" {
		return "statement"
	}
	return name
}
