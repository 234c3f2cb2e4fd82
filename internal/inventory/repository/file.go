package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
)

// FileRepo stores each entity as one JSON array file, <dir>/<entity>.json.
// Every write rewrites the whole file through a temp file and a rename, so a
// reader sees either the old or the new array.
type FileRepo struct {
	fs  afero.Fs
	dir string
}

// NewFileRepo creates dir when missing.
func NewFileRepo(fs afero.Fs, dir string) (*FileRepo, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileRepo{fs: fs, dir: dir}, nil
}

// Path returns the file backing entity.
func (f *FileRepo) Path(entity string) string {
	return filepath.Join(f.dir, entity+".json")
}

func (f *FileRepo) load(entity string) ([]inventory.Record, error) {
	if err := checkEntity(entity); err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(f.fs, f.Path(entity))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoCollection
		}
		return nil, fmt.Errorf("read %s: %w", entity, err)
	}
	recs, err := inventory.ParseRecords(b)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path(entity), err)
	}
	return recs, nil
}

func (f *FileRepo) write(entity string, recs []inventory.Record) error {
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", entity, err)
	}
	path := f.Path(entity)
	tmp := path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", entity, err)
	}
	if err := f.fs.Rename(tmp, path); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", entity, err)
	}
	return nil
}

func (f *FileRepo) List(ctx context.Context, entity string) ([]inventory.Record, error) {
	return f.load(entity)
}

func (f *FileRepo) Get(ctx context.Context, entity, id string) (inventory.Record, error) {
	recs, err := f.load(entity)
	if errors.Is(err, ErrNoCollection) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if i := find(recs, id); i >= 0 {
		return recs[i], nil
	}
	return nil, ErrNotFound
}

func (f *FileRepo) Insert(ctx context.Context, entity string, rec inventory.Record) error {
	recs, err := f.load(entity)
	if err != nil && !errors.Is(err, ErrNoCollection) {
		return err
	}
	if find(recs, rec.ID()) >= 0 {
		return ErrDuplicateID
	}
	return f.write(entity, append(recs, rec))
}

func (f *FileRepo) Replace(ctx context.Context, entity, id string, rec inventory.Record) error {
	recs, err := f.load(entity)
	if errors.Is(err, ErrNoCollection) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	i := find(recs, id)
	if i < 0 {
		return ErrNotFound
	}
	recs[i] = rec
	return f.write(entity, recs)
}

// Ping checks the data directory is reachable.
func (f *FileRepo) Ping(ctx context.Context) error {
	if _, err := f.fs.Stat(f.dir); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	return nil
}

func (f *FileRepo) Close() error { return nil }
