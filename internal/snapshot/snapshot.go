// Package snapshot copies an entity collection to and from object storage.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
)

// Prefix is the object key prefix all snapshots live under.
const Prefix = "snapshots"

// ObjectStore is the subset of storage.MinIOStorage snapshots need.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Source lists the records of an entity.
type Source interface {
	List(ctx context.Context, entity string) ([]inventory.Record, error)
}

// Key names the snapshot of entity taken at t.
func Key(entity string, t time.Time) string {
	return path.Join(Prefix, entity, t.UTC().Format("20060102T150405Z")+".json")
}

// Export writes the current collection of entity as one JSON array object
// and returns its key and the number of records written.
func Export(ctx context.Context, src Source, store ObjectStore, entity string, at time.Time) (string, int, error) {
	recs, err := src.List(ctx, entity)
	if err != nil {
		return "", 0, fmt.Errorf("list %s: %w", entity, err)
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("encode %s: %w", entity, err)
	}
	key := Key(entity, at)
	if err := store.UploadFile(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return "", 0, fmt.Errorf("upload %s: %w", key, err)
	}
	return key, len(recs), nil
}

// Latest returns the newest snapshot key of entity, or "" when none exists.
func Latest(ctx context.Context, store ObjectStore, entity string) (string, error) {
	keys, err := store.ListKeys(ctx, path.Join(Prefix, entity)+"/")
	if err != nil {
		return "", err
	}
	latest := ""
	for _, k := range keys {
		if strings.HasSuffix(k, ".json") && k > latest {
			latest = k
		}
	}
	return latest, nil
}

// Fetch downloads and decodes the snapshot stored at key.
func Fetch(ctx context.Context, store ObjectStore, key string) ([]inventory.Record, error) {
	rc, err := store.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return inventory.ParseRecords(data)
}
