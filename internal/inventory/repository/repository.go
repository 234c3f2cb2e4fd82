package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrNoCollection = errors.New("collection does not exist")
	ErrDuplicateID  = errors.New("record id already exists")
)

// Backend persists the records of every entity. Records come back in
// insertion order. Implementations need not serialize writers themselves;
// the service runs all mutations of an entity on one goroutine.
type Backend interface {
	// List returns all records of entity. Backends that can tell an absent
	// collection from an empty one return ErrNoCollection.
	List(ctx context.Context, entity string) ([]inventory.Record, error)
	Get(ctx context.Context, entity, id string) (inventory.Record, error)
	Insert(ctx context.Context, entity string, rec inventory.Record) error
	Replace(ctx context.Context, entity, id string, rec inventory.Record) error
	Ping(ctx context.Context) error
	Close() error
}

func checkEntity(entity string) error {
	if entity == "" || strings.ContainsAny(entity, `/\.:`) {
		return fmt.Errorf("invalid entity name %q", entity)
	}
	return nil
}

func find(recs []inventory.Record, id string) int {
	for i, r := range recs {
		if r.ID() == id {
			return i
		}
	}
	return -1
}
