package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
	"github.com/shariqkhan335/RFI-PROJ/internal/inventory/repository"
	"github.com/shariqkhan335/RFI-PROJ/pkg/logger"
	"github.com/shariqkhan335/RFI-PROJ/pkg/metrics"
)

var (
	ErrNotFound      = repository.ErrNotFound
	ErrReadOnly      = errors.New("entity is read-only")
	ErrUnknownEntity = errors.New("unknown entity")
	ErrClosed        = errors.New("record store closed")
)

// Service defines the record operations used by the handler layer.
type Service interface {
	List(ctx context.Context, entity string) ([]inventory.Record, error)
	Get(ctx context.Context, entity, id string) (inventory.Record, error)
	Create(ctx context.Context, entity string, candidate inventory.Record) (inventory.Record, error)
	Update(ctx context.Context, entity, id string, patch inventory.Record) (inventory.Record, error)
	Ping(ctx context.Context) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, used for ids and date stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store implements Service over a Backend. All mutations of one entity run
// on that entity's writer goroutine, in arrival order, so read-modify-write
// cycles never interleave. Concurrent List calls of one entity share a
// single backend read; a read that started before a write finished is never
// shared with callers arriving after it.
type Store struct {
	backend repository.Backend
	now     func() time.Time
	reads   singleflight.Group

	mu      sync.Mutex
	writers map[string]*writer
	gens    map[string]*atomic.Uint64
	quit    chan struct{}
	closed  bool
	wg      sync.WaitGroup
}

type writer struct {
	tasks  chan task
	gen    *atomic.Uint64 // bumped after every task
	lastID int64          // only touched by the writer goroutine
}

type task struct {
	ctx   context.Context
	fn    func(ctx context.Context, w *writer) (inventory.Record, error)
	reply chan result
}

type result struct {
	rec inventory.Record
	err error
}

// New returns a Store persisting through b. Call Close to stop the writers.
func New(b repository.Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		now:     time.Now,
		writers: make(map[string]*writer),
		gens:    make(map[string]*atomic.Uint64),
		quit:    make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) today() string { return s.now().UTC().Format(inventory.DateLayout) }

func (s *Store) writerFor(entity string) (*writer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	w, ok := s.writers[entity]
	if !ok {
		w = &writer{tasks: make(chan task), gen: s.genLocked(entity)}
		s.writers[entity] = w
		s.wg.Add(1)
		go s.run(w)
	}
	return w, nil
}

func (s *Store) genLocked(entity string) *atomic.Uint64 {
	g, ok := s.gens[entity]
	if !ok {
		g = new(atomic.Uint64)
		s.gens[entity] = g
	}
	return g
}

func (s *Store) generation(entity string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genLocked(entity).Load()
}

func (s *Store) run(w *writer) {
	defer s.wg.Done()
	for {
		select {
		case t := <-w.tasks:
			if err := t.ctx.Err(); err != nil {
				t.reply <- result{err: err}
				continue
			}
			rec, err := t.fn(t.ctx, w)
			w.gen.Add(1)
			t.reply <- result{rec: rec, err: err}
		case <-s.quit:
			return
		}
	}
}

// submit queues fn on the entity writer and waits for its result. Once the
// writer accepted the task the result is always awaited, so the caller
// learns whether the write happened.
func (s *Store) submit(ctx context.Context, entity string, fn func(context.Context, *writer) (inventory.Record, error)) (inventory.Record, error) {
	w, err := s.writerFor(entity)
	if err != nil {
		return nil, err
	}
	t := task{ctx: ctx, fn: fn, reply: make(chan result, 1)}
	select {
	case w.tasks <- t:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.quit:
		return nil, ErrClosed
	}
	res := <-t.reply
	return res.rec, res.err
}

func (s *Store) observe(entity, op string, err error) {
	res := "ok"
	var verr *inventory.ValidationError
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		res = "not_found"
	case errors.As(err, &verr), errors.Is(err, ErrReadOnly):
		res = "rejected"
	default:
		res = "error"
	}
	metrics.StoreOperations.WithLabelValues(entity, op, res).Inc()
}

func lookup(entity string, write bool) (inventory.Entity, error) {
	e, ok := inventory.Lookup(entity)
	if !ok {
		return e, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	if write && !e.Writable {
		return e, fmt.Errorf("%w: %s", ErrReadOnly, entity)
	}
	return e, nil
}

// List returns every record of entity. A collection that was never written
// reads as empty.
func (s *Store) List(ctx context.Context, entity string) ([]inventory.Record, error) {
	if _, err := lookup(entity, false); err != nil {
		return nil, err
	}
	key := entity + "@" + strconv.FormatUint(s.generation(entity), 10)
	v, err, _ := s.reads.Do(key, func() (interface{}, error) {
		recs, err := s.backend.List(context.WithoutCancel(ctx), entity)
		if errors.Is(err, repository.ErrNoCollection) {
			logger.Warnf("no stored %s collection, returning empty list", entity)
			return []inventory.Record{}, nil
		}
		return recs, err
	})
	s.observe(entity, "list", err)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	shared := v.([]inventory.Record)
	out := make([]inventory.Record, len(shared))
	copy(out, shared)
	return out, nil
}

// Get returns one record by id.
func (s *Store) Get(ctx context.Context, entity, id string) (inventory.Record, error) {
	if _, err := lookup(entity, false); err != nil {
		return nil, err
	}
	r, err := s.backend.Get(ctx, entity, id)
	s.observe(entity, "get", err)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", entity, id, err)
	}
	return r, nil
}

// nextID issues a millisecond timestamp id, bumped past the last id this
// writer issued and past any id already stored.
func (s *Store) nextID(ctx context.Context, entity string, w *writer) (string, error) {
	n := s.now().UnixMilli()
	if n <= w.lastID {
		n = w.lastID + 1
	}
	for {
		id := strconv.FormatInt(n, 10)
		_, err := s.backend.Get(ctx, entity, id)
		if errors.Is(err, repository.ErrNotFound) {
			w.lastID = n
			return id, nil
		}
		if err != nil {
			return "", err
		}
		n++
	}
}

// Create validates candidate, assigns id, createdDate and lastModified and
// appends it to the collection.
func (s *Store) Create(ctx context.Context, entity string, candidate inventory.Record) (inventory.Record, error) {
	rec, err := s.create(ctx, entity, candidate)
	s.observe(entity, "create", err)
	return rec, err
}

func (s *Store) create(ctx context.Context, entity string, candidate inventory.Record) (inventory.Record, error) {
	e, err := lookup(entity, true)
	if err != nil {
		return nil, err
	}
	if e.Validate != nil {
		if err := e.Validate(candidate); err != nil {
			return nil, err
		}
	}
	rec := candidate.Clone()
	return s.submit(ctx, entity, func(ctx context.Context, w *writer) (inventory.Record, error) {
		id, err := s.nextID(ctx, entity, w)
		if err != nil {
			return nil, fmt.Errorf("assign %s id: %w", entity, err)
		}
		today := s.today()
		rec.SetString(inventory.FieldID, id)
		rec.SetString(inventory.FieldCreatedDate, today)
		rec.SetString(inventory.FieldLastModified, today)
		if err := s.backend.Insert(ctx, entity, rec); err != nil {
			return nil, fmt.Errorf("insert %s/%s: %w", entity, id, err)
		}
		return rec.Clone(), nil
	})
}

// Update merges patch over the stored record id. The id and createdDate of
// the stored record always win; lastModified is refreshed.
func (s *Store) Update(ctx context.Context, entity, id string, patch inventory.Record) (inventory.Record, error) {
	rec, err := s.update(ctx, entity, id, patch)
	s.observe(entity, "update", err)
	return rec, err
}

func (s *Store) update(ctx context.Context, entity, id string, patch inventory.Record) (inventory.Record, error) {
	e, err := lookup(entity, true)
	if err != nil {
		return nil, err
	}
	patch = patch.Clone()
	return s.submit(ctx, entity, func(ctx context.Context, w *writer) (inventory.Record, error) {
		existing, err := s.backend.Get(ctx, entity, id)
		if err != nil {
			return nil, fmt.Errorf("get %s/%s: %w", entity, id, err)
		}
		merged := existing.Merge(patch)
		merged.SetString(inventory.FieldID, id)
		if cd, ok := existing[inventory.FieldCreatedDate]; ok {
			merged[inventory.FieldCreatedDate] = cd
		} else {
			delete(merged, inventory.FieldCreatedDate)
		}
		merged.SetString(inventory.FieldLastModified, s.today())
		if e.Validate != nil {
			if err := e.Validate(merged); err != nil {
				return nil, err
			}
		}
		if err := s.backend.Replace(ctx, entity, id, merged); err != nil {
			return nil, fmt.Errorf("replace %s/%s: %w", entity, id, err)
		}
		return merged.Clone(), nil
	})
}

// Import loads records as they are, keeping their ids. Records without an id
// get one; missing date stamps are filled in. Ids already stored are skipped.
// Writable entities validate every record first. It returns how many records
// were inserted.
func (s *Store) Import(ctx context.Context, entity string, recs []inventory.Record) (int, error) {
	e, err := lookup(entity, false)
	if err != nil {
		return 0, err
	}
	if e.Writable && e.Validate != nil {
		for i, r := range recs {
			if err := e.Validate(r); err != nil {
				return 0, fmt.Errorf("record %d: %w", i, err)
			}
		}
	}
	var inserted int
	_, err = s.submit(ctx, entity, func(ctx context.Context, w *writer) (inventory.Record, error) {
		today := s.today()
		for _, r := range recs {
			r = r.Clone()
			if r.ID() == "" {
				id, err := s.nextID(ctx, entity, w)
				if err != nil {
					return nil, err
				}
				r.SetString(inventory.FieldID, id)
			}
			if e.Writable {
				if _, ok := r[inventory.FieldCreatedDate]; !ok {
					r.SetString(inventory.FieldCreatedDate, today)
				}
				if _, ok := r[inventory.FieldLastModified]; !ok {
					r.SetString(inventory.FieldLastModified, today)
				}
			}
			err := s.backend.Insert(ctx, entity, r)
			if errors.Is(err, repository.ErrDuplicateID) {
				logger.Warnf("import %s: id %s already stored, skipped", entity, r.ID())
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("insert %s/%s: %w", entity, r.ID(), err)
			}
			inserted++
		}
		return nil, nil
	})
	s.observe(entity, "import", err)
	return inserted, err
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error { return s.backend.Ping(ctx) }

// Close stops the writers after their current task and closes the backend.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.quit)
	s.mu.Unlock()
	s.wg.Wait()
	return s.backend.Close()
}
