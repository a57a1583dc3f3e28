// Package resultcache memoizes expensive analyses by content hash.
//
// Entries are partitioned by owner and context, appended on every miss and
// never updated. When several entries match a lookup the newest one wins,
// so concurrent identical requests may both compute and both store without
// producing inconsistent reads.
package resultcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/careercoach/internal/metrics"
)

const defaultStoreTimeout = 10 * time.Second

// Entry is a persisted analysis result.
type Entry struct {
	ID           uuid.UUID       `json:"id"`
	OwnerID      string          `json:"-"`
	Hash         Key             `json:"hash"`
	ContextParam string          `json:"context"`
	Payload      json.RawMessage `json:"payload"`
	Source       string          `json:"source,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Backend is the persistence contract. LatestEntry returns (nil, nil) when
// nothing matches and must order by created_at DESC, id DESC.
type Backend interface {
	LatestEntry(ctx context.Context, ownerID string, hash Key, contextParam string) (*Entry, error)
	InsertEntry(ctx context.Context, e *Entry) error
}

// Cache is safe for concurrent use.
type Cache struct {
	backend      Backend
	clock        *monotonicClock
	storeTimeout time.Duration
	logger       *slog.Logger

	wg sync.WaitGroup
}

type Option func(*Cache)

// WithStoreTimeout bounds background stores that outlive their request.
func WithStoreTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.storeTimeout = d
		}
	}
}

// WithClock replaces the wall clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.clock = newMonotonicClock(now)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend:      backend,
		clock:        newMonotonicClock(nil),
		storeTimeout: defaultStoreTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the newest entry for (ownerID, key, contextParam).
// A miss is (nil, false, nil); backend failures are *StoreError.
func (c *Cache) Lookup(ctx context.Context, ownerID string, key Key, contextParam string) (*Entry, bool, error) {
	if ownerID == "" {
		return nil, false, ErrInvalidOwner
	}

	e, err := c.backend.LatestEntry(ctx, ownerID, key, contextParam)
	if err != nil {
		metrics.ResultCacheLookups.WithLabelValues("error").Inc()
		return nil, false, &StoreError{Op: "lookup", Err: err}
	}
	if e == nil {
		metrics.ResultCacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	}

	metrics.ResultCacheLookups.WithLabelValues("hit").Inc()
	return e, true, nil
}

type storeParams struct {
	source string
}

type StoreOption func(*storeParams)

// WithSource records a human-readable label for the analyzed input.
func WithSource(label string) StoreOption {
	return func(p *storeParams) {
		p.source = label
	}
}

// Store appends a new entry. It never checks for existing matches.
func (c *Cache) Store(ctx context.Context, ownerID string, key Key, contextParam string, payload []byte, opts ...StoreOption) (*Entry, error) {
	if ownerID == "" {
		return nil, ErrInvalidOwner
	}
	if !json.Valid(payload) {
		return nil, ErrInvalidPayload
	}

	var params storeParams
	for _, opt := range opts {
		opt(&params)
	}

	e := &Entry{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Hash:         key,
		ContextParam: contextParam,
		Payload:      append(json.RawMessage(nil), payload...),
		Source:       params.source,
		CreatedAt:    c.clock.Now(),
	}

	if err := c.backend.InsertEntry(ctx, e); err != nil {
		metrics.ResultCacheStores.WithLabelValues("error").Inc()
		return nil, &StoreError{Op: "store", Err: err}
	}

	metrics.ResultCacheStores.WithLabelValues("ok").Inc()
	return e, nil
}

// Wait blocks until every background store has finished or ctx is done.
func (c *Cache) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for result cache stores: %w", ctx.Err())
	}
}
