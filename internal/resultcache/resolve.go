package resultcache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kiranshivaraju/careercoach/internal/metrics"
)

type Outcome string

const (
	OutcomeHit    Outcome = "hit"
	OutcomeMiss   Outcome = "miss"
	OutcomeBypass Outcome = "bypass"
)

// Request identifies one analysis. Content is hashed byte for byte.
type Request struct {
	OwnerID      string
	Content      []byte
	ContextParam string
	Source       string
}

// ComputeFunc produces the payload on a miss. Its errors are returned unchanged.
type ComputeFunc func(ctx context.Context) ([]byte, error)

type Result struct {
	Payload json.RawMessage
	Outcome Outcome
	Key     Key
	// Entry is the stored or cached entry. Nil on bypass or when the store failed.
	Entry *Entry
}

type storeResult struct {
	entry *Entry
	err   error
}

// Resolve returns a cached payload when one exists, otherwise computes,
// stores and returns a fresh one.
//
// If the backend fails on lookup the request degrades to compute-only and
// nothing is stored. A failed store is logged and the computed payload is
// still returned. The store runs detached from ctx: if the caller goes away
// Resolve returns ctx.Err() but the entry is still written.
func (c *Cache) Resolve(ctx context.Context, req Request, compute ComputeFunc) (*Result, error) {
	key := ComputeKey(req.Content, req.ContextParam)
	log := c.logger.With("owner_id", req.OwnerID, "hash", key.Short(), "context", req.ContextParam)

	entry, found, err := c.Lookup(ctx, req.OwnerID, key, req.ContextParam)
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, ErrInvalidOwner):
		return nil, err
	case err != nil:
		log.Warn("result cache unavailable, analyzing without cache", "error", err)
		metrics.ResultCacheBypassTotal.Inc()

		payload, cerr := compute(ctx)
		if cerr != nil {
			return nil, cerr
		}
		return &Result{Payload: payload, Outcome: OutcomeBypass, Key: key}, nil
	case found:
		log.Debug("result cache hit", "entry_id", entry.ID)
		return &Result{Payload: entry.Payload, Outcome: OutcomeHit, Key: key, Entry: entry}, nil
	}

	payload, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	done := make(chan storeResult, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.storeTimeout)
		defer cancel()

		e, err := c.Store(storeCtx, req.OwnerID, key, req.ContextParam, payload, WithSource(req.Source))
		if err != nil {
			log.Warn("result cache store failed", "error", err)
		}
		done <- storeResult{entry: e, err: err}
	}()

	select {
	case r := <-done:
		return &Result{Payload: payload, Outcome: OutcomeMiss, Key: key, Entry: r.entry}, nil
	case <-ctx.Done():
		log.Info("caller cancelled, result cache store continues in background")
		return nil, ctx.Err()
	}
}
