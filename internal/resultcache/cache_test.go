package resultcache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fake backend ---

type memBackend struct {
	mu        sync.Mutex
	entries   []*Entry
	lookupErr error
	insertErr error
	// insertGate, when set, blocks InsertEntry until it is closed.
	insertGate chan struct{}

	lookups atomic.Int32
	inserts atomic.Int32
}

func (b *memBackend) LatestEntry(ctx context.Context, ownerID string, hash Key, contextParam string) (*Entry, error) {
	b.lookups.Add(1)
	if b.lookupErr != nil {
		return nil, b.lookupErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var matches []*Entry
	for _, e := range b.entries {
		if e.OwnerID == ownerID && e.Hash == hash && e.ContextParam == contextParam {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID.String() > matches[j].ID.String()
	})
	return matches[0], nil
}

func (b *memBackend) InsertEntry(ctx context.Context, e *Entry) error {
	if b.insertGate != nil {
		select {
		case <-b.insertGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	b.inserts.Add(1)
	if b.insertErr != nil {
		return b.insertErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
	return nil
}

func (b *memBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// --- counting analyzer ---

type countingAnalyzer struct {
	calls   atomic.Int32
	payload string
	err     error
}

func (a *countingAnalyzer) compute(_ context.Context) ([]byte, error) {
	a.calls.Add(1)
	if a.err != nil {
		return nil, a.err
	}
	return []byte(a.payload), nil
}

// --- tests ---

func TestComputeKey_Deterministic(t *testing.T) {
	content := []byte("Skilled in Python and React.")

	k1 := ComputeKey(content, "Backend Engineer")
	k2 := ComputeKey(content, "Backend Engineer")

	assert.Equal(t, k1, k2)
	assert.True(t, k1.Valid())
	// Fixed vector guards against accidental changes to the hashing scheme.
	assert.Equal(t, Key("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"), ComputeKey(nil, ""))
}

func TestComputeKey_Sensitivity(t *testing.T) {
	base := ComputeKey([]byte("Skilled in Python and React."), "Backend Engineer")

	tests := []struct {
		name    string
		content string
		ctx     string
	}{
		{"content single char changed", "Skilled in Python and React!", "Backend Engineer"},
		{"content case changed", "skilled in Python and React.", "Backend Engineer"},
		{"content trailing space", "Skilled in Python and React. ", "Backend Engineer"},
		{"context single char changed", "Skilled in Python and React.", "Backend Engineeer"},
		{"context differs", "Skilled in Python and React.", "Frontend Engineer"},
		{"context empty", "Skilled in Python and React.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, ComputeKey([]byte(tt.content), tt.ctx))
		})
	}
}

func TestLookup_MissIsNotAnError(t *testing.T) {
	c := New(&memBackend{})

	e, found, err := c.Lookup(context.Background(), "u1", ComputeKey([]byte("x"), "r"), "r")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, e)
}

func TestLookup_BackendFailureIsStoreUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	c := New(&memBackend{lookupErr: cause})

	_, found, err := c.Lookup(context.Background(), "u1", ComputeKey([]byte("x"), "r"), "r")
	require.Error(t, err)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "lookup", se.Op)
}

func TestLookup_RequiresOwner(t *testing.T) {
	b := &memBackend{}
	c := New(b)

	_, _, err := c.Lookup(context.Background(), "", ComputeKey([]byte("x"), "r"), "r")
	assert.ErrorIs(t, err, ErrInvalidOwner)
	assert.Equal(t, int32(0), b.lookups.Load())
}

func TestStore_ReadYourWrites(t *testing.T) {
	c := New(&memBackend{})
	ctx := context.Background()
	key := ComputeKey([]byte("resume"), "SRE")

	stored, err := c.Store(ctx, "u1", key, "SRE", []byte(`{"atsScore":80}`), WithSource("resume"))
	require.NoError(t, err)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.Equal(t, "resume", stored.Source)

	got, found, err := c.Lookup(ctx, "u1", key, "SRE")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, stored.ID, got.ID)
	assert.JSONEq(t, `{"atsScore":80}`, string(got.Payload))
}

func TestStore_RejectsInvalidJSON(t *testing.T) {
	b := &memBackend{}
	c := New(b)

	_, err := c.Store(context.Background(), "u1", ComputeKey([]byte("x"), "r"), "r", []byte("not json"))
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Equal(t, 0, b.count())
}

func TestStore_BackendFailure(t *testing.T) {
	c := New(&memBackend{insertErr: errors.New("disk full")})

	_, err := c.Store(context.Background(), "u1", ComputeKey([]byte("x"), "r"), "r", []byte(`{}`))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestLookup_OwnerIsolation(t *testing.T) {
	c := New(&memBackend{})
	ctx := context.Background()
	key := ComputeKey([]byte("same resume"), "SRE")

	_, err := c.Store(ctx, "ownerA", key, "SRE", []byte(`{"owner":"A"}`))
	require.NoError(t, err)

	_, found, err := c.Lookup(ctx, "ownerB", key, "SRE")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLookup_ContextIsolation(t *testing.T) {
	c := New(&memBackend{})
	ctx := context.Background()
	key := ComputeKey([]byte("same resume"), "roleA")

	_, err := c.Store(ctx, "u1", key, "roleA", []byte(`{"role":"A"}`))
	require.NoError(t, err)

	_, found, err := c.Lookup(ctx, "u1", key, "roleB")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLookup_LatestWins(t *testing.T) {
	// Frozen clock: the monotonic clock must still order the two entries.
	frozen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := New(&memBackend{}, WithClock(func() time.Time { return frozen }))
	ctx := context.Background()
	key := ComputeKey([]byte("resume"), "SRE")

	first, err := c.Store(ctx, "u1", key, "SRE", []byte(`{"v":1}`))
	require.NoError(t, err)
	second, err := c.Store(ctx, "u1", key, "SRE", []byte(`{"v":2}`))
	require.NoError(t, err)
	require.True(t, second.CreatedAt.After(first.CreatedAt))

	for i := 0; i < 3; i++ {
		got, found, err := c.Lookup(ctx, "u1", key, "SRE")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, second.ID, got.ID)
		assert.JSONEq(t, `{"v":2}`, string(got.Payload))
	}
}

func TestMonotonicClock_TruncatesAndIncreases(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC)
	clk := newMonotonicClock(func() time.Time { return ts })

	a := clk.Now()
	b := clk.Now()

	assert.Equal(t, ts.Truncate(time.Microsecond), a)
	assert.Equal(t, a.Add(time.Microsecond), b)
}

func TestResolve_HitAvoidsRecompute(t *testing.T) {
	c := New(&memBackend{})
	ctx := context.Background()
	key := ComputeKey([]byte("resume"), "SRE")
	_, err := c.Store(ctx, "u1", key, "SRE", []byte(`{"atsScore":90}`))
	require.NoError(t, err)

	an := &countingAnalyzer{payload: `{"atsScore":1}`}
	res, err := c.Resolve(ctx, Request{OwnerID: "u1", Content: []byte("resume"), ContextParam: "SRE"}, an.compute)
	require.NoError(t, err)

	assert.Equal(t, OutcomeHit, res.Outcome)
	assert.JSONEq(t, `{"atsScore":90}`, string(res.Payload))
	assert.Equal(t, int32(0), an.calls.Load())
}

func TestResolve_EndToEndScenario(t *testing.T) {
	b := &memBackend{}
	c := New(b)
	ctx := context.Background()
	an := &countingAnalyzer{payload: `{"atsScore":72,"extractedSkills":["Python","React"]}`}
	text := []byte("Skilled in Python and React.")

	// First call: miss, analyze once, store.
	res, err := c.Resolve(ctx, Request{OwnerID: "u1", Content: text, ContextParam: "Backend Engineer"}, an.compute)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMiss, res.Outcome)
	assert.Equal(t, int32(1), an.calls.Load())
	require.NotNil(t, res.Entry)
	assert.Equal(t, 1, b.count())

	// Second call: identical inputs hit.
	res2, err := c.Resolve(ctx, Request{OwnerID: "u1", Content: text, ContextParam: "Backend Engineer"}, an.compute)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHit, res2.Outcome)
	assert.Equal(t, int32(1), an.calls.Load())
	assert.JSONEq(t, string(res.Payload), string(res2.Payload))

	// Third call: different context misses again.
	res3, err := c.Resolve(ctx, Request{OwnerID: "u1", Content: text, ContextParam: "Frontend Engineer"}, an.compute)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMiss, res3.Outcome)
	assert.Equal(t, int32(2), an.calls.Load())
	assert.Equal(t, 2, b.count())
}

func TestResolve_OutageDegradesToCompute(t *testing.T) {
	b := &memBackend{lookupErr: errors.New("connection refused")}
	c := New(b)
	an := &countingAnalyzer{payload: `{"atsScore":55}`}

	res, err := c.Resolve(context.Background(),
		Request{OwnerID: "u1", Content: []byte("resume"), ContextParam: "SRE"}, an.compute)
	require.NoError(t, err)

	assert.Equal(t, OutcomeBypass, res.Outcome)
	assert.JSONEq(t, `{"atsScore":55}`, string(res.Payload))
	assert.Equal(t, int32(1), an.calls.Load())
	assert.Nil(t, res.Entry)
	assert.Equal(t, int32(0), b.inserts.Load(), "bypass must not attempt a store")
}

func TestResolve_StoreFailureStillReturnsResult(t *testing.T) {
	c := New(&memBackend{insertErr: errors.New("read-only replica")})
	an := &countingAnalyzer{payload: `{"atsScore":64}`}

	res, err := c.Resolve(context.Background(),
		Request{OwnerID: "u1", Content: []byte("resume"), ContextParam: "SRE"}, an.compute)
	require.NoError(t, err)

	assert.Equal(t, OutcomeMiss, res.Outcome)
	assert.Nil(t, res.Entry)
	assert.JSONEq(t, `{"atsScore":64}`, string(res.Payload))
}

func TestResolve_ComputeErrorPropagates(t *testing.T) {
	sentinel := errors.New("provider rejected credentials")
	b := &memBackend{}
	c := New(b)
	an := &countingAnalyzer{err: sentinel}

	_, err := c.Resolve(context.Background(),
		Request{OwnerID: "u1", Content: []byte("resume"), ContextParam: "SRE"}, an.compute)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 0, b.count())
}

func TestResolve_CancelledCallerStillStores(t *testing.T) {
	gate := make(chan struct{})
	b := &memBackend{insertGate: gate}
	c := New(b)
	an := &countingAnalyzer{payload: `{"atsScore":70}`}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Resolve(ctx, Request{OwnerID: "u1", Content: []byte("resume"), ContextParam: "SRE"}, an.compute)
		errCh <- err
	}()

	// Wait until the store is blocked on the gate, then abandon the request.
	require.Eventually(t, func() bool { return an.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(gate)
	require.NoError(t, c.Wait(context.Background()))

	_, found, err := c.Lookup(context.Background(), "u1", ComputeKey([]byte("resume"), "SRE"), "SRE")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestResolve_ConcurrentIdenticalRequestsReadConsistently(t *testing.T) {
	b := &memBackend{}
	c := New(b)
	an := &countingAnalyzer{payload: `{"atsScore":81}`}
	req := Request{OwnerID: "u1", Content: []byte("resume"), ContextParam: "SRE"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Resolve(context.Background(), req, an.compute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	first, found, err := c.Lookup(context.Background(), "u1", ComputeKey(req.Content, req.ContextParam), "SRE")
	require.NoError(t, err)
	require.True(t, found)
	for i := 0; i < 5; i++ {
		again, _, err := c.Lookup(context.Background(), "u1", ComputeKey(req.Content, req.ContextParam), "SRE")
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	}
}

func TestResolve_InvalidOwner(t *testing.T) {
	an := &countingAnalyzer{payload: `{}`}
	_, err := New(&memBackend{}).Resolve(context.Background(), Request{Content: []byte("x")}, an.compute)
	assert.ErrorIs(t, err, ErrInvalidOwner)
	assert.Equal(t, int32(0), an.calls.Load())
}

func TestWait_RespectsDeadline(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	c := New(&memBackend{insertGate: gate}, WithStoreTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_, _ = c.Resolve(ctx, Request{OwnerID: "u1", Content: []byte("x"), ContextParam: "r"},
			func(context.Context) ([]byte, error) { return []byte(`{}`), nil })
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer waitCancel()
	assert.ErrorIs(t, c.Wait(waitCtx), context.DeadlineExceeded)
}
