package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kiranshivaraju/careercoach/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	got  []events.Event
	err  error
	done chan struct{}
}

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	r.got = append(r.got, ev)
	r.mu.Unlock()
	close(r.done)
	return r.err
}

func (r *recorder) Close() error { return nil }

func TestNew_NoURLIsNoop(t *testing.T) {
	p, err := events.New("", "career_events")
	require.NoError(t, err)
	assert.IsType(t, events.Noop{}, p)
	assert.NoError(t, p.Publish(context.Background(), events.Event{Type: events.QuizCompleted}))
	assert.NoError(t, p.Close())
}

func TestNew_BadURL(t *testing.T) {
	_, err := events.New("amqp://127.0.0.1:1/", "career_events")
	assert.Error(t, err)
}

func TestPublishAsync_SurvivesCallerCancel(t *testing.T) {
	r := &recorder{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events.PublishAsync(ctx, r, events.Event{Type: events.JobApplied, OwnerID: "u1"})

	select {
	case <-r.done:
	case <-time.After(time.Second):
		t.Fatal("event was not published")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.got, 1)
	assert.Equal(t, "u1", r.got[0].OwnerID)
}

func TestPublishAsync_ErrorIsSwallowed(t *testing.T) {
	r := &recorder{done: make(chan struct{}), err: errors.New("broker down")}

	events.PublishAsync(context.Background(), r, events.Event{Type: events.RoadmapCreated})

	select {
	case <-r.done:
	case <-time.After(time.Second):
		t.Fatal("event was not attempted")
	}
}

func TestPublishAsync_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		events.PublishAsync(context.Background(), nil, events.Event{})
	})
}

type slowPublisher struct {
	release chan struct{}
	mu      sync.Mutex
	sent    int
	closed  bool
	// sentAtClose is the number of events written when Close was called.
	sentAtClose int
}

func (p *slowPublisher) Publish(context.Context, events.Event) error {
	<-p.release
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent++
	return nil
}

func (p *slowPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.sentAtClose = p.sent
	return nil
}

func TestDispatcher_CloseDrainsPendingEvents(t *testing.T) {
	inner := &slowPublisher{release: make(chan struct{})}
	d := events.NewDispatcher(inner)

	for range 3 {
		events.PublishAsync(context.Background(), d, events.Event{Type: events.QuizCompleted})
	}

	closed := make(chan error, 1)
	go func() { closed <- d.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while events were pending")
	case <-time.After(50 * time.Millisecond):
	}

	close(inner.release)
	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}

	inner.mu.Lock()
	defer inner.mu.Unlock()
	assert.True(t, inner.closed)
	assert.Equal(t, 3, inner.sentAtClose)
}

func TestDispatcher_WaitHonorsContext(t *testing.T) {
	inner := &slowPublisher{release: make(chan struct{})}
	defer close(inner.release)
	d := events.NewDispatcher(inner)
	require.NoError(t, d.Publish(context.Background(), events.Event{Type: events.JobApplied}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)
}

func TestDispatcher_WaitWithNothingPending(t *testing.T) {
	d := events.NewDispatcher(nil)
	assert.NoError(t, d.Wait(context.Background()))
	assert.NoError(t, d.Close())
}
