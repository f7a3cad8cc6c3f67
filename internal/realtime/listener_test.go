package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-marketplace/internal/domain/changes"
)

// chanFeed entrega los frames que el test empuja por frames.
type chanFeed struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func newChanFeed() *chanFeed {
	return &chanFeed{frames: make(chan []byte, 16), closed: make(chan struct{})}
}

func (f *chanFeed) Next(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.closed:
		return nil, errors.New("feed closed")
	case b := <-f.frames:
		return b, nil
	}
}

func (f *chanFeed) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

type fakeDialer struct {
	dials atomic.Int32
	feed  *chanFeed
	err   error
	gate  chan struct{} // si no es nil, Dial espera a que se cierre
}

func (d *fakeDialer) Dial(ctx context.Context, ownerID string) (Feed, error) {
	d.dials.Add(1)
	if d.gate != nil {
		<-d.gate
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.feed, nil
}

type eventSink struct {
	mu     sync.Mutex
	events []changes.Event
}

func (s *eventSink) add(ev changes.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *eventSink) snapshot() []changes.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]changes.Event(nil), s.events...)
}

func TestListener_SubscribeIsIdempotent(t *testing.T) {
	d := &fakeDialer{feed: newChanFeed()}
	l := NewListener(d, nil)
	defer l.Close()

	h1, err := l.Subscribe(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)
	h2, err := l.Subscribe(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Equal(t, int32(1), d.dials.Load())
	assert.Equal(t, Subscribed, l.State("user-1"))
}

func TestListener_SubscribeWhileConnectingReturnsSameHandle(t *testing.T) {
	d := &fakeDialer{feed: newChanFeed(), gate: make(chan struct{})}
	l := NewListener(d, nil)
	defer l.Close()

	first := make(chan Handle, 1)
	go func() {
		h, err := l.Subscribe(context.Background(), "user-1", nil, nil)
		assert.NoError(t, err)
		first <- h
	}()

	require.Eventually(t, func() bool { return l.State("user-1") == Subscribing }, time.Second, 5*time.Millisecond)

	h2, err := l.Subscribe(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)

	close(d.gate)
	h1 := <-first

	assert.Equal(t, h1, h2)
	assert.Equal(t, int32(1), d.dials.Load())
}

func TestListener_ForwardsDecodedEventsAndDropsMalformed(t *testing.T) {
	feed := newChanFeed()
	l := NewListener(&fakeDialer{feed: feed}, nil)
	defer l.Close()

	sink := &eventSink{}
	_, err := l.Subscribe(context.Background(), "user-1", sink.add, nil)
	require.NoError(t, err)

	feed.frames <- []byte(`{"eventType":"INSERT","new":{"id":"p1","name":"Rex"}}`)
	feed.frames <- []byte(`garbage`)
	feed.frames <- []byte(`{"eventType":"TRUNCATE"}`)
	feed.frames <- []byte(`{"eventType":"delete","old":{"id":"p1"}}`)

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 2 }, time.Second, 5*time.Millisecond)

	got := sink.snapshot()
	assert.Equal(t, changes.EventInsert, got[0].Type)
	assert.Equal(t, "p1", got[0].ID())
	assert.Equal(t, changes.EventDelete, got[1].Type)
}

func TestListener_UnsubscribeIsSafe(t *testing.T) {
	feed := newChanFeed()
	l := NewListener(&fakeDialer{feed: feed}, nil)
	defer l.Close()

	h, err := l.Subscribe(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)

	l.Unsubscribe(h)
	assert.Equal(t, Unsubscribed, l.State("user-1"))

	// Segunda vez, handle desconocido y handle cero: no-op.
	l.Unsubscribe(h)
	l.Unsubscribe(Handle{ID: "nope", OwnerID: "user-1"})
	l.Unsubscribe(Handle{})

	select {
	case <-feed.closed:
	case <-time.After(time.Second):
		t.Fatal("feed should be closed after unsubscribe")
	}
}

func TestListener_UnsubscribeStaleHandleKeepsNewSubscription(t *testing.T) {
	l := NewListener(&fakeDialer{feed: newChanFeed()}, nil)
	defer l.Close()

	old, err := l.Subscribe(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)
	l.Unsubscribe(old)

	l.dialer = &fakeDialer{feed: newChanFeed()}
	fresh, err := l.Subscribe(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)
	require.NotEqual(t, old.ID, fresh.ID)

	l.Unsubscribe(old)
	assert.Equal(t, Subscribed, l.State("user-1"))
}

func TestListener_DialFailureLeavesUnsubscribed(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	l := NewListener(d, nil)

	_, err := l.Subscribe(context.Background(), "user-1", nil, nil)
	require.Error(t, err)
	assert.Equal(t, Unsubscribed, l.State("user-1"))

	_, err = l.Subscribe(context.Background(), "  ", nil, nil)
	assert.ErrorIs(t, err, ErrOwnerRequired)
}

func TestListener_FeedClosedByServerResetsState(t *testing.T) {
	feed := newChanFeed()
	l := NewListener(&fakeDialer{feed: feed}, nil)
	defer l.Close()

	closed := make(chan error, 1)
	_, err := l.Subscribe(context.Background(), "user-1", nil, func(err error) { closed <- err })
	require.NoError(t, err)

	_ = feed.Close()
	select {
	case err := <-closed:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("onClosed was not called after the server closed the feed")
	}
	assert.Equal(t, Unsubscribed, l.State("user-1"))
}

func TestListener_UnsubscribeDoesNotReportClosure(t *testing.T) {
	feed := newChanFeed()
	l := NewListener(&fakeDialer{feed: feed}, nil)
	defer l.Close()

	var calls atomic.Int32
	h, err := l.Subscribe(context.Background(), "user-1", nil, func(error) { calls.Add(1) })
	require.NoError(t, err)

	l.Unsubscribe(h)
	select {
	case <-feed.closed:
	case <-time.After(time.Second):
		t.Fatal("feed should be closed after unsubscribe")
	}
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
