package hub

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-catalog-live/internal/infrastructure/logger"
)

type fakeStream struct {
	mu       sync.Mutex
	frames   [][]byte
	opened   bool
	openErr  error
	writeErr error
	panicMsg string

	done      chan struct{}
	closeOnce sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{done: make(chan struct{})}
}

func (f *fakeStream) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = true
	return nil
}

func (f *fakeStream) Write(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	select {
	case <-f.done:
		return ErrStreamClosed
	default:
	}
	f.frames = append(f.frames, append([]byte(nil), frame...))
	return nil
}

func (f *fakeStream) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

func (f *fakeStream) Done() <-chan struct{} { return f.done }

func (f *fakeStream) isClosed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *fakeStream) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeStream) failWith(err error) {
	f.mu.Lock()
	f.writeErr = err
	f.mu.Unlock()
}

func (f *fakeStream) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]map[string]any, 0, len(f.frames))
	for _, frame := range f.frames {
		s := string(frame)
		require.True(t, strings.HasPrefix(s, "data: "), "frame %q", s)
		require.True(t, strings.HasSuffix(s, "\n\n"), "frame %q", s)

		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSuffix(strings.TrimPrefix(s, "data: "), "\n\n")), &ev))
		out = append(out, ev)
	}
	return out
}

func newTestHub() *Hub {
	return New(Config{FanoutLimit: 4}, logger.NewNop())
}

func addClient(t *testing.T, h *Hub, id string, topics ...string) *fakeStream {
	t.Helper()
	s := newFakeStream()
	require.NoError(t, h.AddClient(id, s, topics))
	return s
}

func TestHub_AddClientSendsConnectedEvent(t *testing.T) {
	h := newTestHub()

	s := addClient(t, h, "client-1")

	assert.True(t, s.opened)
	assert.Equal(t, 1, h.ActiveClientsCount())

	events := s.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, "connected", events[0]["type"])
	assert.Equal(t, "client-1", events[0]["clientId"])
	assert.Equal(t, "SSE connection established", events[0]["message"])

	topics, ok := h.Topics("client-1")
	require.True(t, ok)
	assert.Equal(t, []string{"all"}, topics)
}

func TestHub_AddClientOpenFailure(t *testing.T) {
	h := newTestHub()
	s := newFakeStream()
	s.openErr = errors.New("headers already written")

	err := h.AddClient("client-1", s, nil)
	require.Error(t, err)
	assert.Equal(t, 0, h.ActiveClientsCount())
}

func TestHub_AddRemoveChangesCountByOne(t *testing.T) {
	h := newTestHub()
	addClient(t, h, "a")

	before := h.ActiveClientsCount()
	s := addClient(t, h, "b")
	assert.Equal(t, before+1, h.ActiveClientsCount())

	h.RemoveClient("b")
	assert.Equal(t, before, h.ActiveClientsCount())
	assert.True(t, s.isClosed())
}

func TestHub_UnknownIDIsNoop(t *testing.T) {
	h := newTestHub()
	addClient(t, h, "known")

	assert.NotPanics(t, func() {
		h.SendToClient("ghost", map[string]string{"x": "y"})
		h.RemoveClient("ghost")
		h.SubscribeToTopic("ghost", "movies")
		h.UnsubscribeFromTopic("ghost", "movies")
	})
	assert.Equal(t, 1, h.ActiveClientsCount())

	_, ok := h.Topics("ghost")
	assert.False(t, ok)
}

func TestHub_SendToClient(t *testing.T) {
	h := newTestHub()
	a := addClient(t, h, "a")
	b := addClient(t, h, "b")

	h.SendToClient("a", map[string]string{"hello": "a"})

	require.Len(t, a.events(t), 2)
	assert.Equal(t, "a", a.events(t)[1]["hello"])
	assert.Equal(t, 1, b.count())
}

func TestHub_BroadcastFiltersByTopic(t *testing.T) {
	h := newTestHub()
	a := addClient(t, h, "a", "comments")
	b := addClient(t, h, "b", "movies")

	sent := h.Broadcast(map[string]string{"type": "x"}, "comments")

	assert.Equal(t, 1, sent)
	assert.Equal(t, 2, a.count())
	assert.Equal(t, 1, b.count())
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	h := newTestHub()
	c := addClient(t, h, "c", "all")

	sent := h.Broadcast(map[string]string{"type": "x"}, "movies")

	assert.Equal(t, 1, sent)
	assert.Equal(t, 2, c.count())
}

func TestHub_BroadcastDefaultsToAllTopic(t *testing.T) {
	h := newTestHub()
	a := addClient(t, h, "a", "comments")
	all := addClient(t, h, "all-client")

	sent := h.Broadcast("ping", "")

	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 2, all.count())
}

func TestHub_SubscribeAndUnsubscribe(t *testing.T) {
	h := newTestHub()
	s := addClient(t, h, "a", "comments")

	h.Broadcast("first", "movies")
	assert.Equal(t, 1, s.count())

	h.SubscribeToTopic("a", "movies")
	h.Broadcast("second", "movies")
	assert.Equal(t, 2, s.count())

	h.UnsubscribeFromTopic("a", "movies")
	h.Broadcast("third", "movies")
	assert.Equal(t, 2, s.count())
}

func TestHub_BroadcastIsolatesFailingClient(t *testing.T) {
	h := newTestHub()
	bad := addClient(t, h, "bad")
	panicky := addClient(t, h, "panicky")
	good := make([]*fakeStream, 0, 5)
	for _, id := range []string{"g1", "g2", "g3", "g4", "g5"} {
		good = append(good, addClient(t, h, id))
	}

	bad.failWith(errors.New("broken pipe"))
	panicky.mu.Lock()
	panicky.panicMsg = "write on hijacked connection"
	panicky.mu.Unlock()

	sent := h.Broadcast(map[string]string{"type": "x"}, "all")

	assert.Equal(t, len(good), sent)
	for _, s := range good {
		assert.Equal(t, 2, s.count())
	}
	assert.Equal(t, len(good), h.ActiveClientsCount())
	assert.True(t, bad.isClosed())
	assert.True(t, panicky.isClosed())
}

func TestHub_StreamDoneRemovesClient(t *testing.T) {
	h := newTestHub()
	s := addClient(t, h, "a")

	_ = s.Close()

	require.Eventually(t, func() bool {
		return h.ActiveClientsCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHub_DuplicateIDReplacesPreviousStream(t *testing.T) {
	h := newTestHub()
	old := addClient(t, h, "dup", "comments")
	replacement := addClient(t, h, "dup", "movies")

	assert.True(t, old.isClosed())
	assert.Equal(t, 1, h.ActiveClientsCount())

	// Give the old watcher time to run; it must not evict the replacement.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, h.ActiveClientsCount())

	h.Broadcast("x", "movies")
	assert.Equal(t, 2, replacement.count())
}

func TestHub_Stop(t *testing.T) {
	h := newTestHub()
	a := addClient(t, h, "a")
	b := addClient(t, h, "b")

	require.NoError(t, h.Stop(context.Background()))

	assert.Equal(t, 0, h.ActiveClientsCount())
	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())
}

func TestHub_ConcurrentAccess(t *testing.T) {
	h := newTestHub()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i))
			s := newFakeStream()
			_ = h.AddClient(id, s, []string{"comments"})
			h.SubscribeToTopic(id, "movies")
			h.Broadcast("x", "movies")
			h.UnsubscribeFromTopic(id, "movies")
			h.RemoveClient(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, h.ActiveClientsCount())
}
