package hub

import (
	"context"
	"net/http"
	"sync"
)

// SSEStream implements Stream over an http.ResponseWriter.
type SSEStream struct {
	writer  http.ResponseWriter
	flusher http.Flusher

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

var _ Stream = (*SSEStream)(nil)

// NewSSEStream ties the stream's lifetime to ctx, normally the request
// context, so a client disconnect closes Done.
func NewSSEStream(ctx context.Context, w http.ResponseWriter) *SSEStream {
	sctx, cancel := context.WithCancel(ctx)
	flusher, _ := w.(http.Flusher)

	return &SSEStream{
		writer:  w,
		flusher: flusher,
		ctx:     sctx,
		cancel:  cancel,
	}
}

func (s *SSEStream) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.ctx.Err() != nil {
		return ErrStreamClosed
	}

	h := s.writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // nginx
	s.writer.WriteHeader(http.StatusOK)
	s.flush()
	return nil
}

func (s *SSEStream) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.ctx.Err() != nil {
		return ErrStreamClosed
	}

	if _, err := s.writer.Write(frame); err != nil {
		return err
	}
	s.flush()
	return nil
}

// Close waits for an in-flight Write, so the ResponseWriter is never touched
// after Close returns.
func (s *SSEStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	return nil
}

func (s *SSEStream) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *SSEStream) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
