package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

type HTTPServer struct {
	handler http.Handler
	srv     *http.Server
	ready   chan struct{}
	addr    net.Addr

	// base is the parent of every request context. It outlives the run
	// context so Stop can drain in-flight requests.
	base       context.Context
	cancelBase context.CancelFunc
}

var _ Server = (*HTTPServer)(nil)

type Options struct {
	Addr        string
	ReadTimeout time.Duration
	IdleTimeout time.Duration
}

func NewHTTPServer(handler http.Handler, opts Options) *HTTPServer {
	base, cancel := context.WithCancel(context.Background())
	return &HTTPServer{
		handler:    handler,
		base:       base,
		cancelBase: cancel,
		ready:      make(chan struct{}),
		srv: &http.Server{
			Addr:        opts.Addr,
			Handler:     handler,
			ReadTimeout: opts.ReadTimeout,
			IdleTimeout: opts.IdleTimeout,
			// No WriteTimeout: SSE and WebSocket responses stay open
			// for the lifetime of the client.
		},
	}
}

// Start listens and serves until Stop is called. Request contexts are not
// derived from the Start context; only Stop cancels them.
func (h *HTTPServer) Start(context.Context) error {
	ln, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return err
	}
	h.addr = ln.Addr()
	h.srv.BaseContext = func(net.Listener) context.Context { return h.base }
	close(h.ready)

	if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr blocks until Start has bound the listener.
func (h *HTTPServer) Addr() net.Addr {
	<-h.ready
	return h.addr
}

// Stop drains in-flight requests, then cancels the contexts of whatever is
// still running, such as hijacked WebSocket connections.
func (h *HTTPServer) Stop(ctx context.Context) error {
	err := h.srv.Shutdown(ctx)
	h.cancelBase()
	return err
}
