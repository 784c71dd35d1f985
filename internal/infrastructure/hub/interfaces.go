package hub

import "errors"

var ErrStreamClosed = errors.New("stream is closed")

// Stream is the writable side of one long-lived push connection.
type Stream interface {
	// Open writes the stream preamble (status and headers).
	Open() error
	// Write sends one encoded frame and flushes it.
	Write(frame []byte) error
	// Close ends the stream. It is safe to call more than once.
	Close() error
	// Done is closed once the client goes away or Close is called.
	Done() <-chan struct{}
}

// Broadcaster is the publishing side of the Hub.
type Broadcaster interface {
	Broadcast(data any, topic string) int
}
