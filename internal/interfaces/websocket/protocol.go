package websocket

import (
	"context"
	"errors"
	"strings"

	"github.com/goccy/go-json"

	"go-catalog-live/internal/domain/catalog"
)

// Message types.
const (
	TypeConnected       = "connected"
	TypeGetMovieDetails = "getMovieDetails"
	TypeMovieDetails    = "movieDetails"
	TypeError           = "error"
)

// Error strings sent to clients.
const (
	ErrInvalidFormat = "Invalid message format"
	ErrUnknownType   = "Unknown message type"
	ErrMovieNotFound = "Movie not found"
	ErrFetchFailed   = "Failed to fetch movie details"
)

// Request is one inbound message. Fields are read loosely: any JSON value is
// a valid frame, and a missing or non-string field reads as empty.
type Request struct {
	Type      string
	MovieName string
}

// parseRequest reports false only when raw is not JSON or is JSON null.
func parseRequest(raw []byte) (Request, bool) {
	var msg any
	if err := json.Unmarshal(raw, &msg); err != nil || msg == nil {
		return Request{}, false
	}

	fields, _ := msg.(map[string]any)
	typ, _ := fields["type"].(string)
	name, _ := fields["movieName"].(string)
	return Request{Type: typ, MovieName: name}, true
}

// Response is the single reply to a Request.
type Response struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MovieFinder looks a movie up by exact title and returns (nil, nil) when
// nothing matches.
type MovieFinder interface {
	FetchByTitle(ctx context.Context, title string) (*catalog.Movie, error)
}

func welcomeResponse() Response {
	return Response{Type: TypeConnected, Message: "WebSocket connected"}
}

func errorResponse(msg string) Response {
	return Response{Type: TypeError, Error: msg}
}

// handle decodes raw and produces the reply for it.
func (s *Service) handle(ctx context.Context, raw []byte) Response {
	req, ok := parseRequest(raw)
	if !ok {
		s.logger.Warnf("Invalid message: %.64q", raw)
		return errorResponse(ErrInvalidFormat)
	}

	switch req.Type {
	case TypeGetMovieDetails:
		return s.movieDetails(ctx, req.MovieName)
	default:
		return errorResponse(ErrUnknownType)
	}
}

func (s *Service) movieDetails(ctx context.Context, title string) Response {
	if strings.TrimSpace(title) == "" {
		return errorResponse(ErrMovieNotFound)
	}

	lctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	movie, err := s.finder.FetchByTitle(lctx, title)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Errorf("Error fetching movie %q: %v", title, err)
		}
		return errorResponse(ErrFetchFailed)
	}
	if movie == nil {
		return errorResponse(ErrMovieNotFound)
	}

	return Response{Type: TypeMovieDetails, Data: movie}
}
