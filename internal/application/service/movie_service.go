package service

import (
	"context"
	"errors"
	"fmt"

	"go-catalog-live/internal/domain/catalog"
	"go-catalog-live/internal/infrastructure/logger"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type MovieService struct {
	movies   catalog.MovieRepository
	comments catalog.CommentRepository
	logger   logger.Logger
}

func NewMovieService(movies catalog.MovieRepository, comments catalog.CommentRepository, log logger.Logger) *MovieService {
	return &MovieService{
		movies:   movies,
		comments: comments,
		logger:   log.WithField("service", "movies"),
	}
}

func (s *MovieService) List(ctx context.Context) ([]catalog.Movie, error) {
	return s.movies.FindAll(ctx)
}

func (s *MovieService) ListPage(ctx context.Context, page catalog.Page) ([]catalog.Movie, error) {
	return s.movies.FindPage(ctx, normalizePage(page))
}

// Get returns the movie with the given hex id, optionally with its comments
// embedded. A missing movie is reported as catalog.ErrNotFound.
func (s *MovieService) Get(ctx context.Context, id string, withComments bool) (*catalog.Movie, error) {
	oid, err := catalog.ParseID(id)
	if err != nil {
		return nil, err
	}

	movie, err := s.movies.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, catalog.ErrNotFound
	}

	if withComments {
		comments, err := s.comments.FindByMovie(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("load comments of movie %s: %w", id, err)
		}
		movie.Comments = comments
	}
	return movie, nil
}

// FetchByTitle looks a movie up by exact title. No match is (nil, nil).
func (s *MovieService) FetchByTitle(ctx context.Context, title string) (*catalog.Movie, error) {
	return s.movies.FindByTitle(ctx, title)
}

func (s *MovieService) Create(ctx context.Context, movie catalog.Movie) (*catalog.Movie, error) {
	return s.movies.Insert(ctx, movie)
}

func (s *MovieService) Update(ctx context.Context, id string, update catalog.MovieUpdate) (*catalog.Movie, error) {
	oid, err := catalog.ParseID(id)
	if err != nil {
		return nil, err
	}

	movie, err := s.movies.Update(ctx, oid, update)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, catalog.ErrNotFound
	}
	return movie, nil
}

// Delete removes the movie and every comment attached to it and returns a
// human readable summary.
func (s *MovieService) Delete(ctx context.Context, id string) (string, error) {
	oid, err := catalog.ParseID(id)
	if err != nil {
		return "", err
	}

	if err := s.movies.Delete(ctx, oid); err != nil {
		return "", err
	}

	deleted, err := s.comments.DeleteByMovie(ctx, oid)
	if err != nil {
		return "", fmt.Errorf("movie %s deleted but its comments were not: %w", id, err)
	}

	message := "Movie deleted."
	if deleted > 0 {
		message += fmt.Sprintf(" Also deleted %d associated comment(s).", deleted)
	}
	s.logger.Infof("Deleted movie %s with %d comments", id, deleted)
	return message, nil
}

func normalizePage(p catalog.Page) catalog.Page {
	if p.Number < 1 {
		p.Number = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// IsClientError reports whether err stems from bad input or a missing
// document rather than an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrInvalidID)
}
