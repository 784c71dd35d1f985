package service

import (
	"context"
	"time"

	"go-catalog-live/internal/domain/catalog"
	"go-catalog-live/internal/infrastructure/hub"
	"go-catalog-live/internal/infrastructure/logger"
)

type CommentService struct {
	comments    catalog.CommentRepository
	broadcaster hub.Broadcaster
	logger      logger.Logger
	now         func() time.Time
}

func NewCommentService(comments catalog.CommentRepository, broadcaster hub.Broadcaster, log logger.Logger) *CommentService {
	return &CommentService{
		comments:    comments,
		broadcaster: broadcaster,
		logger:      log.WithField("service", "comments"),
		now:         time.Now,
	}
}

func (s *CommentService) List(ctx context.Context) ([]catalog.Comment, error) {
	return s.comments.FindAll(ctx)
}

func (s *CommentService) ListPage(ctx context.Context, page catalog.Page) ([]catalog.Comment, error) {
	return s.comments.FindPage(ctx, normalizePage(page))
}

func (s *CommentService) Get(ctx context.Context, id string) (*catalog.Comment, error) {
	oid, err := catalog.ParseID(id)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, catalog.ErrNotFound
	}
	return comment, nil
}

// Create stores the comment, stamped with the current time, and publishes it
// to subscribers of the comments topic.
func (s *CommentService) Create(ctx context.Context, comment catalog.Comment) (*catalog.Comment, error) {
	now := s.now()
	comment.Date = now.UTC()

	created, err := s.comments.Insert(ctx, comment)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, catalog.ErrNotFound
	}

	sent := s.broadcaster.Broadcast(hub.NewCommentEvent(created, now), hub.TopicComments)
	s.logger.Debugf("Comment %s published to %d clients", created.ID.Hex(), sent)

	return created, nil
}

func (s *CommentService) Update(ctx context.Context, id string, update catalog.CommentUpdate) (*catalog.Comment, error) {
	oid, err := catalog.ParseID(id)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.Update(ctx, oid, update)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, catalog.ErrNotFound
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, id string) (string, error) {
	oid, err := catalog.ParseID(id)
	if err != nil {
		return "", err
	}
	if err := s.comments.Delete(ctx, oid); err != nil {
		return "", err
	}
	return "Comment deleted successfully", nil
}
