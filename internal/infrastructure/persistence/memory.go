package persistence

import (
	"context"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go-catalog-live/internal/domain/catalog"
)

// memoryStore keeps documents in insertion order.
type memoryStore[T any] struct {
	mu    sync.RWMutex
	order []bson.ObjectID
	docs  map[bson.ObjectID]T
}

func newMemoryStore[T any]() *memoryStore[T] {
	return &memoryStore[T]{docs: make(map[bson.ObjectID]T)}
}

func (m *memoryStore[T]) all(keep func(T) bool) []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		if doc := m.docs[id]; keep == nil || keep(doc) {
			out = append(out, doc)
		}
	}
	return out
}

func (m *memoryStore[T]) page(p catalog.Page) []T {
	docs := m.all(nil)
	start := int(min(p.Skip(), int64(len(docs))))
	end := start + min(max(p.Limit, 0), len(docs)-start)
	return docs[start:end]
}

func (m *memoryStore[T]) get(id bson.ObjectID) (*T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, false
	}
	return &doc, true
}

func (m *memoryStore[T]) put(id bson.ObjectID, doc T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[id]; !exists {
		m.order = append(m.order, id)
	}
	m.docs[id] = doc
}

func (m *memoryStore[T]) modify(id bson.ObjectID, fn func(*T)) (*T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, false
	}
	fn(&doc)
	m.docs[id] = doc
	return &doc, true
}

func (m *memoryStore[T]) remove(match func(bson.ObjectID, T) bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	m.order = slices.DeleteFunc(m.order, func(id bson.ObjectID) bool {
		if match(id, m.docs[id]) {
			delete(m.docs, id)
			n++
			return true
		}
		return false
	})
	return n
}

// MemoryMovieRepository is an in-process catalog.MovieRepository.
type MemoryMovieRepository struct {
	store *memoryStore[catalog.Movie]
}

var _ catalog.MovieRepository = (*MemoryMovieRepository)(nil)

func NewMemoryMovieRepository(seed ...catalog.Movie) *MemoryMovieRepository {
	r := &MemoryMovieRepository{store: newMemoryStore[catalog.Movie]()}
	for _, m := range seed {
		if m.ID.IsZero() {
			m.ID = bson.NewObjectID()
		}
		r.store.put(m.ID, m)
	}
	return r
}

func (r *MemoryMovieRepository) FindAll(context.Context) ([]catalog.Movie, error) {
	return r.store.all(nil), nil
}

func (r *MemoryMovieRepository) FindPage(_ context.Context, page catalog.Page) ([]catalog.Movie, error) {
	return r.store.page(page), nil
}

func (r *MemoryMovieRepository) FindByID(_ context.Context, id bson.ObjectID) (*catalog.Movie, error) {
	m, _ := r.store.get(id)
	return m, nil
}

func (r *MemoryMovieRepository) FindByTitle(_ context.Context, title string) (*catalog.Movie, error) {
	found := r.store.all(func(m catalog.Movie) bool { return m.Title == title })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *MemoryMovieRepository) Insert(_ context.Context, movie catalog.Movie) (*catalog.Movie, error) {
	movie.ID = bson.NewObjectID()
	movie.Comments = nil
	r.store.put(movie.ID, movie)
	return &movie, nil
}

func (r *MemoryMovieRepository) Update(_ context.Context, id bson.ObjectID, u catalog.MovieUpdate) (*catalog.Movie, error) {
	m, _ := r.store.modify(id, func(m *catalog.Movie) {
		if u.Title != nil {
			m.Title = *u.Title
		}
		if u.Plot != nil {
			m.Plot = *u.Plot
		}
		if u.Genres != nil {
			m.Genres = u.Genres
		}
		if u.Runtime != nil {
			m.Runtime = *u.Runtime
		}
		if u.Cast != nil {
			m.Cast = u.Cast
		}
		if u.Directors != nil {
			m.Directors = u.Directors
		}
		if u.Year != nil {
			m.Year = *u.Year
		}
	})
	return m, nil
}

func (r *MemoryMovieRepository) Delete(_ context.Context, id bson.ObjectID) error {
	if r.store.remove(func(docID bson.ObjectID, _ catalog.Movie) bool { return docID == id }) == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// MemoryCommentRepository is an in-process catalog.CommentRepository.
type MemoryCommentRepository struct {
	store *memoryStore[catalog.Comment]
}

var _ catalog.CommentRepository = (*MemoryCommentRepository)(nil)

func NewMemoryCommentRepository(seed ...catalog.Comment) *MemoryCommentRepository {
	r := &MemoryCommentRepository{store: newMemoryStore[catalog.Comment]()}
	for _, c := range seed {
		if c.ID.IsZero() {
			c.ID = bson.NewObjectID()
		}
		r.store.put(c.ID, c)
	}
	return r
}

func (r *MemoryCommentRepository) FindAll(context.Context) ([]catalog.Comment, error) {
	return r.store.all(nil), nil
}

func (r *MemoryCommentRepository) FindPage(_ context.Context, page catalog.Page) ([]catalog.Comment, error) {
	return r.store.page(page), nil
}

func (r *MemoryCommentRepository) FindByID(_ context.Context, id bson.ObjectID) (*catalog.Comment, error) {
	c, _ := r.store.get(id)
	return c, nil
}

func (r *MemoryCommentRepository) FindByMovie(_ context.Context, movieID bson.ObjectID) ([]catalog.Comment, error) {
	return r.store.all(func(c catalog.Comment) bool { return c.MovieID == movieID }), nil
}

func (r *MemoryCommentRepository) Insert(_ context.Context, comment catalog.Comment) (*catalog.Comment, error) {
	comment.ID = bson.NewObjectID()
	r.store.put(comment.ID, comment)
	return &comment, nil
}

func (r *MemoryCommentRepository) Update(_ context.Context, id bson.ObjectID, u catalog.CommentUpdate) (*catalog.Comment, error) {
	c, _ := r.store.modify(id, func(c *catalog.Comment) {
		if u.Name != nil {
			c.Name = *u.Name
		}
		if u.Email != nil {
			c.Email = *u.Email
		}
		if u.Text != nil {
			c.Text = *u.Text
		}
	})
	return c, nil
}

func (r *MemoryCommentRepository) Delete(_ context.Context, id bson.ObjectID) error {
	if r.store.remove(func(docID bson.ObjectID, _ catalog.Comment) bool { return docID == id }) == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *MemoryCommentRepository) DeleteByMovie(_ context.Context, movieID bson.ObjectID) (int64, error) {
	return r.store.remove(func(_ bson.ObjectID, c catalog.Comment) bool { return c.MovieID == movieID }), nil
}
