// Package catalog holds the movie and comment documents and the ports the
// application layer uses to reach them.
package catalog

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
)

type Movie struct {
	ID        bson.ObjectID `json:"_id"                 bson:"_id,omitempty"`
	Title     string        `json:"title"               bson:"title"               binding:"required"`
	Plot      string        `json:"plot,omitempty"      bson:"plot,omitempty"`
	Genres    []string      `json:"genres,omitempty"    bson:"genres,omitempty"`
	Runtime   int           `json:"runtime,omitempty"   bson:"runtime,omitempty"`
	Cast      []string      `json:"cast,omitempty"      bson:"cast,omitempty"`
	Directors []string      `json:"directors,omitempty" bson:"directors,omitempty"`
	Year      int           `json:"year,omitempty"      bson:"year,omitempty"`
	Comments  []Comment     `json:"comments,omitempty"  bson:"-"`

	// Extra keeps every other document field (fullplot, imdb, tomatoes,
	// ...) so a movie is served whole. It is flattened into the JSON object.
	Extra bson.M `json:"-" bson:",inline"`
}

type Comment struct {
	ID      bson.ObjectID `json:"_id"      bson:"_id,omitempty"`
	Name    string        `json:"name"     bson:"name"     binding:"required"`
	Email   string        `json:"email"    bson:"email"    binding:"required,email"`
	MovieID bson.ObjectID `json:"movie_id" bson:"movie_id"`
	Text    string        `json:"text"     bson:"text"     binding:"required"`
	Date    time.Time     `json:"date"     bson:"date"`
}

// MovieUpdate carries the fields a PUT may change; nil means untouched.
type MovieUpdate struct {
	Title     *string  `json:"title,omitempty"     bson:"title,omitempty"`
	Plot      *string  `json:"plot,omitempty"      bson:"plot,omitempty"`
	Genres    []string `json:"genres,omitempty"    bson:"genres,omitempty"`
	Runtime   *int     `json:"runtime,omitempty"   bson:"runtime,omitempty"`
	Cast      []string `json:"cast,omitempty"      bson:"cast,omitempty"`
	Directors []string `json:"directors,omitempty" bson:"directors,omitempty"`
	Year      *int     `json:"year,omitempty"      bson:"year,omitempty"`
}

type CommentUpdate struct {
	Name  *string `json:"name,omitempty"  bson:"name,omitempty"`
	Email *string `json:"email,omitempty" bson:"email,omitempty"`
	Text  *string `json:"text,omitempty"  bson:"text,omitempty"`
}

func (u MovieUpdate) Empty() bool {
	return u.Title == nil && u.Plot == nil && u.Genres == nil && u.Runtime == nil &&
		u.Cast == nil && u.Directors == nil && u.Year == nil
}

func (u CommentUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Text == nil
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// Skip is the number of documents before the page. It saturates at
// math.MaxInt64 instead of overflowing.
func (p Page) Skip() int64 {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	n, l := int64(p.Number-1), int64(p.Limit)
	if n > math.MaxInt64/l {
		return math.MaxInt64
	}
	return n * l
}

// MovieRepository reads and writes movie documents. Find* methods return
// (nil, nil) when no document matches.
type MovieRepository interface {
	FindAll(ctx context.Context) ([]Movie, error)
	FindPage(ctx context.Context, page Page) ([]Movie, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*Movie, error)
	FindByTitle(ctx context.Context, title string) (*Movie, error)
	Insert(ctx context.Context, movie Movie) (*Movie, error)
	Update(ctx context.Context, id bson.ObjectID, update MovieUpdate) (*Movie, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// CommentRepository reads and writes comment documents.
type CommentRepository interface {
	FindAll(ctx context.Context) ([]Comment, error)
	FindPage(ctx context.Context, page Page) ([]Comment, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*Comment, error)
	FindByMovie(ctx context.Context, movieID bson.ObjectID) ([]Comment, error)
	Insert(ctx context.Context, comment Comment) (*Comment, error)
	Update(ctx context.Context, id bson.ObjectID, update CommentUpdate) (*Comment, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	DeleteByMovie(ctx context.Context, movieID bson.ObjectID) (int64, error)
}

// ParseID converts a hex string to an ObjectID.
func ParseID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, ErrInvalidID
	}
	return id, nil
}
