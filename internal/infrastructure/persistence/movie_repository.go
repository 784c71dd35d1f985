package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go-catalog-live/internal/domain/catalog"
)

const moviesCollection = "movies"

type MovieRepository struct {
	coll *mongo.Collection
}

var _ catalog.MovieRepository = (*MovieRepository)(nil)

func NewMovieRepository(db *mongo.Database) *MovieRepository {
	return &MovieRepository{coll: db.Collection(moviesCollection)}
}

func (r *MovieRepository) FindAll(ctx context.Context) ([]catalog.Movie, error) {
	return findMany[catalog.Movie](ctx, r.coll, bson.M{})
}

func (r *MovieRepository) FindPage(ctx context.Context, page catalog.Page) ([]catalog.Movie, error) {
	opts := options.Find().SetSkip(page.Skip()).SetLimit(int64(page.Limit))
	return findMany[catalog.Movie](ctx, r.coll, bson.M{}, opts)
}

func (r *MovieRepository) FindByID(ctx context.Context, id bson.ObjectID) (*catalog.Movie, error) {
	return findOne[catalog.Movie](ctx, r.coll, bson.M{"_id": id})
}

func (r *MovieRepository) FindByTitle(ctx context.Context, title string) (*catalog.Movie, error) {
	return findOne[catalog.Movie](ctx, r.coll, bson.M{"title": title})
}

func (r *MovieRepository) Insert(ctx context.Context, movie catalog.Movie) (*catalog.Movie, error) {
	movie.ID = bson.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, movie); err != nil {
		return nil, fmt.Errorf("insert movie: %w", err)
	}
	return r.FindByID(ctx, movie.ID)
}

func (r *MovieRepository) Update(ctx context.Context, id bson.ObjectID, update catalog.MovieUpdate) (*catalog.Movie, error) {
	if update.Empty() {
		// Mongo rejects an empty $set.
		return r.FindByID(ctx, id)
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return nil, fmt.Errorf("update movie %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *MovieRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete movie %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one in %s: %w", coll.Name(), err)
	}
	return &doc, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}

	docs := make([]T, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return docs, nil
}
