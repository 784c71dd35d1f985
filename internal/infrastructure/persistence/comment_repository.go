package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go-catalog-live/internal/domain/catalog"
)

const commentsCollection = "comments"

type CommentRepository struct {
	coll *mongo.Collection
}

var _ catalog.CommentRepository = (*CommentRepository)(nil)

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{coll: db.Collection(commentsCollection)}
}

func (r *CommentRepository) FindAll(ctx context.Context) ([]catalog.Comment, error) {
	return findMany[catalog.Comment](ctx, r.coll, bson.M{})
}

func (r *CommentRepository) FindPage(ctx context.Context, page catalog.Page) ([]catalog.Comment, error) {
	opts := options.Find().SetSkip(page.Skip()).SetLimit(int64(page.Limit))
	return findMany[catalog.Comment](ctx, r.coll, bson.M{}, opts)
}

func (r *CommentRepository) FindByID(ctx context.Context, id bson.ObjectID) (*catalog.Comment, error) {
	return findOne[catalog.Comment](ctx, r.coll, bson.M{"_id": id})
}

func (r *CommentRepository) FindByMovie(ctx context.Context, movieID bson.ObjectID) ([]catalog.Comment, error) {
	return findMany[catalog.Comment](ctx, r.coll, bson.M{"movie_id": movieID})
}

func (r *CommentRepository) Insert(ctx context.Context, comment catalog.Comment) (*catalog.Comment, error) {
	comment.ID = bson.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return r.FindByID(ctx, comment.ID)
}

func (r *CommentRepository) Update(ctx context.Context, id bson.ObjectID, update catalog.CommentUpdate) (*catalog.Comment, error) {
	if update.Empty() {
		// Mongo rejects an empty $set.
		return r.FindByID(ctx, id)
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return nil, fmt.Errorf("update comment %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *CommentRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete comment %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) DeleteByMovie(ctx context.Context, movieID bson.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"movie_id": movieID})
	if err != nil {
		return 0, fmt.Errorf("delete comments of movie %s: %w", movieID.Hex(), err)
	}
	return res.DeletedCount, nil
}
