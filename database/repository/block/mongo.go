package blockRepo

import (
	"context"
	"fmt"
	"time"

	"agenda/database/repository"
	"agenda/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type blockDoc struct {
	Key          string `bson:"_id"`
	models.Block `bson:",inline"`
}

type mongoBlockRepo struct {
	coll *mongo.Collection
}

func NewMongoBlockRepo(db *mongo.Database) BlockRepository {
	return &mongoBlockRepo{coll: db.Collection("blocks")}
}

// EnsureIndexes creates the necessary indexes on the blocks collection.
func (r *mongoBlockRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "professionalId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetName("professional_date_idx"),
	})
	if err != nil {
		return fmt.Errorf("failed to create block indexes: %w", err)
	}
	return nil
}

func (r *mongoBlockRepo) find(ctx context.Context, filter bson.M) ([]models.Block, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []blockDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Block, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Block)
	}
	return out, nil
}

func (r *mongoBlockRepo) ListByDate(ctx context.Context, professionalID, date string) ([]models.Block, error) {
	blocks, err := r.find(ctx, bson.M{"professionalId": professionalID, "date": date})
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks for %s: %w", date, err)
	}
	return blocks, nil
}

func (r *mongoBlockRepo) ListRange(ctx context.Context, professionalID string, rng repository.DateRange) ([]models.Block, error) {
	blocks, err := r.find(ctx, bson.M{
		"professionalId": professionalID,
		"date":           bson.M{"$gte": rng.From, "$lte": rng.To},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks %s..%s: %w", rng.From, rng.To, err)
	}
	return blocks, nil
}

// Put upserts on the composite key, so blocking twice leaves one document.
func (r *mongoBlockRepo) Put(ctx context.Context, b *models.Block) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b.ID = models.BlockID(b.Date, b.Time)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	key := repository.MongoKey(b.ProfessionalID, b.ID)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": key}, blockDoc{Key: key, Block: *b}, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put block %s: %w", b.ID, err)
	}
	return nil
}

func (r *mongoBlockRepo) Delete(ctx context.Context, professionalID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": repository.MongoKey(professionalID, id)}); err != nil {
		return fmt.Errorf("failed to delete block %s: %w", id, err)
	}
	return nil
}

func (r *mongoBlockRepo) DeleteByDate(ctx context.Context, professionalID, date string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"professionalId": professionalID, "date": date})
	if err != nil {
		return 0, fmt.Errorf("failed to delete blocks for %s: %w", date, err)
	}
	return int(res.DeletedCount), nil
}

func (r *mongoBlockRepo) DeleteAll(ctx context.Context, professionalID string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"professionalId": professionalID}); err != nil {
		return fmt.Errorf("failed to delete blocks of %s: %w", professionalID, err)
	}
	return nil
}

func (r *mongoBlockRepo) Watch(ctx context.Context, professionalID string, rng repository.DateRange, fn func([]models.Block, error)) (repository.Subscription, error) {
	changes, stop, streamErr, err := repository.WatchMongoKeys(ctx, r.coll, professionalID)
	if err != nil {
		return nil, fmt.Errorf("failed to watch blocks of %s: %w", professionalID, err)
	}
	load := func(ctx context.Context) ([]models.Block, error) {
		if err := streamErr(); err != nil {
			return nil, err
		}
		return r.ListRange(ctx, professionalID, rng)
	}
	return repository.WatchLoop(ctx, changes, load, fn, stop), nil
}
