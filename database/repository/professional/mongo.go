package professionalRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenda/database/repository"
	"agenda/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const masterID = "master"

type mongoProfessionalRepo struct {
	coll   *mongo.Collection
	config *mongo.Collection
}

// NewMongoProfessionalRepo stores professionals in the "professionals"
// collection and the setup PIN in "config".
func NewMongoProfessionalRepo(db *mongo.Database) ProfessionalRepository {
	return &mongoProfessionalRepo{
		coll:   db.Collection("professionals"),
		config: db.Collection("config"),
	}
}

// EnsureIndexes creates the unique id index on the professionals collection.
func (r *mongoProfessionalRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_id"),
	})
	if err != nil {
		return fmt.Errorf("failed to create professional indexes: %w", err)
	}
	return nil
}

func (r *mongoProfessionalRepo) GetByID(ctx context.Context, id string) (*models.Professional, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Professional
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get professional %s: %w", id, err)
	}
	return &p, nil
}

func (r *mongoProfessionalRepo) List(ctx context.Context) ([]models.Professional, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	defer cursor.Close(ctx)

	var pros []models.Professional
	if err := cursor.All(ctx, &pros); err != nil {
		return nil, fmt.Errorf("failed to decode professionals: %w", err)
	}
	return pros, nil
}

func (r *mongoProfessionalRepo) Create(ctx context.Context, p *models.Professional) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create professional: %w", err)
	}
	return nil
}

func (r *mongoProfessionalRepo) Update(ctx context.Context, p *models.Professional) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("failed to update professional with id %s: %w", p.ID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProfessionalRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete professional with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProfessionalRepo) GetMaster(ctx context.Context) (*models.MasterConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var m models.MasterConfig
	err := r.config.FindOne(ctx, bson.M{"_id": masterID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get master config: %w", err)
	}
	return &m, nil
}

func (r *mongoProfessionalRepo) SaveMaster(ctx context.Context, m *models.MasterConfig) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.config.ReplaceOne(ctx, bson.M{"_id": masterID}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save master config: %w", err)
	}
	return nil
}
