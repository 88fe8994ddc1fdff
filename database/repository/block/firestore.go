package blockRepo

import (
	"context"
	"fmt"
	"time"

	"agenda/database/repository"
	"agenda/models"

	"cloud.google.com/go/firestore"
)

type firestoreBlockRepo struct {
	client *firestore.Client
}

// NewFirestoreBlockRepo stores blocks at professionals/{id}/blocks/{date}_{time}.
func NewFirestoreBlockRepo(client *firestore.Client) BlockRepository {
	return &firestoreBlockRepo{client: client}
}

func (r *firestoreBlockRepo) blocks(professionalID string) *firestore.CollectionRef {
	return r.client.Collection("professionals").Doc(professionalID).Collection("blocks")
}

func (r *firestoreBlockRepo) rangeQuery(professionalID string, rng repository.DateRange) firestore.Query {
	return r.blocks(professionalID).Where("date", ">=", rng.From).Where("date", "<=", rng.To)
}

func decodeBlocks(professionalID string, docs []*firestore.DocumentSnapshot) ([]models.Block, error) {
	out := make([]models.Block, 0, len(docs))
	for _, d := range docs {
		var b models.Block
		if err := d.DataTo(&b); err != nil {
			return nil, fmt.Errorf("failed to decode block %s: %w", d.Ref.ID, err)
		}
		b.ID = d.Ref.ID
		if b.ProfessionalID == "" {
			b.ProfessionalID = professionalID
		}
		out = append(out, b)
	}
	sortBlocks(out)
	return out, nil
}

func (r *firestoreBlockRepo) ListByDate(ctx context.Context, professionalID, date string) ([]models.Block, error) {
	docs, err := r.blocks(professionalID).Where("date", "==", date).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks for %s: %w", date, err)
	}
	return decodeBlocks(professionalID, docs)
}

func (r *firestoreBlockRepo) ListRange(ctx context.Context, professionalID string, rng repository.DateRange) ([]models.Block, error) {
	docs, err := r.rangeQuery(professionalID, rng).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks %s..%s: %w", rng.From, rng.To, err)
	}
	return decodeBlocks(professionalID, docs)
}

// Put is a Set on the composite id: blocking twice overwrites.
func (r *firestoreBlockRepo) Put(ctx context.Context, b *models.Block) error {
	b.ID = models.BlockID(b.Date, b.Time)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if _, err := r.blocks(b.ProfessionalID).Doc(b.ID).Set(ctx, b); err != nil {
		return fmt.Errorf("failed to put block %s: %w", b.ID, err)
	}
	return nil
}

func (r *firestoreBlockRepo) Delete(ctx context.Context, professionalID, id string) error {
	if _, err := r.blocks(professionalID).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete block %s: %w", id, err)
	}
	return nil
}

func (r *firestoreBlockRepo) DeleteByDate(ctx context.Context, professionalID, date string) (int, error) {
	n, err := repository.DeleteQuery(ctx, r.client, r.blocks(professionalID).Where("date", "==", date))
	if err != nil {
		return 0, fmt.Errorf("failed to delete blocks for %s: %w", date, err)
	}
	return n, nil
}

func (r *firestoreBlockRepo) DeleteAll(ctx context.Context, professionalID string) error {
	if err := repository.DeleteCollection(ctx, r.client, r.blocks(professionalID)); err != nil {
		return fmt.Errorf("failed to delete blocks of %s: %w", professionalID, err)
	}
	return nil
}

func (r *firestoreBlockRepo) Watch(ctx context.Context, professionalID string, rng repository.DateRange, fn func([]models.Block, error)) (repository.Subscription, error) {
	return repository.WatchFirestore(ctx, r.rangeQuery(professionalID, rng), func(docs []*firestore.DocumentSnapshot) ([]models.Block, error) {
		return decodeBlocks(professionalID, docs)
	}, fn), nil
}
