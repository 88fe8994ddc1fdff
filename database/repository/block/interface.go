package blockRepo

import (
	"context"

	"agenda/database/repository"
	"agenda/models"
)

// BlockRepository defines methods for manual block data access. Blocks are
// keyed by models.BlockID, so Put on an existing (date, time) overwrites.
type BlockRepository interface {
	ListByDate(ctx context.Context, professionalID, date string) ([]models.Block, error)
	ListRange(ctx context.Context, professionalID string, r repository.DateRange) ([]models.Block, error)
	Put(ctx context.Context, b *models.Block) error
	// Delete is a no-op for a block that does not exist.
	Delete(ctx context.Context, professionalID, id string) error
	// DeleteByDate removes every block of the date and returns how many were removed.
	DeleteByDate(ctx context.Context, professionalID, date string) (int, error)
	DeleteAll(ctx context.Context, professionalID string) error
	Watch(ctx context.Context, professionalID string, r repository.DateRange, fn func([]models.Block, error)) (repository.Subscription, error)
}
