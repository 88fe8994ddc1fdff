package professionalRepo

import (
	"context"

	"agenda/models"
)

// ProfessionalRepository defines methods for professional and setup data access.
type ProfessionalRepository interface {
	// GetByID returns repository.ErrNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*models.Professional, error)
	// List returns every professional ordered by id.
	List(ctx context.Context) ([]models.Professional, error)
	// Create fails with repository.ErrAlreadyExists when the id is taken.
	Create(ctx context.Context, p *models.Professional) error
	// Update replaces an existing professional.
	Update(ctx context.Context, p *models.Professional) error
	// Delete removes the professional record only; callers clear its appointments and blocks.
	Delete(ctx context.Context, id string) error
	// GetMaster returns repository.ErrNotFound when the setup PIN was never changed.
	GetMaster(ctx context.Context) (*models.MasterConfig, error)
	SaveMaster(ctx context.Context, m *models.MasterConfig) error
}
