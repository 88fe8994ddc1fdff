package professionalRepo

import (
	"context"
	"fmt"

	"agenda/database/repository"
	"agenda/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreProfessionalRepo struct {
	client *firestore.Client
}

// NewFirestoreProfessionalRepo reads professionals/{id} and config/master.
func NewFirestoreProfessionalRepo(client *firestore.Client) ProfessionalRepository {
	return &firestoreProfessionalRepo{client: client}
}

func (r *firestoreProfessionalRepo) doc(id string) *firestore.DocumentRef {
	return r.client.Collection("professionals").Doc(id)
}

func decode(snap *firestore.DocumentSnapshot) (*models.Professional, error) {
	var p models.Professional
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode professional %s: %w", snap.Ref.ID, err)
	}
	p.ID = snap.Ref.ID
	if p.Settings.SlotInterval == 0 {
		p.Settings.SlotInterval = models.DefaultSlotInterval
	}
	return &p, nil
}

func (r *firestoreProfessionalRepo) GetByID(ctx context.Context, id string) (*models.Professional, error) {
	snap, err := r.doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get professional %s: %w", id, err)
	}
	return decode(snap)
}

func (r *firestoreProfessionalRepo) List(ctx context.Context) ([]models.Professional, error) {
	docs, err := r.client.Collection("professionals").OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	pros := make([]models.Professional, 0, len(docs))
	for _, d := range docs {
		p, err := decode(d)
		if err != nil {
			return nil, err
		}
		pros = append(pros, *p)
	}
	return pros, nil
}

func (r *firestoreProfessionalRepo) Create(ctx context.Context, p *models.Professional) error {
	_, err := r.doc(p.ID).Create(ctx, p)
	if status.Code(err) == codes.AlreadyExists {
		return repository.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create professional: %w", err)
	}
	return nil
}

func (r *firestoreProfessionalRepo) Update(ctx context.Context, p *models.Professional) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := r.doc(p.ID)
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, p)
	})
	if status.Code(err) == codes.NotFound {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update professional with id %s: %w", p.ID, err)
	}
	return nil
}

func (r *firestoreProfessionalRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to delete professional with id %s: %w", id, err)
	}
	return nil
}

func (r *firestoreProfessionalRepo) GetMaster(ctx context.Context) (*models.MasterConfig, error) {
	snap, err := r.client.Collection("config").Doc("master").Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get master config: %w", err)
	}
	var m models.MasterConfig
	if err := snap.DataTo(&m); err != nil {
		return nil, fmt.Errorf("failed to decode master config: %w", err)
	}
	return &m, nil
}

func (r *firestoreProfessionalRepo) SaveMaster(ctx context.Context, m *models.MasterConfig) error {
	if _, err := r.client.Collection("config").Doc("master").Set(ctx, m); err != nil {
		return fmt.Errorf("failed to save master config: %w", err)
	}
	return nil
}
