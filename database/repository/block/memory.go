package blockRepo

import (
	"context"
	"sync"
	"time"

	"agenda/database/repository"
	"agenda/models"
)

type memoryBlockRepo struct {
	mu     sync.RWMutex
	blocks map[string]map[string]models.Block // professionalID -> block id -> block
	hub    *repository.Hub
}

func NewMemoryBlockRepo() BlockRepository {
	return &memoryBlockRepo{
		blocks: make(map[string]map[string]models.Block),
		hub:    repository.NewHub(),
	}
}

func (r *memoryBlockRepo) ListByDate(ctx context.Context, professionalID, date string) ([]models.Block, error) {
	return r.ListRange(ctx, professionalID, repository.Day(date))
}

func (r *memoryBlockRepo) ListRange(_ context.Context, professionalID string, rng repository.DateRange) ([]models.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Block{}
	for _, b := range r.blocks[professionalID] {
		if rng.Contains(b.Date) {
			out = append(out, b)
		}
	}
	sortBlocks(out)
	return out, nil
}

func (r *memoryBlockRepo) Put(_ context.Context, b *models.Block) error {
	b.ID = models.BlockID(b.Date, b.Time)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	r.mu.Lock()
	if r.blocks[b.ProfessionalID] == nil {
		r.blocks[b.ProfessionalID] = make(map[string]models.Block)
	}
	r.blocks[b.ProfessionalID][b.ID] = *b
	r.mu.Unlock()

	r.hub.Notify(b.ProfessionalID)
	return nil
}

func (r *memoryBlockRepo) Delete(_ context.Context, professionalID, id string) error {
	r.mu.Lock()
	delete(r.blocks[professionalID], id)
	r.mu.Unlock()

	r.hub.Notify(professionalID)
	return nil
}

func (r *memoryBlockRepo) DeleteByDate(_ context.Context, professionalID, date string) (int, error) {
	r.mu.Lock()
	n := 0
	for id, b := range r.blocks[professionalID] {
		if b.Date == date {
			delete(r.blocks[professionalID], id)
			n++
		}
	}
	r.mu.Unlock()

	r.hub.Notify(professionalID)
	return n, nil
}

func (r *memoryBlockRepo) DeleteAll(_ context.Context, professionalID string) error {
	r.mu.Lock()
	delete(r.blocks, professionalID)
	r.mu.Unlock()

	r.hub.Notify(professionalID)
	return nil
}

func (r *memoryBlockRepo) Watch(ctx context.Context, professionalID string, rng repository.DateRange, fn func([]models.Block, error)) (repository.Subscription, error) {
	changes, unsubscribe := r.hub.Subscribe(professionalID)
	load := func(ctx context.Context) ([]models.Block, error) {
		return r.ListRange(ctx, professionalID, rng)
	}
	return repository.WatchLoop(ctx, changes, load, fn, unsubscribe), nil
}
