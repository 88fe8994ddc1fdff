package professionalRepo

import (
	"context"
	"sort"
	"sync"

	"agenda/database/repository"
	"agenda/models"
)

type memoryProfessionalRepo struct {
	mu     sync.RWMutex
	pros   map[string]models.Professional
	master *models.MasterConfig
}

// NewMemoryProfessionalRepo keeps professionals in process memory.
func NewMemoryProfessionalRepo() ProfessionalRepository {
	return &memoryProfessionalRepo{pros: make(map[string]models.Professional)}
}

func clone(p models.Professional) models.Professional {
	p.Services = append([]models.Service(nil), p.Services...)
	return p
}

func (r *memoryProfessionalRepo) GetByID(_ context.Context, id string) (*models.Professional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pros[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = clone(p)
	return &p, nil
}

func (r *memoryProfessionalRepo) List(_ context.Context) ([]models.Professional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Professional, 0, len(r.pros))
	for _, p := range r.pros {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryProfessionalRepo) Create(_ context.Context, p *models.Professional) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pros[p.ID]; ok {
		return repository.ErrAlreadyExists
	}
	r.pros[p.ID] = clone(*p)
	return nil
}

func (r *memoryProfessionalRepo) Update(_ context.Context, p *models.Professional) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pros[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.pros[p.ID] = clone(*p)
	return nil
}

func (r *memoryProfessionalRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pros[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.pros, id)
	return nil
}

func (r *memoryProfessionalRepo) GetMaster(_ context.Context) (*models.MasterConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.master == nil {
		return nil, repository.ErrNotFound
	}
	m := *r.master
	return &m, nil
}

func (r *memoryProfessionalRepo) SaveMaster(_ context.Context, m *models.MasterConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.master = &cp
	return nil
}
