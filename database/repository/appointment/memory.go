package appointmentRepo

import (
	"context"
	"sync"
	"time"

	"agenda/database/repository"
	"agenda/models"
)

type memoryAppointmentRepo struct {
	mu    sync.RWMutex
	appts map[string]map[string]models.Appointment // professionalID -> id -> appointment
	hub   *repository.Hub
}

// NewMemoryAppointmentRepo keeps appointments in process memory. The slot
// check and the insert happen under one lock.
func NewMemoryAppointmentRepo() AppointmentRepository {
	return &memoryAppointmentRepo{
		appts: make(map[string]map[string]models.Appointment),
		hub:   repository.NewHub(),
	}
}

func (r *memoryAppointmentRepo) GetByID(_ context.Context, professionalID, id string) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appts[professionalID][id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *memoryAppointmentRepo) ListByDate(ctx context.Context, professionalID, date string) ([]models.Appointment, error) {
	return r.ListRange(ctx, professionalID, repository.Day(date))
}

func (r *memoryAppointmentRepo) ListRange(_ context.Context, professionalID string, rng repository.DateRange) ([]models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Appointment{}
	for _, a := range r.appts[professionalID] {
		if a.IsConfirmed() && rng.Contains(a.Date) {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

// holderLocked returns the id of the confirmed appointment on the slot.
func (r *memoryAppointmentRepo) holderLocked(professionalID, date, slot string) string {
	for id, a := range r.appts[professionalID] {
		if a.IsConfirmed() && a.Date == date && a.Time == slot {
			return id
		}
	}
	return ""
}

func (r *memoryAppointmentRepo) CreateConfirmed(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	if r.holderLocked(appt.ProfessionalID, appt.Date, appt.Time) != "" {
		r.mu.Unlock()
		return repository.ErrSlotTaken
	}
	if r.appts[appt.ProfessionalID] == nil {
		r.appts[appt.ProfessionalID] = make(map[string]models.Appointment)
	}
	appt.Status = models.StatusConfirmed
	r.appts[appt.ProfessionalID][appt.ID] = *appt
	r.mu.Unlock()

	r.hub.Notify(appt.ProfessionalID)
	return nil
}

func (r *memoryAppointmentRepo) Update(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	current, ok := r.appts[appt.ProfessionalID][appt.ID]
	if !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	if current.IsConfirmed() && (appt.Date != current.Date || appt.Time != current.Time) {
		if holder := r.holderLocked(appt.ProfessionalID, appt.Date, appt.Time); holder != "" && holder != appt.ID {
			r.mu.Unlock()
			return repository.ErrSlotTaken
		}
	}
	appt.Status = current.Status
	appt.CreatedAt = current.CreatedAt
	r.appts[appt.ProfessionalID][appt.ID] = *appt
	r.mu.Unlock()

	r.hub.Notify(appt.ProfessionalID)
	return nil
}

func (r *memoryAppointmentRepo) Cancel(_ context.Context, professionalID, id string, at time.Time) error {
	r.mu.Lock()
	a, ok := r.appts[professionalID][id]
	if !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	a.Status = models.StatusCancelled
	a.CancelledAt = &at
	a.UpdatedAt = at
	r.appts[professionalID][id] = a
	r.mu.Unlock()

	r.hub.Notify(professionalID)
	return nil
}

func (r *memoryAppointmentRepo) DeleteAll(_ context.Context, professionalID string) error {
	r.mu.Lock()
	delete(r.appts, professionalID)
	r.mu.Unlock()

	r.hub.Notify(professionalID)
	return nil
}

func (r *memoryAppointmentRepo) Watch(ctx context.Context, professionalID string, rng repository.DateRange, fn func([]models.Appointment, error)) (repository.Subscription, error) {
	changes, unsubscribe := r.hub.Subscribe(professionalID)
	load := func(ctx context.Context) ([]models.Appointment, error) {
		return r.ListRange(ctx, professionalID, rng)
	}
	return repository.WatchLoop(ctx, changes, load, fn, unsubscribe), nil
}
