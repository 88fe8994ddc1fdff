package appointmentRepo

import (
	"context"
	"time"

	"agenda/database/repository"
	"agenda/models"
)

// AppointmentRepository defines methods for appointment data access.
// Every write that puts an appointment on a slot is a compare-and-swap on
// (professional, date, time): it fails with repository.ErrSlotTaken instead
// of producing a second confirmed appointment.
type AppointmentRepository interface {
	GetByID(ctx context.Context, professionalID, id string) (*models.Appointment, error)
	// ListByDate returns the confirmed appointments of one date ordered by time.
	ListByDate(ctx context.Context, professionalID, date string) ([]models.Appointment, error)
	// ListRange returns confirmed appointments ordered by date and time.
	ListRange(ctx context.Context, professionalID string, r repository.DateRange) ([]models.Appointment, error)
	// CreateConfirmed inserts a confirmed appointment if the slot is still free.
	CreateConfirmed(ctx context.Context, appt *models.Appointment) error
	// Update writes the editable fields; a new time is claimed atomically.
	Update(ctx context.Context, appt *models.Appointment) error
	// Cancel marks the appointment cancelled and releases its slot.
	Cancel(ctx context.Context, professionalID, id string, at time.Time) error
	// DeleteAll removes every appointment of the professional.
	DeleteAll(ctx context.Context, professionalID string) error
	// Watch delivers the confirmed appointments in r after every change.
	Watch(ctx context.Context, professionalID string, r repository.DateRange, fn func([]models.Appointment, error)) (repository.Subscription, error)
}
