package booking

import (
	"context"

	"agenda/models"
	"agenda/services/schedule"
)

// BookingService is the patient-facing flow: profile, availability, booking.
type BookingService interface {
	GetProfessional(ctx context.Context, professionalID string) (*models.Professional, error)
	Availability(ctx context.Context, professionalID, date string) ([]schedule.BookableSlot, error)
	Book(ctx context.Context, professionalID string, req models.BookingRequest) (*models.BookingConfirmation, error)
}
