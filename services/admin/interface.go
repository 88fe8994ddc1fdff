// Package admin implements the PIN-gated panel a professional uses to run
// their own agenda.
package admin

import (
	"context"
	"errors"
	"time"

	"agenda/models"
	"agenda/services/schedule"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrOutsideHours is returned when toggling a slot the schedule excludes.
	ErrOutsideHours        = errors.New("time slot is outside business hours")
)

// DayView is everything the admin day screen renders.
type DayView struct {
	Date         string                      `json:"date"`
	Slots        []schedule.SlotAvailability `json:"slots"`
	Appointments []models.Appointment        `json:"appointments"`
	DayBlocked   bool                        `json:"dayBlocked"`
}

type AdminService interface {
	DayView(ctx context.Context, professionalID, date string) (*DayView, error)
	MonthIndicators(ctx context.Context, professionalID, month string) (*models.MonthIndicators, error)
	ToggleBlock(ctx context.Context, professionalID, date, slot string) (*models.ToggleResult, error)
	BlockDay(ctx context.Context, professionalID, date string) error
	UnblockDay(ctx context.Context, professionalID, date string) (int, error)
	EditAppointment(ctx context.Context, professionalID, appointmentID string, patch models.AppointmentPatch) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, professionalID, appointmentID string) error
	Settings(ctx context.Context, professionalID string) (models.ScheduleConfig, error)
	SaveSettings(ctx context.Context, professionalID string, cfg models.ScheduleConfig) (models.ScheduleConfig, error)
	SaveServices(ctx context.Context, professionalID string, services []models.Service) ([]models.Service, error)
	Reminders(ctx context.Context, professionalID string, now time.Time) ([]models.ReminderItem, error)
	UpdateProfile(ctx context.Context, professionalID string, update models.ProfileUpdate) (*models.Professional, error)
	OpenLiveSession(ctx context.Context, professionalID string, emit func(LiveEvent)) (*LiveSession, error)
}
