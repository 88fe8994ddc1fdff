package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agenda/database/repository"
	appointmentRepo "agenda/database/repository/appointment"
	blockRepo "agenda/database/repository/block"
	professionalRepo "agenda/database/repository/professional"
	"agenda/models"
	"agenda/services/schedule"
	"agenda/services/tasks"
	"agenda/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Professionals professionalRepo.ProfessionalRepository
	Appointments  appointmentRepo.AppointmentRepository
	Blocks        blockRepo.BlockRepository
	Cache         *utils.ProfessionalCache
	Tasks         tasks.Enqueuer
	Metrics       *utils.Metrics
	PhoneRegion   string
	Location      *time.Location
	Now           func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return now
}

func (s *DefaultBookingService) guard() *Guard {
	return NewGuard(s.Appointments, s.Blocks)
}

// GetProfessional reads through the profile cache.
func (s *DefaultBookingService) GetProfessional(ctx context.Context, professionalID string) (*models.Professional, error) {
	if p, ok := s.Cache.Get(ctx, professionalID); ok {
		return p, nil
	}
	p, err := s.Professionals.GetByID(ctx, professionalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfessionalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load professional %s: %w", professionalID, err)
	}
	s.Cache.Set(ctx, p)
	return p, nil
}

func (s *DefaultBookingService) Availability(ctx context.Context, professionalID, date string) ([]schedule.BookableSlot, error) {
	if !utils.ValidateDate(date) {
		return nil, utils.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	pro, err := s.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	snap, err := LoadDay(ctx, s.Appointments, s.Blocks, professionalID, date)
	if err != nil {
		return nil, err
	}
	return schedule.BookingView(schedule.ResolveDay(pro.Settings, snap)), nil
}

// Book validates the intake form and confirms the appointment through the guard.
func (s *DefaultBookingService) Book(ctx context.Context, professionalID string, req models.BookingRequest) (*models.BookingConfirmation, error) {
	logger := utils.GetLogger().With(
		zap.String("professionalID", professionalID),
		zap.String("date", req.Date),
		zap.String("time", req.Time),
	)

	pro, err := s.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	svc, err := validateRequest(pro, req, now.Format(utils.DateLayout))
	if err != nil {
		s.Metrics.ObserveBooking("invalid")
		return nil, err
	}

	appt := &models.Appointment{
		ID:              uuid.New().String(),
		ProfessionalID:  pro.ID,
		Date:            req.Date,
		Time:            req.Time,
		Status:          models.StatusConfirmed,
		ServiceName:     svc.Name,
		ServiceDuration: svc.Duration,
		PatientName:     strings.TrimSpace(req.PatientName),
		PatientPhone:    utils.NormalizePhone(req.PatientPhone),
		PatientEmail:    strings.TrimSpace(req.PatientEmail),
		PatientRut:      strings.TrimSpace(req.PatientRut),
		Notes:           strings.TrimSpace(req.Notes),
		CreatedAt:       now,
	}

	if err := s.guard().Create(ctx, pro, appt); err != nil {
		if IsConflict(err) {
			s.Metrics.ObserveBooking("conflict")
			logger.Info("Booking rejected, slot no longer free", zap.Error(err))
			return nil, err
		}
		s.Metrics.ObserveBooking("error")
		logger.Error("Booking failed", zap.Error(err))
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}
	s.Metrics.ObserveBooking("confirmed")
	logger.Info("Appointment confirmed", zap.String("appointmentID", appt.ID))

	if s.Tasks != nil {
		if err := s.Tasks.EnqueueBooking(ctx, *appt); err != nil {
			logger.Warn("Failed to enqueue booking follow-ups", zap.Error(err))
		}
	}

	confirmation := &models.BookingConfirmation{
		Appointment:  *appt,
		Professional: pro.Name,
	}
	if pro.Phone != "" {
		msg := fmt.Sprintf("Hola %s, soy %s. Reservé una hora para el %s a las %s.", pro.Name, appt.PatientName, appt.Date, appt.Time)
		link, err := utils.WhatsAppLink(pro.Phone, s.PhoneRegion, msg)
		if err != nil {
			logger.Warn("Professional phone cannot be linked", zap.Error(err))
		} else {
			confirmation.WhatsAppURL = link
		}
	}
	return confirmation, nil
}
