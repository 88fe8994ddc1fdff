package admin

import (
	"context"
	"errors"
	"strings"

	"agenda/database/repository"
	"agenda/models"
	"agenda/services/booking"
	"agenda/utils"

	"go.uber.org/zap"
)

func (s *DefaultAdminService) appointment(ctx context.Context, professionalID, appointmentID string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, professionalID, appointmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAppointmentNotFound
	}
	return appt, err
}

func applyPatch(appt *models.Appointment, patch models.AppointmentPatch) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&appt.PatientName, patch.PatientName)
	set(&appt.PatientEmail, patch.PatientEmail)
	set(&appt.PatientRut, patch.PatientRut)
	set(&appt.Notes, patch.Notes)
	set(&appt.Time, patch.Time)
	if patch.PatientPhone != nil {
		appt.PatientPhone = utils.NormalizePhone(*patch.PatientPhone)
	}
}

// EditAppointment applies the patch. A new time goes through the booking
// guard, so it can fail with a slot conflict.
func (s *DefaultAdminService) EditAppointment(ctx context.Context, professionalID, appointmentID string, patch models.AppointmentPatch) (*models.Appointment, error) {
	pro, err := s.professional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	appt, err := s.appointment(ctx, professionalID, appointmentID)
	if err != nil {
		return nil, err
	}
	if !appt.IsConfirmed() {
		return nil, utils.NewValidationError("status", "cancelled appointments cannot be edited")
	}

	previousTime := appt.Time
	applyPatch(appt, patch)
	if err := booking.ValidatePatient(booking.PatientFields{
		Name:  appt.PatientName,
		Phone: appt.PatientPhone,
		Email: appt.PatientEmail,
		Rut:   appt.PatientRut,
	}); err != nil {
		return nil, err
	}
	appt.UpdatedAt = s.now()

	if appt.Time == previousTime {
		if err := s.Appointments.Update(ctx, appt); err != nil {
			return nil, err
		}
		return appt, nil
	}

	if err := booking.ValidateSlot(pro.Settings, appt.Date, appt.Time); err != nil {
		return nil, err
	}
	if err := booking.NewGuard(s.Appointments, s.Blocks).Move(ctx, pro, appt); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Appointment moved",
		zap.String("professionalID", professionalID),
		zap.String("appointmentID", appointmentID),
		zap.String("from", previousTime),
		zap.String("to", appt.Time))
	if s.Tasks != nil {
		if err := s.Tasks.EnqueueReminder(ctx, *appt); err != nil {
			utils.GetLogger().Warn("Failed to reschedule reminder", zap.String("appointmentID", appointmentID), zap.Error(err))
		}
	}
	return appt, nil
}

// CancelAppointment marks the appointment cancelled; the record is kept and
// the slot becomes free again.
func (s *DefaultAdminService) CancelAppointment(ctx context.Context, professionalID, appointmentID string) error {
	appt, err := s.appointment(ctx, professionalID, appointmentID)
	if err != nil {
		return err
	}
	if !appt.IsConfirmed() {
		return nil
	}
	if err := s.Appointments.Cancel(ctx, professionalID, appointmentID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return err
	}
	utils.GetLogger().Info("Appointment cancelled",
		zap.String("professionalID", professionalID), zap.String("appointmentID", appointmentID))
	return nil
}
