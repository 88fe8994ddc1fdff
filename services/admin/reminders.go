package admin

import (
	"context"
	"fmt"
	"time"

	"agenda/database/repository"
	"agenda/models"
	"agenda/services/tasks"
	"agenda/utils"

	"go.uber.org/zap"
)

const (
	reminderDays  = 5 // today and the next four days
	soonThreshold = 3 * time.Hour
)

func reminderBucket(appt models.Appointment, now time.Time) (string, bool) {
	today := now.Format(utils.DateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(utils.DateLayout)

	switch appt.Date {
	case today:
		start, err := tasks.AppointmentStart(appt.Date, appt.Time, now.Location())
		if err != nil || start.Before(now) {
			return "", false
		}
		if start.Sub(now) <= soonThreshold {
			return models.ReminderSoon, true
		}
		return models.ReminderToday, true
	case tomorrow:
		return models.ReminderTomorrow, true
	default:
		return models.ReminderUpcoming, true
	}
}

func reminderMessage(bucket string, appt models.Appointment, professional string) string {
	switch bucket {
	case models.ReminderSoon, models.ReminderToday:
		return fmt.Sprintf("Hola %s, te recordamos tu hora de hoy a las %s con %s.", appt.PatientName, appt.Time, professional)
	case models.ReminderTomorrow:
		return fmt.Sprintf("Hola %s, te recordamos tu hora de mañana (%s) a las %s con %s.", appt.PatientName, appt.Date, appt.Time, professional)
	default:
		return fmt.Sprintf("Hola %s, te recordamos tu hora del %s a las %s con %s.", appt.PatientName, appt.Date, appt.Time, professional)
	}
}

// Reminders lists the confirmed appointments from today through the next
// four days, in order, each with a ready-to-send WhatsApp message. now's
// location decides what "today" is. Appointments already past are skipped.
func (s *DefaultAdminService) Reminders(ctx context.Context, professionalID string, now time.Time) ([]models.ReminderItem, error) {
	pro, err := s.professional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	rng := repository.DateRange{
		From: now.Format(utils.DateLayout),
		To:   now.AddDate(0, 0, reminderDays-1).Format(utils.DateLayout),
	}
	appts, err := s.Appointments.ListRange(ctx, professionalID, rng)
	if err != nil {
		return nil, err
	}

	items := make([]models.ReminderItem, 0, len(appts))
	for _, appt := range appts {
		bucket, ok := reminderBucket(appt, now)
		if !ok {
			continue
		}
		item := models.ReminderItem{
			Appointment: appt,
			Bucket:      bucket,
			Message:     reminderMessage(bucket, appt, pro.Name),
		}
		link, err := utils.WhatsAppLink(appt.PatientPhone, s.PhoneRegion, item.Message)
		if err != nil {
			utils.GetLogger().Debug("Patient phone cannot be linked",
				zap.String("appointmentID", appt.ID), zap.Error(err))
		} else {
			item.WhatsAppURL = link
		}
		items = append(items, item)
	}
	return items, nil
}
