// Package tasks defines the asynq task types queued after a booking.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agenda/models"
	"agenda/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeBookingNotify = "booking:notify"
	TypeSendReminder  = "reminder:send"
)

// AppointmentPayload identifies the appointment a task is about. Handlers
// reload it so a cancelled or moved appointment is not announced.
type AppointmentPayload struct {
	ProfessionalID string `json:"professionalId"`
	AppointmentID  string `json:"appointmentId"`
	Date           string `json:"date"`
	Time           string `json:"time"`
}

func PayloadFor(appt models.Appointment) AppointmentPayload {
	return AppointmentPayload{
		ProfessionalID: appt.ProfessionalID,
		AppointmentID:  appt.ID,
		Date:           appt.Date,
		Time:           appt.Time,
	}
}

func ParsePayload(task *asynq.Task) (AppointmentPayload, error) {
	var p AppointmentPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", task.Type(), err)
	}
	return p, nil
}

func NewBookingNotifyTask(payload AppointmentPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingNotify, b, asynq.MaxRetry(5)), nil
}

func NewReminderTask(payload AppointmentPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("reminder:%s:%s:%s_%s", payload.ProfessionalID, payload.AppointmentID, payload.Date, payload.Time)),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// AppointmentStart is the wall-clock start of the appointment in loc.
func AppointmentStart(date, slot string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(utils.DateLayout+" 15:04", date+" "+slot, loc)
}

// ReminderAt returns when the reminder for an appointment fires and false when
// that instant is not after now.
func ReminderAt(appt models.Appointment, lead time.Duration, loc *time.Location, now time.Time) (time.Time, bool) {
	start, err := AppointmentStart(appt.Date, appt.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	fireAt := start.Add(-lead)
	return fireAt, fireAt.After(now)
}

// Enqueuer queues the follow-up work of a booking.
type Enqueuer interface {
	EnqueueBooking(ctx context.Context, appt models.Appointment) error
	// EnqueueReminder schedules only the reminder, for a moved appointment.
	EnqueueReminder(ctx context.Context, appt models.Appointment) error
}

// AsynqEnqueuer queues on the asynq client of the queue Redis DB.
type AsynqEnqueuer struct {
	Client    *asynq.Client
	Lead      time.Duration
	Location  *time.Location
	Reminders bool
	Now       func() time.Time
}

func (e *AsynqEnqueuer) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *AsynqEnqueuer) EnqueueBooking(ctx context.Context, appt models.Appointment) error {
	task, err := NewBookingNotifyTask(PayloadFor(appt))
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TypeBookingNotify, err)
	}
	return e.EnqueueReminder(ctx, appt)
}

func (e *AsynqEnqueuer) EnqueueReminder(ctx context.Context, appt models.Appointment) error {
	if !e.Reminders {
		return nil
	}
	logger := utils.GetLogger()
	fireAt, ok := ReminderAt(appt, e.Lead, e.Location, e.now())
	if !ok {
		logger.Debug("Reminder skipped, fire time already passed",
			zap.String("appointmentID", appt.ID), zap.String("date", appt.Date), zap.String("time", appt.Time))
		return nil
	}
	task, opts, err := NewReminderTask(PayloadFor(appt), fireAt)
	if err != nil {
		return err
	}
	_, err = e.Client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TypeSendReminder, err)
	}
	logger.Info("Reminder scheduled", zap.String("appointmentID", appt.ID), zap.Time("fireAt", fireAt))
	return nil
}
