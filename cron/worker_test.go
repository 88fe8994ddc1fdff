package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	appointmentRepo "agenda/database/repository/appointment"
	"agenda/models"
	"agenda/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu        sync.Mutex
	bookings  []string
	reminders []string
}

func (f *fakeNotifier) SendProfessionalPushNotification(context.Context, string, string, string, map[string]string) error {
	return nil
}

func (f *fakeNotifier) NotifyNewBooking(_ context.Context, appt models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings = append(f.bookings, appt.ID)
	return nil
}

func (f *fakeNotifier) NotifyReminder(_ context.Context, appt models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, appt.ID)
	return nil
}

func seed(t *testing.T) (appointmentRepo.AppointmentRepository, models.Appointment) {
	t.Helper()
	repo := appointmentRepo.NewMemoryAppointmentRepo()
	appt := models.Appointment{ID: "a1", ProfessionalID: "ana", Date: "2025-06-03", Time: "09:45", PatientName: "Pedro"}
	require.NoError(t, repo.CreateConfirmed(context.Background(), &appt))
	return repo, appt
}

func TestBookingNotifyTask(t *testing.T) {
	repo, appt := seed(t)
	notif := &fakeNotifier{}
	mux := NewServeMux(repo, notif)

	task, err := tasks.NewBookingNotifyTask(tasks.PayloadFor(appt))
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"a1"}, notif.bookings)
}

func TestReminderTask_SkipsStaleAppointments(t *testing.T) {
	ctx := context.Background()
	repo, appt := seed(t)
	notif := &fakeNotifier{}
	mux := NewServeMux(repo, notif)

	moved := tasks.PayloadFor(appt)
	moved.Time = "08:15"
	task, _, err := tasks.NewReminderTask(moved, time.Now())
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(ctx, task))
	assert.Empty(t, notif.reminders, "a reminder for the old time is dropped")

	task, _, err = tasks.NewReminderTask(tasks.PayloadFor(appt), time.Now())
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(ctx, task))
	assert.Equal(t, []string{"a1"}, notif.reminders)

	require.NoError(t, repo.Cancel(ctx, "ana", "a1", time.Now()))
	require.NoError(t, mux.ProcessTask(ctx, task))
	assert.Len(t, notif.reminders, 1, "cancelled appointments get no reminder")
}

func TestInvalidPayloadSkipsRetry(t *testing.T) {
	repo, _ := seed(t)
	mux := NewServeMux(repo, &fakeNotifier{})
	err := mux.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeSendReminder, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
