package tasks

import (
	"testing"
	"time"

	"agenda/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderAt(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	appt := models.Appointment{ID: "a1", Date: "2025-06-10", Time: "09:45"}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, loc)
	fireAt, ok := ReminderAt(appt, 24*time.Hour, loc, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 9, 9, 45, 0, 0, loc), fireAt)

	late := time.Date(2025, 6, 9, 10, 0, 0, 0, loc)
	_, ok = ReminderAt(appt, 24*time.Hour, loc, late)
	assert.False(t, ok, "a reminder whose fire time passed is skipped")

	_, ok = ReminderAt(models.Appointment{Date: "bad", Time: "09:45"}, time.Hour, loc, now)
	assert.False(t, ok)
}

func TestTaskPayload(t *testing.T) {
	appt := models.Appointment{ID: "a1", ProfessionalID: "ana", Date: "2025-06-10", Time: "09:45", PatientName: "Pedro"}

	task, err := NewBookingNotifyTask(PayloadFor(appt))
	require.NoError(t, err)
	assert.Equal(t, TypeBookingNotify, task.Type())

	p, err := ParsePayload(task)
	require.NoError(t, err)
	assert.Equal(t, AppointmentPayload{ProfessionalID: "ana", AppointmentID: "a1", Date: "2025-06-10", Time: "09:45"}, p)

	reminder, opts, err := NewReminderTask(p, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, TypeSendReminder, reminder.Type())
	assert.Len(t, opts, 3)
}
