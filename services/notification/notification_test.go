package notification

import (
	"context"
	"errors"
	"testing"

	professionalRepo "agenda/database/repository/professional"
	"agenda/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "projects/test/messages/1", nil
}

func setup(t *testing.T, token string) (*DefaultNotificationService, *fakeSender) {
	t.Helper()
	repo := professionalRepo.NewMemoryProfessionalRepo()
	require.NoError(t, repo.Create(context.Background(), &models.Professional{ID: "ana", Name: "Ana", FCMToken: token}))
	sender := &fakeSender{}
	svc, err := NewDefaultNotificationService(repo, sender)
	require.NoError(t, err)
	return svc, sender
}

func TestNotifyNewBooking(t *testing.T) {
	svc, sender := setup(t, "token-1")
	appt := models.Appointment{ID: "a1", ProfessionalID: "ana", Date: "2025-06-02", Time: "09:45", PatientName: "Pedro", ServiceName: "Control"}

	require.NoError(t, svc.NotifyNewBooking(context.Background(), appt))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "token-1", msg.Token)
	assert.Contains(t, msg.Notification.Body, "Pedro")
	assert.Contains(t, msg.Notification.Body, "(Control)")
	assert.Equal(t, "new_booking", msg.Data["type"])
	assert.Equal(t, "professional", msg.Data["role"])
	assert.Equal(t, "a1", msg.Data["appointmentId"])
}

func TestSendSkipsMissingToken(t *testing.T) {
	svc, sender := setup(t, "")
	require.NoError(t, svc.NotifyReminder(context.Background(), models.Appointment{ProfessionalID: "ana"}))
	assert.Empty(t, sender.sent)
}

func TestSendSkipsUnknownProfessional(t *testing.T) {
	svc, sender := setup(t, "token-1")
	require.NoError(t, svc.SendProfessionalPushNotification(context.Background(), "ghost", "t", "b", nil))
	assert.Empty(t, sender.sent)
}

func TestSendPropagatesFCMFailure(t *testing.T) {
	svc, sender := setup(t, "token-1")
	sender.err = errors.New("unavailable")
	err := svc.NotifyReminder(context.Background(), models.Appointment{ProfessionalID: "ana", Time: "10:30"})
	assert.ErrorContains(t, err, "unavailable")
}

func TestNewDefaultNotificationServiceRequiresRepo(t *testing.T) {
	_, err := NewDefaultNotificationService(nil, nil)
	assert.Error(t, err)
}
