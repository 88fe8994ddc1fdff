package notification

import (
	"context"
	"errors"
	"fmt"

	"agenda/database/repository"
	professionalRepo "agenda/database/repository/professional"
	"agenda/models"
	"agenda/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService sends FCM pushes to professionals.
type NotificationService interface {
	SendProfessionalPushNotification(ctx context.Context, professionalID, title, body string, data map[string]string) error
	NotifyNewBooking(ctx context.Context, appt models.Appointment) error
	NotifyReminder(ctx context.Context, appt models.Appointment) error
}

// Sender is the part of *messaging.Client the service uses.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	professionals professionalRepo.ProfessionalRepository
	sender        Sender
	logger        *zap.Logger
}

// NewDefaultNotificationService builds the service. With a nil sender pushes
// are only logged, which is what deployments without Firebase get.
func NewDefaultNotificationService(repo professionalRepo.ProfessionalRepository, sender Sender) (*DefaultNotificationService, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification service initialization error: professional repository is nil")
	}
	logger := utils.GetLogger()
	if sender == nil {
		sender = &logSender{logger: logger}
	}
	return &DefaultNotificationService{
		professionals: repo,
		sender:        sender,
		logger:        logger,
	}, nil
}

// SendProfessionalPushNotification looks up a professional's FCM token and
// sends a push. A professional without a token is skipped, not an error.
func (s *DefaultNotificationService) SendProfessionalPushNotification(
	ctx context.Context,
	professionalID, title, body string,
	data map[string]string,
) error {
	p, err := s.professionals.GetByID(ctx, professionalID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("Push skipped: professional no longer exists", zap.String("professionalID", professionalID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("SendProfessionalPushNotification: could not load professional %s: %w", professionalID, err)
	}
	if p.FCMToken == "" {
		s.logger.Info("Push skipped: no FCM token", zap.String("professionalID", professionalID))
		return nil
	}

	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = "professional"
	}

	msg := &messaging.Message{
		Token: p.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendProfessionalPushNotification: failed to send FCM message: %w", err)
	}
	return nil
}

func (s *DefaultNotificationService) NotifyNewBooking(ctx context.Context, appt models.Appointment) error {
	title := "Nueva cita agendada"
	body := fmt.Sprintf("%s reservó el %s a las %s", appt.PatientName, appt.Date, appt.Time)
	if appt.ServiceName != "" {
		body += fmt.Sprintf(" (%s)", appt.ServiceName)
	}
	return s.SendProfessionalPushNotification(ctx, appt.ProfessionalID, title, body, appointmentData("new_booking", appt))
}

func (s *DefaultNotificationService) NotifyReminder(ctx context.Context, appt models.Appointment) error {
	title := "Recordatorio de cita"
	body := fmt.Sprintf("Mañana a las %s atiendes a %s", appt.Time, appt.PatientName)
	return s.SendProfessionalPushNotification(ctx, appt.ProfessionalID, title, body, appointmentData("reminder", appt))
}

func appointmentData(kind string, appt models.Appointment) map[string]string {
	return map[string]string{
		"type":          kind,
		"appointmentId": appt.ID,
		"date":          appt.Date,
		"time":          appt.Time,
	}
}

// logSender stands in for FCM when Firebase is not configured.
type logSender struct {
	logger *zap.Logger
}

func (l *logSender) Send(_ context.Context, msg *messaging.Message) (string, error) {
	l.logger.Info("Push notification (FCM disabled)",
		zap.String("title", msg.Notification.Title),
		zap.String("body", msg.Notification.Body),
		zap.Any("data", msg.Data))
	return "logged", nil
}
