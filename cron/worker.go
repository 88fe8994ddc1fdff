package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenda/config"
	"agenda/database/repository"
	appointmentRepo "agenda/database/repository/appointment"
	"agenda/models"
	"agenda/services/notification"
	"agenda/services/tasks"
	"agenda/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection to the queue Redis DB.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewServeMux routes the booking task types to their handlers.
func NewServeMux(appts appointmentRepo.AppointmentRepository, notifSvc notification.NotificationService) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingNotify, handleBookingNotify(appts, notifSvc))
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(appts, notifSvc))
	return mux
}

// InitReminderWorker starts the asynq worker in the background and returns
// the server; the caller owns its Shutdown.
func InitReminderWorker(appts appointmentRepo.AppointmentRepository, notifSvc notification.NotificationService) *asynq.Server {
	logger := utils.GetLogger()
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)
	mux := NewServeMux(appts, notifSvc)

	go func() {
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil || errors.Is(err, asynq.ErrServerClosed) {
				return
			}
			logger.Error("Reminder worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Reminder worker gave up; bookings will not be notified")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// currentAppointment reloads the appointment of a task. It returns nil when
// the task is stale: the appointment is gone, cancelled or moved.
func currentAppointment(ctx context.Context, appts appointmentRepo.AppointmentRepository, p tasks.AppointmentPayload) (*models.Appointment, error) {
	appt, err := appts.GetByID(ctx, p.ProfessionalID, p.AppointmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment %s: %w", p.AppointmentID, err)
	}
	if !appt.IsConfirmed() || appt.Date != p.Date || appt.Time != p.Time {
		return nil, nil
	}
	return appt, nil
}

func handleBookingNotify(appts appointmentRepo.AppointmentRepository, notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		p, err := tasks.ParsePayload(task)
		if err != nil {
			logger.Error("Invalid booking task payload", zap.Error(err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		appt, err := currentAppointment(ctx, appts, p)
		if err != nil {
			return err
		}
		if appt == nil {
			logger.Info("Booking notification dropped, appointment changed", zap.String("appointmentID", p.AppointmentID))
			return nil
		}
		return notifSvc.NotifyNewBooking(ctx, *appt)
	}
}

func handleReminderTask(appts appointmentRepo.AppointmentRepository, notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		p, err := tasks.ParsePayload(task)
		if err != nil {
			logger.Error("Invalid reminder task payload", zap.Error(err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		appt, err := currentAppointment(ctx, appts, p)
		if err != nil {
			return err
		}
		if appt == nil {
			logger.Info("Reminder dropped, appointment changed", zap.String("appointmentID", p.AppointmentID))
			return nil
		}

		logger.Info("Sending reminder",
			zap.String("professionalID", appt.ProfessionalID),
			zap.String("appointmentID", appt.ID),
			zap.String("date", appt.Date),
			zap.String("time", appt.Time))
		if err := notifSvc.NotifyReminder(ctx, *appt); err != nil {
			logger.Error("Failed to send reminder", zap.Error(err))
			return err
		}
		return nil
	}
}
