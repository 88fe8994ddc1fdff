package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agenda/config"
	"agenda/cron"
	"agenda/database"
	"agenda/handlers"
	"agenda/routes"
	"agenda/services/admin"
	"agenda/services/booking"
	"agenda/services/notification"
	"agenda/services/setup"
	"agenda/services/tasks"
	"agenda/utils"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// needsFirebase reports whether the store or push notifications use Firebase.
func needsFirebase() bool {
	cfg := config.AppConfig
	return cfg.StoreDriver == database.DriverFirestore || cfg.StoreDriver == "" ||
		cfg.FirebaseCredentials != "" || cfg.FirebaseProjectID != ""
}

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer utils.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.RegisterBindingValidators()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app *firebase.App
	if needsFirebase() {
		app = utils.FirebaseInit()
	}

	store, err := database.NewStore(ctx, app)
	if err != nil {
		logger.Fatal("main: failed to open store", zap.String("driver", config.AppConfig.StoreDriver), zap.Error(err))
	}
	utils.InitRedis()

	loc := config.Location()
	metrics := utils.NewMetrics(nil)
	profileCache := utils.NewProfessionalCache(utils.GetCacheClient(), utils.ProfessionalCacheTTL)
	sessions := utils.NewSessionStore(utils.GetAuthCacheClient(), config.SessionTTL())

	// background jobs.
	queue := asynq.NewClient(cron.QueueRedisOpt())
	enqueuer := &tasks.AsynqEnqueuer{
		Client:    queue,
		Lead:      time.Duration(config.AppConfig.ReminderLeadHours) * time.Hour,
		Location:  loc,
		Reminders: config.AppConfig.RemindersEnabled,
	}

	var sender notification.Sender
	if utils.FCMClient != nil {
		sender = utils.FCMClient
	}
	notificationService, err := notification.NewDefaultNotificationService(store.Professionals, sender)
	if err != nil {
		logger.Fatal("main: failed to initialize notification service", zap.Error(err))
	}
	worker := cron.InitReminderWorker(store.Appointments, notificationService)

	// services.
	bookingService := &booking.DefaultBookingService{
		Professionals: store.Professionals,
		Appointments:  store.Appointments,
		Blocks:        store.Blocks,
		Cache:         profileCache,
		Tasks:         enqueuer,
		Metrics:       metrics,
		PhoneRegion:   config.AppConfig.PhoneRegion,
		Location:      loc,
	}
	adminService := &admin.DefaultAdminService{
		Professionals: store.Professionals,
		Appointments:  store.Appointments,
		Blocks:        store.Blocks,
		Cache:         profileCache,
		Tasks:         enqueuer,
		Metrics:       metrics,
		PhoneRegion:   config.AppConfig.PhoneRegion,
		Now:           func() time.Time { return time.Now().In(loc) },
	}
	setupService := &setup.DefaultSetupService{
		Professionals:    store.Professionals,
		Appointments:     store.Appointments,
		Blocks:           store.Blocks,
		Sessions:         sessions,
		Cache:            profileCache,
		DefaultMasterPin: config.AppConfig.DefaultMasterPin,
	}

	health := map[string]utils.Pinger{
		"store":      store,
		"redisCache": utils.PingerFunc(func(ctx context.Context) error { return utils.GetCacheClient().Ping(ctx).Err() }),
		"redisAuth":  utils.PingerFunc(func(ctx context.Context) error { return utils.GetAuthCacheClient().Ping(ctx).Err() }),
	}
	utils.StartHealthMonitor(ctx, time.Minute, health)

	router := gin.New()
	handlerBundle := handlers.NewHandlerBundle(bookingService, adminService, setupService, loc, nil, config.AllowedOrigins())
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		AllowedOrigins:      config.AllowedOrigins(),
		RequestsPerMin:      config.AppConfig.MaxRequestsPerMin,
		LoginRequestsPerMin: config.AppConfig.LoginRequestsPerMin,
		Health:              health,
	})

	srv := &http.Server{
		Addr:              ":" + config.AppConfig.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("port", config.AppConfig.AppPort),
			zap.String("store", store.Driver),
			zap.String("env", config.GetEnv()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := queue.Close(); err != nil {
		logger.Warn("Failed to close task queue", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Warn("Failed to close store", zap.Error(err))
	}
	logger.Info("Server exited")
}
