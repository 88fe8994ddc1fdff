package routes

import (
	"net/http"
	"time"

	"agenda/handlers"
	"agenda/middleware"
	"agenda/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries the router settings that come from configuration.
type Options struct {
	AllowedOrigins      []string
	RequestsPerMin      int
	LoginRequestsPerMin int
	// Health lists the dependencies probed by GET /health.
	Health map[string]utils.Pinger
	// Metrics serves GET /metrics; nil means the default Prometheus registry.
	Metrics http.Handler
}

// RegisterPublicRoutes registers the booking widget endpoints.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/pros/:id")
	{
		api.GET("", hb.GetProfessionalHandler)
		api.GET("/availability", hb.AvailabilityHandler)
		api.POST("/appointments", hb.BookHandler)
	}
}

// RegisterAdminRoutes registers a professional's panel. Only login is public.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle, login gin.HandlerFunc) {
	adminGroup := r.Group("/api/pros/:id/admin")
	{
		adminGroup.POST("/login", login, hb.AdminLoginHandler)

		protected := adminGroup.Group("")
		protected.Use(middleware.RequireAdmin(hb.Auth))
		protected.POST("/logout", hb.AdminLogoutHandler)
		protected.GET("/day", hb.DayHandler)
		protected.GET("/month", hb.MonthHandler)
		protected.POST("/blocks/toggle", hb.ToggleBlockHandler)
		protected.PUT("/blocks/day/:date", hb.BlockDayHandler)
		protected.DELETE("/blocks/day/:date", hb.UnblockDayHandler)
		protected.PATCH("/appointments/:apptId", hb.EditAppointmentHandler)
		protected.DELETE("/appointments/:apptId", hb.CancelAppointmentHandler)
		protected.GET("/settings", hb.GetSettingsHandler)
		protected.PUT("/settings", hb.SaveSettingsHandler)
		protected.PUT("/services", hb.SaveServicesHandler)
		protected.PUT("/profile", hb.UpdateProfileHandler)
		protected.GET("/reminders", hb.RemindersHandler)
		protected.GET("/live", hb.LiveHandler)
	}
}

// RegisterSetupRoutes registers the master screen. Only login is public.
func RegisterSetupRoutes(r *gin.Engine, hb *handlers.HandlerBundle, login gin.HandlerFunc) {
	setupGroup := r.Group("/api/setup")
	{
		setupGroup.POST("/login", login, hb.SetupLoginHandler)

		protected := setupGroup.Group("")
		protected.Use(middleware.RequireMaster(hb.Auth))
		protected.POST("/logout", hb.SetupLogoutHandler)
		protected.PUT("/master-pin", hb.ChangeMasterPinHandler)
		protected.GET("/professionals", hb.ListProfessionalsHandler)
		protected.POST("/professionals", hb.CreateProfessionalHandler)
		protected.PUT("/professionals/:id", hb.UpdateProfessionalHandler)
		protected.DELETE("/professionals/:id", hb.DeleteProfessionalHandler)
	}
}

// RegisterHealthRoute registers the health check and the Prometheus scrape endpoint.
func RegisterHealthRoute(r *gin.Engine, deps map[string]utils.Pinger, metrics http.Handler) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.CheckHealth(c.Request.Context(), deps)
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metrics))
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	RegisterHealthRoute(r, opts.Health, opts.Metrics)

	// /health and /metrics are registered ahead of the limiter.
	r.Use(middleware.RateLimitMiddleware(opts.RequestsPerMin))
	login := middleware.RateLimitMiddleware(opts.LoginRequestsPerMin)

	RegisterPublicRoutes(r, hb)
	RegisterAdminRoutes(r, hb, login)
	RegisterSetupRoutes(r, hb, login)
}
