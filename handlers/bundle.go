package handlers

import (
	"time"

	"agenda/middleware"
	"agenda/services/admin"
	"agenda/services/booking"
	"agenda/services/setup"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups every endpoint handler the router mounts.
type HandlerBundle struct {
	Auth middleware.Authorizer

	// Public booking widget
	GetProfessionalHandler gin.HandlerFunc
	AvailabilityHandler    gin.HandlerFunc
	BookHandler            gin.HandlerFunc

	// Professional admin panel
	AdminLoginHandler        gin.HandlerFunc
	AdminLogoutHandler       gin.HandlerFunc
	DayHandler               gin.HandlerFunc
	MonthHandler             gin.HandlerFunc
	ToggleBlockHandler       gin.HandlerFunc
	BlockDayHandler          gin.HandlerFunc
	UnblockDayHandler        gin.HandlerFunc
	EditAppointmentHandler   gin.HandlerFunc
	CancelAppointmentHandler gin.HandlerFunc
	GetSettingsHandler       gin.HandlerFunc
	SaveSettingsHandler      gin.HandlerFunc
	SaveServicesHandler      gin.HandlerFunc
	UpdateProfileHandler     gin.HandlerFunc
	RemindersHandler         gin.HandlerFunc
	LiveHandler              gin.HandlerFunc

	// Master setup screen
	SetupLoginHandler         gin.HandlerFunc
	SetupLogoutHandler        gin.HandlerFunc
	ChangeMasterPinHandler    gin.HandlerFunc
	ListProfessionalsHandler  gin.HandlerFunc
	CreateProfessionalHandler gin.HandlerFunc
	UpdateProfessionalHandler gin.HandlerFunc
	DeleteProfessionalHandler gin.HandlerFunc
}

// NewHandlerBundle wires the three services into handlers. now may be nil.
func NewHandlerBundle(bookingSvc booking.BookingService, adminSvc admin.AdminService, setupSvc setup.SetupService, loc *time.Location, now func() time.Time, allowedOrigins []string) *HandlerBundle {
	bh := NewBookingHandler(bookingSvc)
	ah := NewAdminHandler(adminSvc, setupSvc, loc)
	if now != nil {
		ah.Now = now
	}
	lh := NewLiveHandler(adminSvc, allowedOrigins)
	sh := NewSetupHandler(setupSvc)

	return &HandlerBundle{
		Auth: setupSvc,

		GetProfessionalHandler: bh.GetProfessionalHandler,
		AvailabilityHandler:    bh.AvailabilityHandler,
		BookHandler:            bh.BookHandler,

		AdminLoginHandler:        ah.LoginHandler,
		AdminLogoutHandler:       ah.LogoutHandler,
		DayHandler:               ah.DayHandler,
		MonthHandler:             ah.MonthHandler,
		ToggleBlockHandler:       ah.ToggleBlockHandler,
		BlockDayHandler:          ah.BlockDayHandler,
		UnblockDayHandler:        ah.UnblockDayHandler,
		EditAppointmentHandler:   ah.EditAppointmentHandler,
		CancelAppointmentHandler: ah.CancelAppointmentHandler,
		GetSettingsHandler:       ah.GetSettingsHandler,
		SaveSettingsHandler:      ah.SaveSettingsHandler,
		SaveServicesHandler:      ah.SaveServicesHandler,
		UpdateProfileHandler:     ah.UpdateProfileHandler,
		RemindersHandler:         ah.RemindersHandler,
		LiveHandler:              lh.LiveHandler,

		SetupLoginHandler:         sh.LoginHandler,
		SetupLogoutHandler:        sh.LogoutHandler,
		ChangeMasterPinHandler:    sh.ChangeMasterPinHandler,
		ListProfessionalsHandler:  sh.ListProfessionalsHandler,
		CreateProfessionalHandler: sh.CreateProfessionalHandler,
		UpdateProfessionalHandler: sh.UpdateProfessionalHandler,
		DeleteProfessionalHandler: sh.DeleteProfessionalHandler,
	}
}
