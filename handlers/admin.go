package handlers

import (
	"net/http"
	"time"

	"agenda/middleware"
	"agenda/models"
	"agenda/services/admin"
	"agenda/services/setup"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves a professional's PIN-gated panel under /api/pros/:id/admin.
type AdminHandler struct {
	Service  admin.AdminService
	Auth     setup.SetupService
	Location *time.Location
	Now      func() time.Time
}

func NewAdminHandler(svc admin.AdminService, auth setup.SetupService, loc *time.Location) *AdminHandler {
	return &AdminHandler{Service: svc, Auth: auth, Location: loc, Now: time.Now}
}

func (h *AdminHandler) now() time.Time {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if h.Location != nil {
		now = now.In(h.Location)
	}
	return now
}

type toggleBlockRequest struct {
	Date string `json:"date" binding:"required,isodate"`
	Time string `json:"time" binding:"required,hhmm"`
}

type settingsRequest struct {
	Settings models.ScheduleConfig `json:"settings"`
}

type servicesRequest struct {
	Services []models.Service `json:"services"`
}

// LoginHandler handles POST /api/pros/:id/admin/login.
func (h *AdminHandler) LoginHandler(c *gin.Context) {
	var req models.PinLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.Auth.AdminLogin(c.Request.Context(), c.Param("id"), req.Pin, middleware.ClientIP(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

// LogoutHandler handles POST /api/pros/:id/admin/logout.
func (h *AdminHandler) LogoutHandler(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// DayHandler handles GET /day?date=.
func (h *AdminHandler) DayHandler(c *gin.Context) {
	view, err := h.Service.DayView(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MonthHandler handles GET /month?month=.
func (h *AdminHandler) MonthHandler(c *gin.Context) {
	marks, err := h.Service.MonthIndicators(c.Request.Context(), c.Param("id"), c.Query("month"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, marks)
}

// ToggleBlockHandler handles POST /blocks/toggle.
func (h *AdminHandler) ToggleBlockHandler(c *gin.Context) {
	var req toggleBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.Service.ToggleBlock(c.Request.Context(), c.Param("id"), req.Date, req.Time)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BlockDayHandler handles PUT /blocks/day/:date.
func (h *AdminHandler) BlockDayHandler(c *gin.Context) {
	date := c.Param("date")
	if err := h.Service.BlockDay(c.Request.Context(), c.Param("id"), date); err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "blocked": true})
}

// UnblockDayHandler handles DELETE /blocks/day/:date.
func (h *AdminHandler) UnblockDayHandler(c *gin.Context) {
	date := c.Param("date")
	removed, err := h.Service.UnblockDay(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "blocked": false, "removed": removed})
}

// EditAppointmentHandler handles PATCH /appointments/:apptId.
func (h *AdminHandler) EditAppointmentHandler(c *gin.Context) {
	var patch models.AppointmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		bindError(c, err)
		return
	}
	appt, err := h.Service.EditAppointment(c.Request.Context(), c.Param("id"), c.Param("apptId"), patch)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CancelAppointmentHandler handles DELETE /appointments/:apptId.
func (h *AdminHandler) CancelAppointmentHandler(c *gin.Context) {
	id, apptID := c.Param("id"), c.Param("apptId")
	if err := h.Service.CancelAppointment(c.Request.Context(), id, apptID); err != nil {
		respondError(c, err, nil)
		return
	}
	getLogger(c).Info("Appointment cancelled from admin", zap.String("professionalID", id), zap.String("appointmentID", apptID))
	c.JSON(http.StatusOK, gin.H{"id": apptID, "status": models.StatusCancelled})
}

// GetSettingsHandler handles GET /settings.
func (h *AdminHandler) GetSettingsHandler(c *gin.Context) {
	cfg, err := h.Service.Settings(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": cfg})
}

// SaveSettingsHandler handles PUT /settings.
func (h *AdminHandler) SaveSettingsHandler(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cfg, err := h.Service.SaveSettings(c.Request.Context(), c.Param("id"), req.Settings)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": cfg})
}

// SaveServicesHandler handles PUT /services.
func (h *AdminHandler) SaveServicesHandler(c *gin.Context) {
	var req servicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	services, err := h.Service.SaveServices(c.Request.Context(), c.Param("id"), req.Services)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// UpdateProfileHandler handles PUT /profile.
func (h *AdminHandler) UpdateProfileHandler(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	pro, err := h.Service.UpdateProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, pro.Public())
}

// RemindersHandler handles GET /reminders.
func (h *AdminHandler) RemindersHandler(c *gin.Context) {
	items, err := h.Service.Reminders(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": items})
}
