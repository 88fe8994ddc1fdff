package handlers

import (
	"net/http"

	"agenda/models"
	"agenda/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the public booking widget.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// GetProfessionalHandler handles GET /api/pros/:id.
func (h *BookingHandler) GetProfessionalHandler(c *gin.Context) {
	pro, err := h.Service.GetProfessional(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, pro.Public())
}

// AvailabilityHandler handles GET /api/pros/:id/availability?date=YYYY-MM-DD.
func (h *BookingHandler) AvailabilityHandler(c *gin.Context) {
	date := c.Query("date")
	slots, err := h.Service.Availability(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

// BookHandler handles POST /api/pros/:id/appointments. A conflict answers 409
// with the day's refreshed slots so the widget can redraw without a reload.
func (h *BookingHandler) BookHandler(c *gin.Context) {
	id := c.Param("id")
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	confirmation, err := h.Service.Book(c.Request.Context(), id, req)
	if err != nil {
		if booking.IsConflict(err) {
			extra := gin.H{}
			if slots, serr := h.Service.Availability(c.Request.Context(), id, req.Date); serr == nil {
				extra["slots"] = slots
			} else {
				getLogger(c).Warn("Failed to refresh slots after conflict", zap.String("professionalID", id), zap.Error(serr))
			}
			respondError(c, err, extra)
			return
		}
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, confirmation)
}
