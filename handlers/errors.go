package handlers

import (
	"errors"
	"net/http"

	"agenda/services/admin"
	"agenda/services/booking"
	"agenda/services/setup"
	"agenda/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorStatus maps service errors onto HTTP statuses.
func errorStatus(err error) int {
	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, setup.ErrInvalidPin), errors.Is(err, setup.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, booking.ErrProfessionalNotFound), errors.Is(err, admin.ErrAppointmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrSlotTaken),
		errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, admin.ErrOutsideHours),
		errors.Is(err, setup.ErrProfessionalExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error", "message"} for err. Store failures are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, err error, extra gin.H) {
	status := errorStatus(err)
	body := gin.H{}
	for k, v := range extra {
		body[k] = v
	}

	var ve *utils.ValidationError
	switch {
	case status == http.StatusInternalServerError:
		getLogger(c).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		body["error"] = "Internal Server Error"
		body["message"] = "An unexpected error occurred. Please try again later."
	case errors.As(err, &ve):
		body["error"] = "Invalid input"
		body["message"] = ve.Message
		body["field"] = ve.Field
	default:
		body["error"] = http.StatusText(status)
		body["message"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// bindError answers a request whose body could not be bound.
func bindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
}
