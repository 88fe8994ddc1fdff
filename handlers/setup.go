package handlers

import (
	"net/http"

	"agenda/middleware"
	"agenda/models"
	"agenda/services/setup"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupHandler serves the master screen under /api/setup.
type SetupHandler struct {
	Service setup.SetupService
}

func NewSetupHandler(svc setup.SetupService) *SetupHandler {
	return &SetupHandler{Service: svc}
}

// LoginHandler handles POST /api/setup/login.
func (h *SetupHandler) LoginHandler(c *gin.Context) {
	var req models.PinLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.Service.MasterLogin(c.Request.Context(), req.Pin, middleware.ClientIP(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

// LogoutHandler handles POST /api/setup/logout.
func (h *SetupHandler) LogoutHandler(c *gin.Context) {
	if err := h.Service.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ChangeMasterPinHandler handles PUT /api/setup/master-pin.
func (h *SetupHandler) ChangeMasterPinHandler(c *gin.Context) {
	var req models.ChangePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Service.ChangeMasterPin(c.Request.Context(), req); err != nil {
		respondError(c, err, nil)
		return
	}
	getLogger(c).Info("Master PIN changed", zap.String("ip", middleware.ClientIP(c)))
	c.JSON(http.StatusOK, gin.H{"message": "Master PIN updated"})
}

// ListProfessionalsHandler handles GET /api/setup/professionals.
func (h *SetupHandler) ListProfessionalsHandler(c *gin.Context) {
	pros, err := h.Service.ListProfessionals(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	out := make([]models.PublicProfessional, 0, len(pros))
	for _, p := range pros {
		out = append(out, p.Public())
	}
	c.JSON(http.StatusOK, gin.H{"professionals": out})
}

// CreateProfessionalHandler handles POST /api/setup/professionals.
func (h *SetupHandler) CreateProfessionalHandler(c *gin.Context) {
	var req models.CreateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	pro, err := h.Service.CreateProfessional(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, pro.Public())
}

// UpdateProfessionalHandler handles PUT /api/setup/professionals/:id.
func (h *SetupHandler) UpdateProfessionalHandler(c *gin.Context) {
	var req models.UpdateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	pro, err := h.Service.UpdateProfessional(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, pro.Public())
}

// DeleteProfessionalHandler handles DELETE /api/setup/professionals/:id.
func (h *SetupHandler) DeleteProfessionalHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.DeleteProfessional(c.Request.Context(), id); err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
