// Package setup implements the master screen that manages professionals, and
// the PIN logins of both the master and each professional's admin panel.
package setup

import (
	"context"
	"errors"

	"agenda/models"
	"agenda/utils"
)

var (
	ErrInvalidPin         = errors.New("invalid PIN")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrProfessionalExists = errors.New("a professional with that id already exists")
)

type SetupService interface {
	MasterLogin(ctx context.Context, pin, ip string) (*models.LoginResult, error)
	AdminLogin(ctx context.Context, professionalID, pin, ip string) (*models.LoginResult, error)
	Logout(ctx context.Context, token string) error
	// Authorize validates a token and refreshes its session.
	Authorize(ctx context.Context, token string) (*utils.SessionClaims, error)
	ChangeMasterPin(ctx context.Context, req models.ChangePinRequest) error

	ListProfessionals(ctx context.Context) ([]models.Professional, error)
	CreateProfessional(ctx context.Context, req models.CreateProfessionalRequest) (*models.Professional, error)
	UpdateProfessional(ctx context.Context, professionalID string, req models.UpdateProfessionalRequest) (*models.Professional, error)
	DeleteProfessional(ctx context.Context, professionalID string) error
}
