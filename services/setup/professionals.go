package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agenda/database/repository"
	appointmentRepo "agenda/database/repository/appointment"
	blockRepo "agenda/database/repository/block"
	professionalRepo "agenda/database/repository/professional"
	"agenda/models"
	"agenda/services/booking"
	"agenda/utils"

	"go.uber.org/zap"
)

// DefaultSetupService is the production implementation.
type DefaultSetupService struct {
	Professionals    professionalRepo.ProfessionalRepository
	Appointments     appointmentRepo.AppointmentRepository
	Blocks           blockRepo.BlockRepository
	Sessions         *utils.SessionStore
	Cache            *utils.ProfessionalCache
	DefaultMasterPin string
	TokenLifetime    time.Duration
	HashCost         int
}

func validateContact(name, phone, email string) error {
	if strings.TrimSpace(name) == "" {
		return utils.NewValidationError("name", "name is required")
	}
	if phone != "" && !utils.ValidatePhone(phone) {
		return utils.NewValidationError("phone", "phone must have 9 digits")
	}
	if !utils.ValidateEmail(email) {
		return utils.NewValidationError("email", "email is not valid")
	}
	return nil
}

func (s *DefaultSetupService) ListProfessionals(ctx context.Context) ([]models.Professional, error) {
	pros, err := s.Professionals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return pros, nil
}

// CreateProfessional registers a professional with the default schedule and
// no services. The id is the slug of the public booking link.
func (s *DefaultSetupService) CreateProfessional(ctx context.Context, req models.CreateProfessionalRequest) (*models.Professional, error) {
	id := strings.TrimSpace(req.ID)
	if !utils.ValidateSlug(id) {
		return nil, utils.NewValidationError("id", "use at least 3 lowercase letters, digits or dashes")
	}
	if err := validateContact(req.Name, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if !utils.ValidatePin(req.Pin) {
		return nil, utils.NewValidationError("pin", "PIN must have 4 to 8 digits")
	}
	hash, err := s.hashPin(req.Pin)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pro := &models.Professional{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		Phone:     utils.NormalizePhone(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		PinHash:   hash,
		Settings:  models.DefaultScheduleConfig(),
		Services:  []models.Service{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Professionals.Create(ctx, pro); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrProfessionalExists
		}
		return nil, fmt.Errorf("failed to create professional: %w", err)
	}
	utils.GetLogger().Info("Professional created", zap.String("professionalID", id))
	return pro, nil
}

func (s *DefaultSetupService) UpdateProfessional(ctx context.Context, professionalID string, req models.UpdateProfessionalRequest) (*models.Professional, error) {
	if err := validateContact(req.Name, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if req.Pin != "" && !utils.ValidatePin(req.Pin) {
		return nil, utils.NewValidationError("pin", "PIN must have 4 to 8 digits")
	}

	pro, err := s.Professionals.GetByID(ctx, professionalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, booking.ErrProfessionalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load professional %s: %w", professionalID, err)
	}

	pro.Name = strings.TrimSpace(req.Name)
	pro.Phone = utils.NormalizePhone(req.Phone)
	pro.Email = strings.TrimSpace(req.Email)
	if req.Pin != "" {
		if pro.PinHash, err = s.hashPin(req.Pin); err != nil {
			return nil, err
		}
		pro.LegacyPin = ""
	}
	pro.UpdatedAt = time.Now()
	if err := s.Professionals.Update(ctx, pro); err != nil {
		return nil, fmt.Errorf("failed to update professional %s: %w", professionalID, err)
	}
	s.Cache.Invalidate(ctx, professionalID)
	if req.Pin != "" {
		if err := s.Sessions.DeleteSubject(ctx, utils.RoleAdmin, professionalID); err != nil {
			return nil, err
		}
	}
	return pro, nil
}

// DeleteProfessional removes the appointments and blocks first, so a failure
// halfway leaves a professional that can be deleted again.
func (s *DefaultSetupService) DeleteProfessional(ctx context.Context, professionalID string) error {
	if _, err := s.Professionals.GetByID(ctx, professionalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return booking.ErrProfessionalNotFound
		}
		return fmt.Errorf("failed to load professional %s: %w", professionalID, err)
	}
	if err := s.Appointments.DeleteAll(ctx, professionalID); err != nil {
		return err
	}
	if err := s.Blocks.DeleteAll(ctx, professionalID); err != nil {
		return err
	}
	if err := s.Professionals.Delete(ctx, professionalID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete professional %s: %w", professionalID, err)
	}
	s.Cache.Invalidate(ctx, professionalID)
	if err := s.Sessions.DeleteSubject(ctx, utils.RoleAdmin, professionalID); err != nil {
		return err
	}
	utils.GetLogger().Info("Professional deleted", zap.String("professionalID", professionalID))
	return nil
}
