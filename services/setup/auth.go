package setup

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"agenda/database/repository"
	"agenda/models"
	"agenda/services/booking"
	"agenda/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultMasterPin applies until the master PIN is changed for the first time.
const DefaultMasterPin = "0000"

func (s *DefaultSetupService) hashPin(pin string) (string, error) {
	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hash), nil
}

// pinMatches checks pin against the bcrypt hash, or against the plain PIN
// records written before hashing was introduced.
func pinMatches(hash, legacy, pin string) bool {
	if hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
	}
	return legacy != "" && subtle.ConstantTimeCompare([]byte(legacy), []byte(pin)) == 1
}

func (s *DefaultSetupService) defaultMasterPin() string {
	if s.DefaultMasterPin != "" {
		return s.DefaultMasterPin
	}
	return DefaultMasterPin
}

// checkMasterPin returns the stored master record, nil while the default PIN applies.
func (s *DefaultSetupService) checkMasterPin(ctx context.Context, pin string) (*models.MasterConfig, error) {
	master, err := s.Professionals.GetMaster(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		if subtle.ConstantTimeCompare([]byte(s.defaultMasterPin()), []byte(pin)) != 1 {
			return nil, ErrInvalidPin
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load master config: %w", err)
	}
	if !pinMatches(master.PinHash, master.LegacyPin, pin) {
		return nil, ErrInvalidPin
	}
	return master, nil
}

func (s *DefaultSetupService) startSession(ctx context.Context, subject, role, ip string) (*models.LoginResult, error) {
	lifetime := s.TokenLifetime
	if lifetime == 0 {
		lifetime = 12 * time.Hour
	}
	token, err := utils.GenerateToken(subject, role, lifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.Sessions.Save(ctx, utils.HashToken(token), utils.AuthSession{Subject: subject, Role: role, IP: ip}); err != nil {
		return nil, err
	}
	return &models.LoginResult{
		Token:     token,
		Role:      role,
		Subject:   subject,
		ExpiresAt: time.Now().Add(lifetime),
	}, nil
}

func (s *DefaultSetupService) MasterLogin(ctx context.Context, pin, ip string) (*models.LoginResult, error) {
	master, err := s.checkMasterPin(ctx, pin)
	if err != nil {
		if errors.Is(err, ErrInvalidPin) {
			utils.GetLogger().Warn("Master login rejected", zap.String("ip", ip))
		}
		return nil, err
	}
	if master != nil && master.PinHash == "" {
		s.upgradeMasterPin(ctx, pin)
	}
	return s.startSession(ctx, utils.RoleMaster, utils.RoleMaster, ip)
}

func (s *DefaultSetupService) AdminLogin(ctx context.Context, professionalID, pin, ip string) (*models.LoginResult, error) {
	pro, err := s.Professionals.GetByID(ctx, professionalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, booking.ErrProfessionalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load professional %s: %w", professionalID, err)
	}
	if !pinMatches(pro.PinHash, pro.LegacyPin, pin) {
		utils.GetLogger().Warn("Admin login rejected", zap.String("professionalID", professionalID), zap.String("ip", ip))
		return nil, ErrInvalidPin
	}
	if pro.PinHash == "" {
		s.upgradeProfessionalPin(ctx, pro, pin)
	}
	return s.startSession(ctx, professionalID, utils.RoleAdmin, ip)
}

// upgradeMasterPin replaces a plain stored PIN with its hash. Failure only costs
// another upgrade attempt at the next login.
func (s *DefaultSetupService) upgradeMasterPin(ctx context.Context, pin string) {
	hash, err := s.hashPin(pin)
	if err == nil {
		err = s.Professionals.SaveMaster(ctx, &models.MasterConfig{PinHash: hash, UpdatedAt: time.Now()})
	}
	if err != nil {
		utils.GetLogger().Warn("Failed to upgrade master PIN", zap.Error(err))
	}
}

func (s *DefaultSetupService) upgradeProfessionalPin(ctx context.Context, pro *models.Professional, pin string) {
	hash, err := s.hashPin(pin)
	if err == nil {
		pro.PinHash, pro.LegacyPin = hash, ""
		err = s.Professionals.Update(ctx, pro)
	}
	if err != nil {
		utils.GetLogger().Warn("Failed to upgrade professional PIN", zap.String("professionalID", pro.ID), zap.Error(err))
		return
	}
	s.Cache.Invalidate(ctx, pro.ID)
}

func (s *DefaultSetupService) Logout(ctx context.Context, token string) error {
	return s.Sessions.Delete(ctx, utils.HashToken(token))
}

func (s *DefaultSetupService) Authorize(ctx context.Context, token string) (*utils.SessionClaims, error) {
	claims, err := utils.ParseSessionToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	session, err := s.Sessions.Touch(ctx, utils.HashToken(token))
	if errors.Is(err, utils.ErrSessionNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if session.Subject != claims.Subject || session.Role != claims.Role {
		return nil, ErrUnauthorized
	}
	return &claims, nil
}

func (s *DefaultSetupService) ChangeMasterPin(ctx context.Context, req models.ChangePinRequest) error {
	if _, err := s.checkMasterPin(ctx, req.CurrentPin); err != nil {
		return err
	}
	if !utils.ValidatePin(req.NewPin) {
		return utils.NewValidationError("newPin", "PIN must have 4 to 8 digits")
	}
	if req.NewPin != req.ConfirmPin {
		return utils.NewValidationError("confirmPin", "PINs do not match")
	}
	hash, err := s.hashPin(req.NewPin)
	if err != nil {
		return err
	}
	if err := s.Professionals.SaveMaster(ctx, &models.MasterConfig{PinHash: hash, UpdatedAt: time.Now()}); err != nil {
		return fmt.Errorf("failed to save master PIN: %w", err)
	}
	if err := s.Sessions.DeleteSubject(ctx, utils.RoleMaster, utils.RoleMaster); err != nil {
		return err
	}
	utils.GetLogger().Info("Master PIN changed")
	return nil
}
