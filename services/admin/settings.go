package admin

import (
	"context"
	"strings"

	"agenda/models"
	"agenda/utils"
)

const (
	minSlotInterval = 5
	maxSlotInterval = 240
)

func (s *DefaultAdminService) Settings(ctx context.Context, professionalID string) (models.ScheduleConfig, error) {
	pro, err := s.professional(ctx, professionalID)
	if err != nil {
		return models.ScheduleConfig{}, err
	}
	return pro.Settings, nil
}

// ValidateSettings checks a schedule before it is saved. Empty bounds are
// allowed and mean "no limit".
func ValidateSettings(cfg models.ScheduleConfig) error {
	fields := []struct{ name, value string }{
		{"startTime", cfg.StartTime},
		{"endTime", cfg.EndTime},
		{"lunchStart", cfg.LunchStart},
		{"lunchEnd", cfg.LunchEnd},
	}
	for _, f := range fields {
		if f.value != "" && !utils.ValidateTimeOfDay(f.value) {
			return utils.NewValidationError(f.name, "time must be HH:MM")
		}
	}
	if cfg.StartTime != "" && cfg.EndTime != "" && cfg.StartTime >= cfg.EndTime {
		return utils.NewValidationError("endTime", "end time must be after start time")
	}
	if (cfg.LunchStart == "") != (cfg.LunchEnd == "") {
		return utils.NewValidationError("lunchEnd", "set both lunch bounds or none")
	}
	if cfg.HasLunch() && cfg.LunchStart >= cfg.LunchEnd {
		return utils.NewValidationError("lunchEnd", "lunch end must be after lunch start")
	}
	if cfg.SlotInterval != 0 && (cfg.SlotInterval < minSlotInterval || cfg.SlotInterval > maxSlotInterval) {
		return utils.NewValidationError("slotInterval", "interval must be between 5 and 240 minutes")
	}
	return nil
}

func (s *DefaultAdminService) SaveSettings(ctx context.Context, professionalID string, cfg models.ScheduleConfig) (models.ScheduleConfig, error) {
	if err := ValidateSettings(cfg); err != nil {
		return models.ScheduleConfig{}, err
	}
	if cfg.SlotInterval == 0 {
		cfg.SlotInterval = models.DefaultSlotInterval
	}
	pro, err := s.professional(ctx, professionalID)
	if err != nil {
		return models.ScheduleConfig{}, err
	}
	pro.Settings = cfg
	if err := s.saveProfessional(ctx, pro); err != nil {
		return models.ScheduleConfig{}, err
	}
	s.broadcastSettings(professionalID, cfg)
	return cfg, nil
}

// SaveServices replaces the service list. Names are trimmed and must be
// unique, ignoring case.
func (s *DefaultAdminService) SaveServices(ctx context.Context, professionalID string, services []models.Service) ([]models.Service, error) {
	seen := make(map[string]bool, len(services))
	clean := make([]models.Service, 0, len(services))
	for _, svc := range services {
		name := strings.TrimSpace(svc.Name)
		if name == "" {
			return nil, utils.NewValidationError("services", "service name is required")
		}
		if seen[strings.ToLower(name)] {
			return nil, utils.NewValidationError("services", "duplicate service "+name)
		}
		if svc.Duration <= 0 {
			return nil, utils.NewValidationError("services", "duration of "+name+" must be positive")
		}
		seen[strings.ToLower(name)] = true
		clean = append(clean, models.Service{Name: name, Duration: svc.Duration})
	}

	pro, err := s.professional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	pro.Services = clean
	if err := s.saveProfessional(ctx, pro); err != nil {
		return nil, err
	}
	return clean, nil
}

func (s *DefaultAdminService) UpdateProfile(ctx context.Context, professionalID string, update models.ProfileUpdate) (*models.Professional, error) {
	name := strings.TrimSpace(update.Name)
	if name == "" {
		return nil, utils.NewValidationError("name", "name is required")
	}
	if update.Phone != "" && !utils.ValidatePhone(update.Phone) {
		return nil, utils.NewValidationError("phone", "phone must have 9 digits")
	}
	if !utils.ValidateEmail(update.Email) {
		return nil, utils.NewValidationError("email", "email is not valid")
	}

	pro, err := s.professional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	pro.Name = name
	pro.Phone = utils.NormalizePhone(update.Phone)
	pro.Email = strings.TrimSpace(update.Email)
	if update.FCMToken != nil {
		pro.FCMToken = *update.FCMToken
	}
	if err := s.saveProfessional(ctx, pro); err != nil {
		return nil, err
	}
	return pro, nil
}
