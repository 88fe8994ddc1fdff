package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"agenda/database/repository"
	appointmentRepo "agenda/database/repository/appointment"
	blockRepo "agenda/database/repository/block"
	professionalRepo "agenda/database/repository/professional"
	"agenda/models"
	"agenda/services/booking"
	"agenda/services/schedule"
	"agenda/services/tasks"
	"agenda/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultAdminService is the production implementation. It always reads the
// professional from the store, never from the profile cache.
type DefaultAdminService struct {
	Professionals professionalRepo.ProfessionalRepository
	Appointments  appointmentRepo.AppointmentRepository
	Blocks        blockRepo.BlockRepository
	Cache         *utils.ProfessionalCache
	Tasks         tasks.Enqueuer
	Metrics       *utils.Metrics
	PhoneRegion   string
	Now           func() time.Time

	liveMu sync.Mutex
	live   map[string]map[*LiveSession]struct{}
}

func (s *DefaultAdminService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultAdminService) professional(ctx context.Context, professionalID string) (*models.Professional, error) {
	p, err := s.Professionals.GetByID(ctx, professionalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, booking.ErrProfessionalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load professional %s: %w", professionalID, err)
	}
	return p, nil
}

// saveProfessional writes p and drops its cached profile.
func (s *DefaultAdminService) saveProfessional(ctx context.Context, p *models.Professional) error {
	p.UpdatedAt = s.now()
	if err := s.Professionals.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return booking.ErrProfessionalNotFound
		}
		return fmt.Errorf("failed to save professional %s: %w", p.ID, err)
	}
	s.Cache.Invalidate(ctx, p.ID)
	return nil
}

func newDayView(cfg models.ScheduleConfig, snap schedule.DaySnapshot) *DayView {
	appts := snap.Appointments
	if appts == nil {
		appts = []models.Appointment{}
	}
	return &DayView{
		Date:         snap.Date,
		Slots:        schedule.ResolveDay(cfg, snap),
		Appointments: appts,
		DayBlocked:   snap.DayBlocked(),
	}
}

func (s *DefaultAdminService) DayView(ctx context.Context, professionalID, date string) (*DayView, error) {
	if !utils.ValidateDate(date) {
		return nil, utils.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	pro, err := s.professional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	snap, err := booking.LoadDay(ctx, s.Appointments, s.Blocks, professionalID, date)
	if err != nil {
		return nil, err
	}
	return newDayView(pro.Settings, snap), nil
}

// monthIndicators counts confirmed appointments per day and marks days with a
// whole-day block.
func monthIndicators(month string, appts []models.Appointment, blocks []models.Block) *models.MonthIndicators {
	out := &models.MonthIndicators{Month: month, Days: map[string]models.DayIndicator{}}
	for _, a := range appts {
		if !a.IsConfirmed() {
			continue
		}
		d := out.Days[a.Date]
		d.Appointments++
		out.Days[a.Date] = d
	}
	for _, b := range blocks {
		if !b.IsAllDay() {
			continue
		}
		d := out.Days[b.Date]
		d.Blocked = true
		out.Days[b.Date] = d
	}
	return out
}

func (s *DefaultAdminService) MonthIndicators(ctx context.Context, professionalID, month string) (*models.MonthIndicators, error) {
	if !utils.ValidateMonth(month) {
		return nil, utils.NewValidationError("month", "month must be YYYY-MM")
	}
	if _, err := s.professional(ctx, professionalID); err != nil {
		return nil, err
	}

	rng := repository.Month(month)
	var (
		appts  []models.Appointment
		blocks []models.Block
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appts, err = s.Appointments.ListRange(gctx, professionalID, rng)
		return err
	})
	g.Go(func() error {
		var err error
		blocks, err = s.Blocks.ListRange(gctx, professionalID, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load month %s: %w", month, err)
	}
	return monthIndicators(month, appts, blocks), nil
}

// ToggleBlock blocks a slot or removes the block covering it. When both a slot
// block and the day block cover the slot, the slot block goes first. Occupied
// slots can be toggled too: the appointment still wins until it is cancelled.
func (s *DefaultAdminService) ToggleBlock(ctx context.Context, professionalID, date, slot string) (*models.ToggleResult, error) {
	logger := utils.GetLogger().With(zap.String("professionalID", professionalID), zap.String("date", date), zap.String("time", slot))

	pro, err := s.professional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if err := booking.ValidateSlot(pro.Settings, date, slot); err != nil {
		return nil, err
	}
	snap, err := booking.LoadDay(ctx, s.Appointments, s.Blocks, professionalID, date)
	if err != nil {
		return nil, err
	}

	if schedule.Classify(slot, pro.Settings, snap) == schedule.OutsideHours {
		return nil, ErrOutsideHours
	}

	if b, ok := schedule.BlockCovering(slot, snap); ok {
		if err := s.Blocks.Delete(ctx, professionalID, b.ID); err != nil {
			return nil, err
		}
		s.Metrics.ObserveBlock("unblock")
		logger.Info("Block removed", zap.String("blockID", b.ID))
		return &models.ToggleResult{Action: "unblocked", BlockID: b.ID}, nil
	}

	b := models.NewBlock(professionalID, date, slot)
	b.CreatedAt = s.now()
	if err := s.Blocks.Put(ctx, &b); err != nil {
		return nil, err
	}
	s.Metrics.ObserveBlock("block")
	logger.Info("Slot blocked", zap.String("blockID", b.ID))
	return &models.ToggleResult{Action: "blocked", BlockID: b.ID}, nil
}

func (s *DefaultAdminService) BlockDay(ctx context.Context, professionalID, date string) error {
	if !utils.ValidateDate(date) {
		return utils.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	if _, err := s.professional(ctx, professionalID); err != nil {
		return err
	}
	b := models.NewBlock(professionalID, date, models.AllDay)
	b.CreatedAt = s.now()
	if err := s.Blocks.Put(ctx, &b); err != nil {
		return err
	}
	s.Metrics.ObserveBlock("block_day")
	return nil
}

// UnblockDay removes every block of the date, slot blocks included.
func (s *DefaultAdminService) UnblockDay(ctx context.Context, professionalID, date string) (int, error) {
	if !utils.ValidateDate(date) {
		return 0, utils.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	if _, err := s.professional(ctx, professionalID); err != nil {
		return 0, err
	}
	n, err := s.Blocks.DeleteByDate(ctx, professionalID, date)
	if err != nil {
		return 0, err
	}
	s.Metrics.ObserveBlock("unblock_day")
	utils.GetLogger().Info("Day unblocked",
		zap.String("professionalID", professionalID), zap.String("date", date), zap.Int("removed", n))
	return n, nil
}
