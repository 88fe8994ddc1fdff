package booking

import (
	"context"
	"errors"
	"fmt"

	appointmentRepo "agenda/database/repository/appointment"
	blockRepo "agenda/database/repository/block"
	"agenda/models"
	"agenda/services/schedule"

	"golang.org/x/sync/errgroup"
)

// LoadDay reads the blocks and confirmed appointments of a date concurrently.
func LoadDay(ctx context.Context, appts appointmentRepo.AppointmentRepository, blocks blockRepo.BlockRepository, professionalID, date string) (schedule.DaySnapshot, error) {
	snap := schedule.DaySnapshot{Date: date}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Appointments, err = appts.ListByDate(gctx, professionalID, date)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Blocks, err = blocks.ListByDate(gctx, professionalID, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return snap, fmt.Errorf("failed to load %s: %w", date, err)
	}
	return snap, nil
}

// Guard re-validates a slot immediately before an appointment is written and
// then writes through the store's compare-and-swap. The re-check gives the
// precise reason; the CAS closes the window between the read and the write.
type Guard struct {
	Appointments appointmentRepo.AppointmentRepository
	Blocks       blockRepo.BlockRepository
}

func NewGuard(appts appointmentRepo.AppointmentRepository, blocks blockRepo.BlockRepository) *Guard {
	return &Guard{Appointments: appts, Blocks: blocks}
}

// Check resolves slot against a fresh read. ignoreID excludes the appointment
// being moved, so it never conflicts with itself.
func (g *Guard) Check(ctx context.Context, pro *models.Professional, date, slot, ignoreID string) error {
	snap, err := LoadDay(ctx, g.Appointments, g.Blocks, pro.ID, date)
	if err != nil {
		return err
	}
	if ignoreID != "" {
		kept := snap.Appointments[:0]
		for _, a := range snap.Appointments {
			if a.ID != ignoreID {
				kept = append(kept, a)
			}
		}
		snap.Appointments = kept
	}

	switch schedule.Classify(slot, pro.Settings, snap) {
	case schedule.Free:
		return nil
	case schedule.Occupied:
		return ErrSlotTaken
	default:
		return ErrSlotUnavailable
	}
}

// Create confirms a new appointment.
func (g *Guard) Create(ctx context.Context, pro *models.Professional, appt *models.Appointment) error {
	if err := g.Check(ctx, pro, appt.Date, appt.Time, ""); err != nil {
		return err
	}
	if err := g.Appointments.CreateConfirmed(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

// Move writes appt, which keeps its id, onto a new date or time.
func (g *Guard) Move(ctx context.Context, pro *models.Professional, appt *models.Appointment) error {
	if err := g.Check(ctx, pro, appt.Date, appt.Time, appt.ID); err != nil {
		return err
	}
	return g.Appointments.Update(ctx, appt)
}
