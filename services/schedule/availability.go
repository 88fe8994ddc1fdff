package schedule

import (
	"encoding/json"
	"fmt"

	"agenda/models"
)

// SlotState is the availability verdict for one slot on one date.
type SlotState int

// Evaluation order is the declaration order: the first match wins.
const (
	Occupied SlotState = iota
	OutsideHours
	ManuallyBlocked
	Free
)

var stateNames = map[SlotState]string{
	Occupied:        "occupied",
	OutsideHours:    "outside_hours",
	ManuallyBlocked: "blocked",
	Free:            "free",
}

func (s SlotState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("SlotState(%d)", int(s))
}

func (s SlotState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SlotState) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for st, n := range stateNames {
		if n == name {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown slot state %q", name)
}

// DaySnapshot is a read of one professional's blocks and appointments for a
// date. It may be stale; records for other dates are ignored.
type DaySnapshot struct {
	Date         string
	Blocks       []models.Block
	Appointments []models.Appointment
}

// appointmentAt returns the confirmed appointment at slot, if any.
func (d DaySnapshot) appointmentAt(slot string) (models.Appointment, bool) {
	for _, a := range d.Appointments {
		if a.IsConfirmed() && a.Date == d.Date && a.Time == slot {
			return a, true
		}
	}
	return models.Appointment{}, false
}

// blockAt returns the block covering slot. A slot block is preferred over the
// whole-day block so callers can remove the narrower one first.
func (d DaySnapshot) blockAt(slot string) (models.Block, bool) {
	var day *models.Block
	for i, b := range d.Blocks {
		if b.Date != d.Date {
			continue
		}
		if b.Time == slot {
			return b, true
		}
		if b.IsAllDay() && day == nil {
			day = &d.Blocks[i]
		}
	}
	if day != nil {
		return *day, true
	}
	return models.Block{}, false
}

// DayBlocked reports whether the snapshot holds a whole-day block.
func (d DaySnapshot) DayBlocked() bool {
	for _, b := range d.Blocks {
		if b.Date == d.Date && b.IsAllDay() {
			return true
		}
	}
	return false
}

// Classify resolves the state of a single slot.
func Classify(slot string, cfg models.ScheduleConfig, snap DaySnapshot) SlotState {
	if _, ok := snap.appointmentAt(slot); ok {
		return Occupied
	}
	if IsOutsideBusinessHours(slot, cfg) {
		return OutsideHours
	}
	if _, ok := snap.blockAt(slot); ok {
		return ManuallyBlocked
	}
	return Free
}

// IsBookable is the predicate the booking guard re-evaluates before writing.
func IsBookable(slot string, cfg models.ScheduleConfig, snap DaySnapshot) bool {
	return Classify(slot, cfg, snap) == Free
}

// SlotAvailability is one row of the admin day view.
type SlotAvailability struct {
	Time          string              `json:"time"`
	State         SlotState           `json:"state"`
	AppointmentID string              `json:"appointmentId,omitempty"`
	Appointment   *models.Appointment `json:"appointment,omitempty"`
	BlockID       string              `json:"blockId,omitempty"`
}

// ResolveDay classifies every candidate slot of the day, in order.
func ResolveDay(cfg models.ScheduleConfig, snap DaySnapshot) []SlotAvailability {
	out := make([]SlotAvailability, 0, SlotCount(cfg.Interval()))
	for slot := range GenerateTimeSlots(cfg.Interval()) {
		row := SlotAvailability{Time: slot, State: Classify(slot, cfg, snap)}
		switch row.State {
		case Occupied:
			a, _ := snap.appointmentAt(slot)
			row.AppointmentID = a.ID
			row.Appointment = &a
		case ManuallyBlocked:
			b, _ := snap.blockAt(slot)
			row.BlockID = b.ID
		}
		out = append(out, row)
	}
	return out
}

// BookableSlot is one entry of the patient-facing view.
type BookableSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// BookingView drops slots outside business hours and collapses the remaining
// states into available / unavailable.
func BookingView(day []SlotAvailability) []BookableSlot {
	out := make([]BookableSlot, 0, len(day))
	for _, s := range day {
		if s.State == OutsideHours {
			continue
		}
		out = append(out, BookableSlot{Time: s.Time, Available: s.State == Free})
	}
	return out
}

// BlockCovering returns the block that makes slot ManuallyBlocked, if any.
func BlockCovering(slot string, snap DaySnapshot) (models.Block, bool) {
	return snap.blockAt(slot)
}
