package schedule

import (
	"fmt"
	"iter"
	"slices"

	"agenda/models"
)

// Candidate slots run from DayStart (inclusive) to DayEnd (exclusive), in
// minutes after midnight. With the default interval this yields 06:00 … 21:45.
const (
	DayStart = 6 * 60
	DayEnd   = 22 * 60
)

// GenerateTimeSlots yields every candidate slot for the interval. The
// sequence is stateless: ranging over it twice yields the same values.
// A non-positive interval falls back to the default one.
func GenerateTimeSlots(interval int) iter.Seq[string] {
	if interval <= 0 {
		interval = models.DefaultSlotInterval
	}
	return func(yield func(string) bool) {
		for m := DayStart; m < DayEnd; m += interval {
			if !yield(FormatMinutes(m)) {
				return
			}
		}
	}
}

// TimeSlots collects GenerateTimeSlots into a slice.
func TimeSlots(interval int) []string {
	return slices.Collect(GenerateTimeSlots(interval))
}

// SlotCount is ceil((DayEnd-DayStart)/interval).
func SlotCount(interval int) int {
	if interval <= 0 {
		interval = models.DefaultSlotInterval
	}
	span := DayEnd - DayStart
	return (span + interval - 1) / interval
}

// FormatMinutes renders minutes after midnight as "HH:MM".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
