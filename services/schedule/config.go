// Package schedule holds the pure availability rules: the business-hours
// predicate, the slot generator and the four-state slot classification.
// Nothing in here touches a store; callers pass snapshots in.
package schedule

import "agenda/models"

// IsOutsideBusinessHours reports whether slot falls outside the configured
// opening hours or inside the lunch window. Times are fixed-width "HH:MM"
// strings so a lexicographic compare is a chronological one. Unset bounds
// are skipped, so a malformed config fails open.
func IsOutsideBusinessHours(slot string, cfg models.ScheduleConfig) bool {
	if cfg.StartTime != "" && slot < cfg.StartTime {
		return true
	}
	if cfg.EndTime != "" && slot > cfg.EndTime {
		return true
	}
	// half-open: a slot exactly at LunchEnd is bookable
	if cfg.HasLunch() && slot >= cfg.LunchStart && slot < cfg.LunchEnd {
		return true
	}
	return false
}
