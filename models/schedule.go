package models

// DefaultSlotInterval is used when a professional has no valid slot interval.
const DefaultSlotInterval = 45

// ScheduleConfig is the business-hours policy of one professional.
// Empty time fields mean "unbounded"; the lunch window only applies when both ends are set.
type ScheduleConfig struct {
	StartTime    string `bson:"startTime" json:"startTime" firestore:"startTime"`          // "HH:MM" or ""
	EndTime      string `bson:"endTime" json:"endTime" firestore:"endTime"`                // "HH:MM" or ""
	LunchStart   string `bson:"lunchStart" json:"lunchStart" firestore:"lunchStart"`       // "HH:MM" or ""
	LunchEnd     string `bson:"lunchEnd" json:"lunchEnd" firestore:"lunchEnd"`             // "HH:MM" or ""
	SlotInterval int    `bson:"slotInterval" json:"slotInterval" firestore:"slotInterval"` // minutes
}

// DefaultScheduleConfig is the configuration given to new professionals.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{SlotInterval: DefaultSlotInterval}
}

// Interval returns the slot interval with the default applied.
func (c ScheduleConfig) Interval() int {
	if c.SlotInterval <= 0 {
		return DefaultSlotInterval
	}
	return c.SlotInterval
}

// HasLunch reports whether the lunch exclusion window is active.
func (c ScheduleConfig) HasLunch() bool {
	return c.LunchStart != "" && c.LunchEnd != ""
}
