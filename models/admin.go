package models

// Reminder buckets, by how soon the appointment starts.
const (
	ReminderSoon     = "soon" // later today, within three hours
	ReminderToday    = "today"
	ReminderTomorrow = "tomorrow"
	ReminderUpcoming = "upcoming"
)

// ReminderItem is one row of the admin reminder list.
type ReminderItem struct {
	Appointment Appointment `json:"appointment"`
	Bucket      string      `json:"bucket"`
	Message     string      `json:"message"`
	WhatsAppURL string      `json:"whatsappUrl,omitempty"`
}

// DayIndicator marks a calendar day in the admin month view.
type DayIndicator struct {
	Appointments int  `json:"appointments"`
	Blocked      bool `json:"blocked"`
}

// MonthIndicators holds only the days that have something to show.
type MonthIndicators struct {
	Month string                  `json:"month"`
	Days  map[string]DayIndicator `json:"days"`
}

// ProfileUpdate is the admin's own contact data. A nil FCMToken keeps the stored one.
type ProfileUpdate struct {
	Name     string  `json:"name" binding:"required"`
	Phone    string  `json:"phone"`
	Email    string  `json:"email"`
	FCMToken *string `json:"fcmToken"`
}

// ToggleResult tells the admin panel what a slot toggle did.
type ToggleResult struct {
	Action  string `json:"action"` // "blocked" or "unblocked"
	BlockID string `json:"blockId"`
}
