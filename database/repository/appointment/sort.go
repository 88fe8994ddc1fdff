package appointmentRepo

import (
	"cmp"
	"slices"

	"agenda/models"
)

// sortAppointments orders by date, then time.
func sortAppointments(appts []models.Appointment) {
	slices.SortFunc(appts, func(a, b models.Appointment) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Time, b.Time)
	})
}
