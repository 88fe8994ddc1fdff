package booking

import (
	"slices"
	"strings"

	"agenda/models"
	"agenda/services/schedule"
	"agenda/utils"
)

// PatientFields are the intake fields shared by booking and admin edits.
type PatientFields struct {
	Name  string
	Phone string
	Email string
	Rut   string
}

// ValidatePatient checks the intake fields: name required, 9 digit phone,
// optional email, optional RUT with a valid check digit. Values are checked
// as they are stored, trimmed.
func ValidatePatient(p PatientFields) error {
	p.Email, p.Rut = strings.TrimSpace(p.Email), strings.TrimSpace(p.Rut)
	if strings.TrimSpace(p.Name) == "" {
		return utils.NewValidationError("patientName", "name is required")
	}
	if !utils.ValidatePhone(p.Phone) {
		return utils.NewValidationError("patientPhone", "phone must have 9 digits")
	}
	if !utils.ValidateEmail(p.Email) {
		return utils.NewValidationError("patientEmail", "email is not valid")
	}
	if p.Rut != "" && !utils.ValidateRut(p.Rut) {
		return utils.NewValidationError("patientRut", "RUT is not valid")
	}
	return nil
}

// ValidateSlot checks the date and time formats and that slot is one of the
// generated slots of the professional's interval.
func ValidateSlot(cfg models.ScheduleConfig, date, slot string) error {
	if !utils.ValidateDate(date) {
		return utils.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	if !utils.ValidateTimeOfDay(slot) {
		return utils.NewValidationError("time", "time must be HH:MM")
	}
	if !slices.Contains(schedule.TimeSlots(cfg.Interval()), slot) {
		return utils.NewValidationError("time", "time is not a slot of this schedule")
	}
	return nil
}

func validateRequest(pro *models.Professional, req models.BookingRequest, today string) (models.Service, error) {
	if err := ValidateSlot(pro.Settings, req.Date, req.Time); err != nil {
		return models.Service{}, err
	}
	if req.Date < today {
		return models.Service{}, utils.NewValidationError("date", "date is in the past")
	}

	var svc models.Service
	if len(pro.Services) > 0 {
		var ok bool
		if svc, ok = pro.FindService(req.ServiceName); !ok {
			return models.Service{}, utils.NewValidationError("serviceName", "select one of the offered services")
		}
	}

	return svc, ValidatePatient(PatientFields{
		Name:  req.PatientName,
		Phone: req.PatientPhone,
		Email: req.PatientEmail,
		Rut:   req.PatientRut,
	})
}
