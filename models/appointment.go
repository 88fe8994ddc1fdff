package models

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Appointment is a patient booking. Only confirmed appointments occupy a slot.
type Appointment struct {
	ID              string     `bson:"id" json:"id" firestore:"-"`
	ProfessionalID  string     `bson:"professionalId" json:"professionalId" firestore:"professionalId"`
	Date            string     `bson:"date" json:"date" firestore:"date"` // "YYYY-MM-DD"
	Time            string     `bson:"time" json:"time" firestore:"time"` // "HH:MM"
	Status          string     `bson:"status" json:"status" firestore:"status"`
	ServiceName     string     `bson:"serviceName" json:"serviceName" firestore:"serviceName"`
	ServiceDuration int        `bson:"serviceDuration,omitempty" json:"serviceDuration,omitempty" firestore:"serviceDuration,omitempty"`
	PatientName     string     `bson:"patientName" json:"patientName" firestore:"patientName"`
	PatientPhone    string     `bson:"patientPhone" json:"patientPhone" firestore:"patientPhone"`
	PatientEmail    string     `bson:"patientEmail,omitempty" json:"patientEmail,omitempty" firestore:"patientEmail,omitempty"`
	PatientRut      string     `bson:"patientRut,omitempty" json:"patientRut,omitempty" firestore:"patientRut,omitempty"`
	Notes           string     `bson:"notes,omitempty" json:"notes,omitempty" firestore:"notes,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt,omitempty" json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
	CancelledAt     *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty" firestore:"cancelledAt,omitempty"`
}

func (a Appointment) IsConfirmed() bool {
	return a.Status == StatusConfirmed
}

// AppointmentPatch holds the fields an admin may change. Nil means unchanged.
type AppointmentPatch struct {
	PatientName  *string `json:"patientName"`
	PatientPhone *string `json:"patientPhone"`
	PatientEmail *string `json:"patientEmail"`
	PatientRut   *string `json:"patientRut"`
	Notes        *string `json:"notes"`
	Time         *string `json:"time" binding:"omitempty,hhmm"`
}

// BookingRequest is the patient's intake form.
type BookingRequest struct {
	Date         string `json:"date" binding:"required,isodate"`
	Time         string `json:"time" binding:"required,hhmm"`
	ServiceName  string `json:"serviceName"`
	PatientName  string `json:"patientName"`
	PatientPhone string `json:"patientPhone"`
	PatientEmail string `json:"patientEmail"`
	PatientRut   string `json:"patientRut"`
	Notes        string `json:"notes"`
}

// BookingConfirmation is returned after a successful booking.
type BookingConfirmation struct {
	Appointment  Appointment `json:"appointment"`
	Professional string      `json:"professional"`
	WhatsAppURL  string      `json:"whatsappUrl,omitempty"`
}
