package models

import "time"

// Service is one bookable offering of a professional.
type Service struct {
	Name     string `bson:"name" json:"name" firestore:"name" binding:"required"`
	Duration int    `bson:"duration" json:"duration" firestore:"duration" binding:"gt=0"` // minutes
}

// Professional is a tenant: it owns its schedule, services, appointments and blocks.
// The slug chosen at creation time is the document id.
type Professional struct {
	ID        string         `bson:"id" json:"id" firestore:"-"`
	Name      string         `bson:"name" json:"name" firestore:"name"`
	Phone     string         `bson:"phone" json:"phone" firestore:"phone"`
	Email     string         `bson:"email" json:"email" firestore:"email"`
	PinHash   string         `bson:"pinHash,omitempty" json:"-" firestore:"pinHash,omitempty"`
	LegacyPin string         `bson:"pin,omitempty" json:"-" firestore:"pin,omitempty"` // plain PIN written by older setup screens
	FCMToken  string         `bson:"fcmToken,omitempty" json:"-" firestore:"fcmToken,omitempty"`
	Settings  ScheduleConfig `bson:"settings" json:"settings" firestore:"settings"`
	Services  []Service      `bson:"services" json:"services" firestore:"services"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
}

// PublicProfessional is what the booking widget is allowed to see.
type PublicProfessional struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Phone    string         `json:"phone,omitempty"`
	Email    string         `json:"email,omitempty"`
	Settings ScheduleConfig `json:"settings"`
	Services []Service      `json:"services"`
}

func (p Professional) Public() PublicProfessional {
	services := p.Services
	if services == nil {
		services = []Service{}
	}
	return PublicProfessional{
		ID:       p.ID,
		Name:     p.Name,
		Phone:    p.Phone,
		Email:    p.Email,
		Settings: p.Settings,
		Services: services,
	}
}

// FindService returns the service with the given name.
func (p Professional) FindService(name string) (Service, bool) {
	for _, s := range p.Services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

// MasterConfig guards the setup screen. It lives at config/master.
type MasterConfig struct {
	PinHash   string    `bson:"pinHash,omitempty" json:"-" firestore:"pinHash,omitempty"`
	LegacyPin string    `bson:"pin,omitempty" json:"-" firestore:"pin,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
}
