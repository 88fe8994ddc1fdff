package models

import "time"

// PinLoginRequest is the body of both login screens.
type PinLoginRequest struct {
	Pin string `json:"pin" binding:"required"`
}

// LoginResult is returned after a successful PIN login.
type LoginResult struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ChangePinRequest struct {
	CurrentPin string `json:"currentPin" binding:"required"`
	NewPin     string `json:"newPin" binding:"required"`
	ConfirmPin string `json:"confirmPin" binding:"required"`
}

// CreateProfessionalRequest is filled in on the setup screen. ID is the slug
// that ends up in the booking link.
type CreateProfessionalRequest struct {
	ID    string `json:"id" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Pin   string `json:"pin" binding:"required"`
}

// UpdateProfessionalRequest changes contact data; an empty Pin keeps the current one.
type UpdateProfessionalRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Pin   string `json:"pin"`
}
