package booking

import (
	"errors"

	"agenda/database/repository"
)

var (
	ErrProfessionalNotFound = errors.New("professional not found")
	// ErrSlotTaken is the store sentinel, so errors.Is matches either.
	ErrSlotTaken = repository.ErrSlotTaken
	// ErrSlotUnavailable covers blocked slots and slots outside business hours.
	ErrSlotUnavailable = errors.New("time slot is not available")
)

// IsConflict reports whether err is a recoverable slot conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrSlotUnavailable)
}
