package models

import "time"

// AllDay is the block time that closes a whole date.
const AllDay = "all"

// Block is a manual exclusion of one slot, or of a whole day when Time is AllDay.
type Block struct {
	ID             string    `bson:"id" json:"id" firestore:"-"` // {date}_{time}
	ProfessionalID string    `bson:"professionalId" json:"professionalId" firestore:"professionalId"`
	Date           string    `bson:"date" json:"date" firestore:"date"`
	Time           string    `bson:"time" json:"time" firestore:"time"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
}

// BlockID composes the deterministic id of a block so that re-blocking overwrites.
func BlockID(date, slot string) string {
	return date + "_" + slot
}

func (b Block) IsAllDay() bool {
	return b.Time == AllDay
}

// NewBlock builds a block with its composite id.
func NewBlock(professionalID, date, slot string) Block {
	return Block{
		ID:             BlockID(date, slot),
		ProfessionalID: professionalID,
		Date:           date,
		Time:           slot,
	}
}
