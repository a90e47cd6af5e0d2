package model

import (
	"time"
)

// RecordSlot is the durable backing row for one persisted value.
// One JSON document per key; the student aggregate uses key
// "student:data:<userID>".
type RecordSlot struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:longtext" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (RecordSlot) TableName() string {
	return "record_slots"
}
