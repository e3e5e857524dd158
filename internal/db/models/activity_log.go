package models

import "time"

// ActivityLog is one entry of the back-office audit trail.
type ActivityLog struct {
	ID uint64 `gorm:"primaryKey"`
	// UserID is the acting user (0 for system actions such as seeding).
	UserID uint64 `gorm:"index"`
	// Action is a short human-readable sentence, e.g. "Granted permission process_sales to Cashier".
	Action string `gorm:"size:255;not null"`
	// Details holds a JSON document with the identifiers involved.
	Details   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for the ActivityLog model.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
