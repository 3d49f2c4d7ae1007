package models

import "time"

// WorkoutModel is the database persistence model for imported workouts.
// The unique index on (owner, provider, external id) backs the
// idempotent-import guarantee.
type WorkoutModel struct {
	ID              uint    `gorm:"primarykey"`
	OwnerID         uint    `gorm:"not null;uniqueIndex:idx_owner_provider_external;index"`
	Provider        string  `gorm:"not null;size:50;uniqueIndex:idx_owner_provider_external"`
	ExternalID      string  `gorm:"not null;size:64;uniqueIndex:idx_owner_provider_external"`
	Date            time.Time `gorm:"not null"`
	DistanceKm      float64 `gorm:"not null;default:0"`
	DurationSeconds int     `gorm:"not null;default:0"`
	PaceSecPerKm    int     `gorm:"not null;default:0"`
	WorkoutType     string  `gorm:"not null;size:32"`
	Notes           string  `gorm:"type:text"`
	ImportedAt      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (WorkoutModel) TableName() string {
	return "imported_workouts"
}
