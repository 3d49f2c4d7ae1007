package models

import "time"

// IntegrationCredentialModel is the database persistence model for
// provider connections. Token columns hold ciphertext only.
type IntegrationCredentialModel struct {
	ID              uint   `gorm:"primarykey"`
	UserID          uint   `gorm:"not null;uniqueIndex:idx_user_provider"`
	Provider        string `gorm:"not null;size:50;uniqueIndex:idx_user_provider;index:idx_provider_athlete"`
	Connected       bool   `gorm:"not null;default:false;index"`
	AthleteID       string `gorm:"size:64;index:idx_provider_athlete"`
	AccessTokenEnc  string `gorm:"type:text"`
	RefreshTokenEnc string `gorm:"type:text"`
	ExpiresAt       int64  `gorm:"not null;default:0"`
	LastSyncedAt    *time.Time
	ConnectedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (IntegrationCredentialModel) TableName() string {
	return "integration_credentials"
}
