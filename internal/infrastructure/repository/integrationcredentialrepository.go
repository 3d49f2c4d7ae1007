package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"stridesync/internal/domain/integration"
	"stridesync/internal/infrastructure/persistence/mappers"
	"stridesync/internal/infrastructure/persistence/models"
)

// IntegrationCredentialRepository implements the integration.Repository
// interface using GORM with Model/Mapper separation.
type IntegrationCredentialRepository struct {
	db     *gorm.DB
	mapper mappers.IntegrationCredentialMapper
}

// NewIntegrationCredentialRepository creates a new IntegrationCredentialRepository.
func NewIntegrationCredentialRepository(db *gorm.DB) integration.Repository {
	return &IntegrationCredentialRepository{
		db:     db,
		mapper: mappers.NewIntegrationCredentialMapper(),
	}
}

// Save inserts the credential, replacing any existing row for the same
// (user, provider) pair so reconnecting overwrites the stale grant.
func (r *IntegrationCredentialRepository) Save(ctx context.Context, cred *integration.Credential) error {
	model := r.mapper.ToModel(cred)

	var existing models.IntegrationCredentialModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", cred.UserID, cred.Provider).
		First(&existing).Error
	switch {
	case err == nil:
		model.ID = existing.ID
		model.CreatedAt = existing.CreatedAt
		if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
			return fmt.Errorf("failed to update integration credential: %w", err)
		}
	case err == gorm.ErrRecordNotFound:
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return fmt.Errorf("failed to create integration credential: %w", err)
		}
	default:
		return fmt.Errorf("failed to look up integration credential: %w", err)
	}

	cred.ID = model.ID
	return nil
}

func (r *IntegrationCredentialRepository) GetByUserID(ctx context.Context, userID uint, provider string) (*integration.Credential, error) {
	var model models.IntegrationCredentialModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get integration credential: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *IntegrationCredentialRepository) GetByAthleteID(ctx context.Context, provider, athleteID string) (*integration.Credential, error) {
	var model models.IntegrationCredentialModel
	err := r.db.WithContext(ctx).
		Where("provider = ? AND athlete_id = ? AND connected = ?", provider, athleteID, true).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get integration credential by athlete: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *IntegrationCredentialRepository) ListConnected(ctx context.Context, provider string) ([]*integration.Credential, error) {
	var credModels []*models.IntegrationCredentialModel
	err := r.db.WithContext(ctx).
		Where("provider = ? AND connected = ?", provider, true).
		Order("id").
		Find(&credModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list connected credentials: %w", err)
	}
	return r.mapper.ToDomainList(credModels), nil
}

// UpdateTokens persists a rotated token pair with a conditional write: the
// row is only touched while its expiry still matches what the caller read.
// When two refreshes race, the loser sees zero rows affected and must
// discard its pair instead of clobbering the winner's refresh token.
func (r *IntegrationCredentialRepository) UpdateTokens(ctx context.Context, cred *integration.Credential, prevExpiresAt int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.IntegrationCredentialModel{}).
		Where("id = ? AND expires_at = ? AND connected = ?", cred.ID, prevExpiresAt, true).
		Updates(map[string]interface{}{
			"access_token_enc":  cred.AccessTokenEnc,
			"refresh_token_enc": cred.RefreshTokenEnc,
			"expires_at":        cred.ExpiresAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update tokens: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Disconnect clears both ciphertexts and the connected flag in one write,
// so no partial credential state is ever observable.
func (r *IntegrationCredentialRepository) Disconnect(ctx context.Context, userID uint, provider string) error {
	result := r.db.WithContext(ctx).
		Model(&models.IntegrationCredentialModel{}).
		Where("user_id = ? AND provider = ?", userID, provider).
		Updates(map[string]interface{}{
			"connected":         false,
			"access_token_enc":  "",
			"refresh_token_enc": "",
			"expires_at":        0,
			"connected_at":      nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to disconnect credential: %w", result.Error)
	}
	return nil
}

func (r *IntegrationCredentialRepository) TouchLastSynced(ctx context.Context, credID uint) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&models.IntegrationCredentialModel{}).
		Where("id = ?", credID).
		Update("last_synced_at", &now).Error
	if err != nil {
		return fmt.Errorf("failed to update last synced at: %w", err)
	}
	return nil
}
