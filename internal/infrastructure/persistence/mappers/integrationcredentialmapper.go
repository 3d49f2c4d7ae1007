package mappers

import (
	"stridesync/internal/domain/integration"
	"stridesync/internal/infrastructure/persistence/models"
	"stridesync/internal/shared/mapper"
)

// IntegrationCredentialMapper handles the conversion between domain
// entities and persistence models.
type IntegrationCredentialMapper interface {
	ToModel(entity *integration.Credential) *models.IntegrationCredentialModel
	ToDomain(model *models.IntegrationCredentialModel) *integration.Credential
	ToDomainList(models []*models.IntegrationCredentialModel) []*integration.Credential
}

type integrationCredentialMapper struct{}

// NewIntegrationCredentialMapper creates a new IntegrationCredentialMapper.
func NewIntegrationCredentialMapper() IntegrationCredentialMapper {
	return &integrationCredentialMapper{}
}

func (m *integrationCredentialMapper) ToModel(entity *integration.Credential) *models.IntegrationCredentialModel {
	if entity == nil {
		return nil
	}
	return &models.IntegrationCredentialModel{
		ID:              entity.ID,
		UserID:          entity.UserID,
		Provider:        entity.Provider,
		Connected:       entity.Connected,
		AthleteID:       entity.AthleteID,
		AccessTokenEnc:  entity.AccessTokenEnc,
		RefreshTokenEnc: entity.RefreshTokenEnc,
		ExpiresAt:       entity.ExpiresAt,
		LastSyncedAt:    entity.LastSyncedAt,
		ConnectedAt:     entity.ConnectedAt,
		CreatedAt:       entity.CreatedAt,
		UpdatedAt:       entity.UpdatedAt,
	}
}

func (m *integrationCredentialMapper) ToDomain(model *models.IntegrationCredentialModel) *integration.Credential {
	if model == nil {
		return nil
	}
	return &integration.Credential{
		ID:              model.ID,
		UserID:          model.UserID,
		Provider:        model.Provider,
		Connected:       model.Connected,
		AthleteID:       model.AthleteID,
		AccessTokenEnc:  model.AccessTokenEnc,
		RefreshTokenEnc: model.RefreshTokenEnc,
		ExpiresAt:       model.ExpiresAt,
		LastSyncedAt:    model.LastSyncedAt,
		ConnectedAt:     model.ConnectedAt,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func (m *integrationCredentialMapper) ToDomainList(items []*models.IntegrationCredentialModel) []*integration.Credential {
	return mapper.MapSlicePtr(items, m.ToDomain)
}
