package application

import (
	"context"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/keygen"
	"github.com/manorfm/tokenstore/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// PartnerTokenService implements domain.PartnerTokenStore over a PartnerTokenRepository
type PartnerTokenService struct {
	repo   domain.PartnerTokenRepository
	logger *zap.Logger
}

// NewPartnerTokenService creates a new PartnerTokenService
func NewPartnerTokenService(repo domain.PartnerTokenRepository, logger *zap.Logger) *PartnerTokenService {
	return &PartnerTokenService{
		repo:   repo,
		logger: logger,
	}
}

func (s *PartnerTokenService) GetAccessToken(ctx context.Context, resource *domain.ProtectedResource, auth *domain.Authentication) (*domain.AccessToken, error) {
	if resource == nil {
		return nil, nil
	}

	records, err := s.repo.FindByAuthenticationKey(ctx, keygen.ClientKey(resource, auth))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].Token, nil
}

// SaveAccessToken stores token under its raw value. auth may be nil for tokens obtained without a local user.
func (s *PartnerTokenService) SaveAccessToken(ctx context.Context, resource *domain.ProtectedResource, auth *domain.Authentication, token *domain.AccessToken) error {
	if resource == nil {
		return domain.ErrInvalidPartner
	}
	if token == nil || token.Value == "" {
		return domain.ErrInvalidToken
	}

	record := &domain.PartnerTokenRecord{
		TokenKey:          token.Value,
		Token:             token,
		AuthenticationKey: keygen.ClientKey(resource, auth),
		UserName:          auth.Name(),
		ClientID:          resource.ClientID,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		logging.FromContext(ctx, s.logger).Error("Failed to save partner token",
			zap.String("partner_id", resource.ID),
			zap.Error(err))
		return err
	}
	return nil
}

// RemoveAccessToken deletes every token held for resource on behalf of auth
func (s *PartnerTokenService) RemoveAccessToken(ctx context.Context, resource *domain.ProtectedResource, auth *domain.Authentication) error {
	if resource == nil {
		return nil
	}

	removed, err := s.repo.DeleteByAuthenticationKey(ctx, keygen.ClientKey(resource, auth))
	if err != nil {
		return err
	}

	logging.FromContext(ctx, s.logger).Debug("Removed partner tokens",
		zap.String("partner_id", resource.ID),
		zap.Int("count", removed))
	return nil
}
