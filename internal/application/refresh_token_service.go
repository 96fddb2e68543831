package application

import (
	"context"
	"errors"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/keygen"
	"github.com/manorfm/tokenstore/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// RefreshTokenService implements domain.RefreshTokenStore over a RefreshTokenRepository
type RefreshTokenService struct {
	repo   domain.RefreshTokenRepository
	logger *zap.Logger
}

// NewRefreshTokenService creates a new RefreshTokenService
func NewRefreshTokenService(repo domain.RefreshTokenRepository, logger *zap.Logger) *RefreshTokenService {
	return &RefreshTokenService{
		repo:   repo,
		logger: logger,
	}
}

func (s *RefreshTokenService) StoreRefreshToken(ctx context.Context, token *domain.RefreshToken, auth *domain.Authentication) error {
	if token == nil || token.Value == "" {
		return domain.ErrInvalidToken
	}
	if auth == nil {
		return domain.ErrInvalidAuthentication
	}

	record := &domain.RefreshTokenRecord{
		TokenKey:       keygen.TokenKey(token.Value),
		Token:          token,
		Authentication: auth,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		logging.FromContext(ctx, s.logger).Error("Failed to store refresh token",
			zap.String("token_id", record.TokenKey),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *RefreshTokenService) ReadRefreshToken(ctx context.Context, tokenValue string) (*domain.RefreshToken, error) {
	record, err := s.find(ctx, tokenValue)
	if err != nil || record == nil {
		return nil, err
	}
	return record.Token, nil
}

func (s *RefreshTokenService) ReadAuthenticationForRefreshToken(ctx context.Context, tokenValue string) (*domain.Authentication, error) {
	record, err := s.find(ctx, tokenValue)
	if err != nil || record == nil {
		return nil, err
	}
	return record.Authentication, nil
}

func (s *RefreshTokenService) find(ctx context.Context, tokenValue string) (*domain.RefreshTokenRecord, error) {
	tokenKey := keygen.TokenKey(tokenValue)
	if tokenKey == "" {
		return nil, nil
	}

	record, err := s.repo.FindByKey(ctx, tokenKey)
	if errors.Is(err, domain.ErrTokenNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// RemoveRefreshToken deletes only the refresh token record; linked access tokens are
// revoked separately through AccessTokenService.RemoveAccessTokenUsingRefreshToken
func (s *RefreshTokenService) RemoveRefreshToken(ctx context.Context, tokenValue string) error {
	tokenKey := keygen.TokenKey(tokenValue)
	if tokenKey == "" {
		return nil
	}
	return s.repo.DeleteByKey(ctx, tokenKey)
}
