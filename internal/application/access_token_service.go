package application

import (
	"context"
	"errors"
	"strings"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/keygen"
	"github.com/manorfm/tokenstore/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// AccessTokenService implements domain.AccessTokenStore over an AccessTokenRepository
type AccessTokenService struct {
	repo   domain.AccessTokenRepository
	logger *zap.Logger
}

// NewAccessTokenService creates a new AccessTokenService
func NewAccessTokenService(repo domain.AccessTokenRepository, logger *zap.Logger) *AccessTokenService {
	return &AccessTokenService{
		repo:   repo,
		logger: logger,
	}
}

// GetAccessToken returns any token stored for an authentication equivalent to auth
func (s *AccessTokenService) GetAccessToken(ctx context.Context, auth *domain.Authentication) (*domain.AccessToken, error) {
	if auth == nil {
		return nil, nil
	}

	records, err := s.repo.FindByAuthenticationKey(ctx, keygen.AuthenticationKey(auth))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].Token, nil
}

func (s *AccessTokenService) StoreAccessToken(ctx context.Context, token *domain.AccessToken, auth *domain.Authentication) error {
	if token == nil || token.Value == "" {
		return domain.ErrInvalidToken
	}
	if auth == nil {
		return domain.ErrInvalidAuthentication
	}

	userName := auth.Name()
	if strings.TrimSpace(userName) == "" {
		userName = domain.NoUserName
	}

	record := &domain.AccessTokenRecord{
		TokenKey:          keygen.TokenKey(token.Value),
		Token:             token,
		AuthenticationKey: keygen.AuthenticationKey(auth),
		Authentication:    auth,
		ClientID:          auth.Request.ClientID,
		UserName:          userName,
		RefreshTokenKey:   keygen.TokenKey(token.RefreshTokenValue()),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		logging.FromContext(ctx, s.logger).Error("Failed to store access token",
			zap.String("token_id", record.TokenKey),
			zap.String("client_id", record.ClientID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *AccessTokenService) ReadAccessToken(ctx context.Context, tokenValue string) (*domain.AccessToken, error) {
	record, err := s.find(ctx, tokenValue)
	if err != nil || record == nil {
		return nil, err
	}
	return record.Token, nil
}

func (s *AccessTokenService) ReadAuthentication(ctx context.Context, tokenValue string) (*domain.Authentication, error) {
	record, err := s.find(ctx, tokenValue)
	if err != nil || record == nil {
		return nil, err
	}
	return record.Authentication, nil
}

func (s *AccessTokenService) find(ctx context.Context, tokenValue string) (*domain.AccessTokenRecord, error) {
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

func (s *AccessTokenService) RemoveAccessToken(ctx context.Context, tokenValue string) error {
	tokenKey := keygen.TokenKey(tokenValue)
	if tokenKey == "" {
		return nil
	}
	return s.repo.DeleteByKey(ctx, tokenKey)
}

// RemoveAccessTokenUsingRefreshToken revokes every access token minted from the refresh token,
// including tokens from earlier rotations that still reference it
func (s *AccessTokenService) RemoveAccessTokenUsingRefreshToken(ctx context.Context, refreshTokenValue string) error {
	refreshKey := keygen.TokenKey(refreshTokenValue)
	if refreshKey == "" {
		return nil
	}

	removed, err := s.repo.DeleteByRefreshTokenKey(ctx, refreshKey)
	if err != nil {
		logging.FromContext(ctx, s.logger).Error("Failed to revoke access tokens for refresh token",
			zap.String("refresh_token_id", refreshKey),
			zap.Error(err))
		return err
	}

	logging.FromContext(ctx, s.logger).Debug("Revoked access tokens for refresh token",
		zap.String("refresh_token_id", refreshKey),
		zap.Int("count", removed))
	return nil
}

func (s *AccessTokenService) FindTokensByClientID(ctx context.Context, clientID string) ([]*domain.AccessToken, error) {
	records, err := s.repo.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return accessTokens(records), nil
}

func (s *AccessTokenService) FindTokensByClientIDAndUserName(ctx context.Context, clientID, userName string) ([]*domain.AccessToken, error) {
	records, err := s.repo.FindByClientIDAndUserName(ctx, clientID, userName)
	if err != nil {
		return nil, err
	}
	return accessTokens(records), nil
}

func accessTokens(records []*domain.AccessTokenRecord) []*domain.AccessToken {
	tokens := make([]*domain.AccessToken, 0, len(records))
	for _, record := range records {
		tokens = append(tokens, record.Token)
	}
	return tokens
}
