package application

import (
	"context"
	"errors"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// AuthorizationCodeService implements domain.AuthorizationCodeStore over an AuthorizationCodeRepository
type AuthorizationCodeService struct {
	repo   domain.AuthorizationCodeRepository
	logger *zap.Logger
}

// NewAuthorizationCodeService creates a new AuthorizationCodeService
func NewAuthorizationCodeService(repo domain.AuthorizationCodeRepository, logger *zap.Logger) *AuthorizationCodeService {
	return &AuthorizationCodeService{
		repo:   repo,
		logger: logger,
	}
}

func (s *AuthorizationCodeService) StoreCode(ctx context.Context, code string, auth *domain.Authentication) error {
	if code == "" {
		return domain.ErrInvalidAuthorizationCode
	}
	if auth == nil {
		return domain.ErrInvalidAuthentication
	}
	return s.repo.Save(ctx, &domain.AuthorizationCode{Code: code, Authentication: auth})
}

func (s *AuthorizationCodeService) RemoveCode(ctx context.Context, code string) (*domain.Authentication, error) {
	auth, err := s.repo.Consume(ctx, code)
	if errors.Is(err, domain.ErrAuthorizationCodeNotFound) {
		return nil, nil
	}
	if err != nil {
		logging.FromContext(ctx, s.logger).Error("Failed to consume authorization code", zap.Error(err))
		return nil, err
	}
	return auth, nil
}

// CreateCode generates a new code bound to auth
func (s *AuthorizationCodeService) CreateCode(ctx context.Context, auth *domain.Authentication) (string, error) {
	code := domain.NewAuthorizationCode()
	if err := s.StoreCode(ctx, code, auth); err != nil {
		return "", err
	}

	logging.FromContext(ctx, s.logger).Debug("Authorization code issued",
		zap.String("client_id", auth.Request.ClientID))
	return code, nil
}

// ConsumeCode redeems code, failing with ErrInvalidAuthorizationCode when it was never issued or already used
func (s *AuthorizationCodeService) ConsumeCode(ctx context.Context, code string) (*domain.Authentication, error) {
	auth, err := s.RemoveCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if auth == nil {
		return nil, domain.ErrInvalidAuthorizationCode
	}
	return auth, nil
}
