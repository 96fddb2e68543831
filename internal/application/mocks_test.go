package application

import (
	"context"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockClientRepository is a mock implementation of domain.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *domain.ClientDefinition) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) FindByID(ctx context.Context, clientID string) (*domain.ClientDefinition, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientDefinition), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, client *domain.ClientDefinition) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) UpdateSecret(ctx context.Context, clientID, secretHash string) error {
	args := m.Called(ctx, clientID, secretHash)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, clientID string) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context) ([]*domain.ClientDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ClientDefinition), args.Error(1)
}

// MockAuthorizationCodeRepository is a mock implementation of domain.AuthorizationCodeRepository
type MockAuthorizationCodeRepository struct {
	mock.Mock
}

func (m *MockAuthorizationCodeRepository) Save(ctx context.Context, code *domain.AuthorizationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockAuthorizationCodeRepository) Consume(ctx context.Context, code string) (*domain.Authentication, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Authentication), args.Error(1)
}

// MockAccessTokenRepository is a mock implementation of domain.AccessTokenRepository
type MockAccessTokenRepository struct {
	mock.Mock
}

func (m *MockAccessTokenRepository) Save(ctx context.Context, record *domain.AccessTokenRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAccessTokenRepository) FindByKey(ctx context.Context, tokenKey string) (*domain.AccessTokenRecord, error) {
	args := m.Called(ctx, tokenKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessTokenRecord), args.Error(1)
}

func (m *MockAccessTokenRepository) FindByAuthenticationKey(ctx context.Context, authenticationKey string) ([]*domain.AccessTokenRecord, error) {
	args := m.Called(ctx, authenticationKey)
	return accessRecords(args.Get(0)), args.Error(1)
}

func (m *MockAccessTokenRepository) FindByClientID(ctx context.Context, clientID string) ([]*domain.AccessTokenRecord, error) {
	args := m.Called(ctx, clientID)
	return accessRecords(args.Get(0)), args.Error(1)
}

func (m *MockAccessTokenRepository) FindByClientIDAndUserName(ctx context.Context, clientID, userName string) ([]*domain.AccessTokenRecord, error) {
	args := m.Called(ctx, clientID, userName)
	return accessRecords(args.Get(0)), args.Error(1)
}

func (m *MockAccessTokenRepository) DeleteByKey(ctx context.Context, tokenKey string) error {
	args := m.Called(ctx, tokenKey)
	return args.Error(0)
}

func (m *MockAccessTokenRepository) DeleteByRefreshTokenKey(ctx context.Context, refreshTokenKey string) (int, error) {
	args := m.Called(ctx, refreshTokenKey)
	return args.Int(0), args.Error(1)
}

func accessRecords(v interface{}) []*domain.AccessTokenRecord {
	if v == nil {
		return nil
	}
	return v.([]*domain.AccessTokenRecord)
}

// MockRefreshTokenRepository is a mock implementation of domain.RefreshTokenRepository
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Save(ctx context.Context, record *domain.RefreshTokenRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByKey(ctx context.Context, tokenKey string) (*domain.RefreshTokenRecord, error) {
	args := m.Called(ctx, tokenKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshTokenRecord), args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteByKey(ctx context.Context, tokenKey string) error {
	args := m.Called(ctx, tokenKey)
	return args.Error(0)
}

// MockPartnerTokenRepository is a mock implementation of domain.PartnerTokenRepository
type MockPartnerTokenRepository struct {
	mock.Mock
}

func (m *MockPartnerTokenRepository) Save(ctx context.Context, record *domain.PartnerTokenRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPartnerTokenRepository) FindByAuthenticationKey(ctx context.Context, authenticationKey string) ([]*domain.PartnerTokenRecord, error) {
	args := m.Called(ctx, authenticationKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PartnerTokenRecord), args.Error(1)
}

func (m *MockPartnerTokenRepository) DeleteByAuthenticationKey(ctx context.Context, authenticationKey string) (int, error) {
	args := m.Called(ctx, authenticationKey)
	return args.Int(0), args.Error(1)
}

// MockPartnerRepository is a mock implementation of domain.PartnerRepository
type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) Save(ctx context.Context, partner *domain.Partner) error {
	args := m.Called(ctx, partner)
	return args.Error(0)
}

func (m *MockPartnerRepository) FindByID(ctx context.Context, partnerID string) (*domain.Partner, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

func (m *MockPartnerRepository) Delete(ctx context.Context, partnerID string) error {
	args := m.Called(ctx, partnerID)
	return args.Error(0)
}

func (m *MockPartnerRepository) List(ctx context.Context) ([]*domain.Partner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Partner), args.Error(1)
}

// MockSecretEncoder is a mock implementation of domain.SecretEncoder
type MockSecretEncoder struct {
	mock.Mock
}

func (m *MockSecretEncoder) Encode(secret string) (string, error) {
	args := m.Called(secret)
	return args.String(0), args.Error(1)
}

func (m *MockSecretEncoder) Matches(secret, encoded string) bool {
	args := m.Called(secret, encoded)
	return args.Bool(0)
}
