package application

import (
	"context"
	"testing"
	"time"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/keygen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func userAuth(clientID, user string, scope ...string) *domain.Authentication {
	auth := &domain.Authentication{Request: domain.OAuth2Request{ClientID: clientID, Scope: scope}}
	if user != "" {
		auth.User = &domain.UserAuthentication{Name: user, Authenticated: true}
	}
	return auth
}

func TestAccessTokenService_StoreAccessToken(t *testing.T) {
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	tests := []struct {
		name         string
		token        *domain.AccessToken
		auth         *domain.Authentication
		wantUserName string
		wantRefresh  string
		wantErr      error
	}{
		{
			name: "user token with refresh token",
			token: &domain.AccessToken{
				Value:        "tok-abc",
				ExpiresAt:    expires,
				RefreshToken: &domain.RefreshToken{Value: "ref-abc"},
			},
			auth:         userAuth("c1", "alice", "read"),
			wantUserName: "alice",
			wantRefresh:  keygen.TokenKey("ref-abc"),
		},
		{
			name:         "client credentials token uses placeholder user name",
			token:        &domain.AccessToken{Value: "tok-cc"},
			auth:         userAuth("c1", ""),
			wantUserName: domain.NoUserName,
			wantRefresh:  "",
		},
		{
			name:         "blank user name uses placeholder user name",
			token:        &domain.AccessToken{Value: "tok-blank"},
			auth:         userAuth("c1", "  "),
			wantUserName: domain.NoUserName,
			wantRefresh:  "",
		},
		{
			name:    "missing token value",
			token:   &domain.AccessToken{},
			auth:    userAuth("c1", "alice"),
			wantErr: domain.ErrInvalidToken,
		},
		{
			name:    "missing authentication",
			token:   &domain.AccessToken{Value: "tok"},
			wantErr: domain.ErrInvalidAuthentication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAccessTokenRepository)
			if tt.wantErr == nil {
				repo.On("Save", ctx, mock.MatchedBy(func(r *domain.AccessTokenRecord) bool {
					return r.TokenKey == keygen.TokenKey(tt.token.Value) &&
						r.AuthenticationKey == keygen.AuthenticationKey(tt.auth) &&
						r.ClientID == "c1" &&
						r.UserName == tt.wantUserName &&
						r.RefreshTokenKey == tt.wantRefresh &&
						r.Token == tt.token &&
						r.Authentication == tt.auth
				})).Return(nil)
			}

			err := NewAccessTokenService(repo, zap.NewNop()).StoreAccessToken(ctx, tt.token, tt.auth)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAccessTokenService_ReadMissesAreAbsent(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccessTokenRepository)
	repo.On("FindByKey", ctx, keygen.TokenKey("unknown")).Return(nil, domain.ErrTokenNotFound)
	service := NewAccessTokenService(repo, zap.NewNop())

	token, err := service.ReadAccessToken(ctx, "unknown")
	assert.NoError(t, err)
	assert.Nil(t, token)

	auth, err := service.ReadAuthentication(ctx, "unknown")
	assert.NoError(t, err)
	assert.Nil(t, auth)

	// An empty value has no key and never reaches the backend
	token, err = service.ReadAccessToken(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, token)
	repo.AssertNumberOfCalls(t, "FindByKey", 2)
}

func TestAccessTokenService_ReadPassesBackendErrors(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccessTokenRepository)
	repo.On("FindByKey", ctx, mock.Anything).Return(nil, assert.AnError)

	_, err := NewAccessTokenService(repo, zap.NewNop()).ReadAccessToken(ctx, "tok")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAccessTokenService_GetAccessToken(t *testing.T) {
	ctx := context.Background()
	auth := userAuth("c1", "alice", "write", "read")
	token := &domain.AccessToken{Value: "tok"}

	repo := new(MockAccessTokenRepository)
	// Scope order does not change the authentication key
	repo.On("FindByAuthenticationKey", ctx, keygen.AuthenticationKey(userAuth("c1", "alice", "read", "write"))).
		Return([]*domain.AccessTokenRecord{{Token: token}}, nil).Once()
	service := NewAccessTokenService(repo, zap.NewNop())

	got, err := service.GetAccessToken(ctx, auth)
	require.NoError(t, err)
	assert.Equal(t, token, got)

	repo.On("FindByAuthenticationKey", ctx, mock.Anything).Return(nil, nil).Once()
	got, err = service.GetAccessToken(ctx, userAuth("c2", "bob"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAccessTokenService_RemoveAccessTokenUsingRefreshToken(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccessTokenRepository)
	// The cascade matches on the derived refresh key, never the raw value
	repo.On("DeleteByRefreshTokenKey", ctx, keygen.TokenKey("ref-abc")).Return(2, nil)
	service := NewAccessTokenService(repo, zap.NewNop())

	assert.NoError(t, service.RemoveAccessTokenUsingRefreshToken(ctx, "ref-abc"))
	assert.NoError(t, service.RemoveAccessTokenUsingRefreshToken(ctx, ""))
	repo.AssertNumberOfCalls(t, "DeleteByRefreshTokenKey", 1)
}

func TestAccessTokenService_RemoveAccessToken(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccessTokenRepository)
	repo.On("DeleteByKey", ctx, keygen.TokenKey("tok-xyz")).Return(nil)
	service := NewAccessTokenService(repo, zap.NewNop())

	assert.NoError(t, service.RemoveAccessToken(ctx, "tok-xyz"))
	assert.NoError(t, service.RemoveAccessToken(ctx, "tok-xyz"))
	repo.AssertNumberOfCalls(t, "DeleteByKey", 2)
}

func TestAccessTokenService_FindTokens(t *testing.T) {
	ctx := context.Background()
	t1 := &domain.AccessToken{Value: "t1"}
	t2 := &domain.AccessToken{Value: "t2"}

	repo := new(MockAccessTokenRepository)
	repo.On("FindByClientID", ctx, "c1").Return([]*domain.AccessTokenRecord{{Token: t1}, {Token: t2}}, nil)
	repo.On("FindByClientIDAndUserName", ctx, "c1", "alice").Return([]*domain.AccessTokenRecord{{Token: t1}}, nil)
	repo.On("FindByClientID", ctx, "none").Return(nil, nil)
	service := NewAccessTokenService(repo, zap.NewNop())

	tokens, err := service.FindTokensByClientID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []*domain.AccessToken{t1, t2}, tokens)

	tokens, err = service.FindTokensByClientIDAndUserName(ctx, "c1", "alice")
	require.NoError(t, err)
	assert.Equal(t, []*domain.AccessToken{t1}, tokens)

	tokens, err = service.FindTokensByClientID(ctx, "none")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
