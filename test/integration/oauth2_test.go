package integration

import (
	"context"
	"testing"
	"time"

	"github.com/manorfm/tokenstore/internal/application"
	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/config"
	"github.com/manorfm/tokenstore/internal/infrastructure/keygen"
	"github.com/manorfm/tokenstore/internal/infrastructure/password"
	"github.com/manorfm/tokenstore/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthorizationCodeFlow_Integration(t *testing.T) {
	backends := []struct {
		name  string
		setup func(t *testing.T) *config.Config
	}{
		{name: "postgres", setup: setupPostgres},
		{name: "redis", setup: setupRedis},
		{name: "bolt", setup: setupBolt},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, keygen.Verify())
			ctx := context.Background()
			cfg := b.setup(t)

			backend, err := storage.Open(ctx, cfg, zap.NewNop())
			require.NoError(t, err)
			t.Cleanup(func() { _ = backend.Close() })
			stores := application.NewStores(backend.Repositories, password.NewEncoder(bcrypt.MinCost), zap.NewNop())

			runAuthorizationCodeFlow(t, stores)
		})
	}
}

func runAuthorizationCodeFlow(t *testing.T, stores *application.Stores) {
	ctx := context.Background()

	// Register the client
	err := stores.Clients.AddClient(ctx, &domain.ClientDefinition{
		ClientID:             "web",
		ClientSecret:         "web-secret",
		AuthorizedGrantTypes: []string{"authorization_code", "refresh_token"},
		Scopes:               []string{"read", "write"},
		RedirectURIs:         []string{"https://web/cb"},
	})
	require.NoError(t, err)
	client, err := stores.Clients.VerifySecret(ctx, "web", "web-secret")
	require.NoError(t, err)
	assert.Equal(t, "https://web/cb", client.DefaultRedirectURI())

	// Authorize and redeem the code
	auth := &domain.Authentication{
		Request: domain.OAuth2Request{ClientID: "web", Scope: []string{"write", "read"}, Approved: true},
		User:    &domain.UserAuthentication{Name: "alice", Authenticated: true},
	}
	code, err := stores.Codes.CreateCode(ctx, auth)
	require.NoError(t, err)

	redeemed, err := stores.Codes.ConsumeCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "alice", redeemed.Name())
	_, err = stores.Codes.ConsumeCode(ctx, code)
	assert.ErrorIs(t, err, domain.ErrInvalidAuthorizationCode)

	// Issue the first token pair
	refresh := &domain.RefreshToken{Value: "refresh-1", ExpiresAt: time.Now().Add(24 * time.Hour)}
	first := &domain.AccessToken{Value: "access-1", TokenType: "bearer", RefreshToken: refresh, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, stores.RefreshTokens.StoreRefreshToken(ctx, refresh, redeemed))
	require.NoError(t, stores.AccessTokens.StoreAccessToken(ctx, first, redeemed))

	existing, err := stores.AccessTokens.GetAccessToken(ctx, redeemed)
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, "access-1", existing.Value)

	// Refresh: recover the authentication, revoke all tokens minted from it, mint a new one
	refreshAuth, err := stores.RefreshTokens.ReadAuthenticationForRefreshToken(ctx, "refresh-1")
	require.NoError(t, err)
	require.NotNil(t, refreshAuth)
	require.NoError(t, stores.AccessTokens.RemoveAccessTokenUsingRefreshToken(ctx, "refresh-1"))

	gone, err := stores.AccessTokens.ReadAccessToken(ctx, "access-1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	second := &domain.AccessToken{Value: "access-2", TokenType: "bearer", RefreshToken: refresh}
	require.NoError(t, stores.AccessTokens.StoreAccessToken(ctx, second, refreshAuth))

	tokens, err := stores.AccessTokens.FindTokensByClientIDAndUserName(ctx, "web", "alice")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "access-2", tokens[0].Value)

	// Revoke everything
	require.NoError(t, stores.AccessTokens.RemoveAccessToken(ctx, "access-2"))
	require.NoError(t, stores.RefreshTokens.RemoveRefreshToken(ctx, "refresh-1"))
	require.NoError(t, stores.Clients.RemoveClient(ctx, "web"))

	tokens, err = stores.AccessTokens.FindTokensByClientID(ctx, "web")
	require.NoError(t, err)
	assert.Empty(t, tokens)
	readRefresh, err := stores.RefreshTokens.ReadRefreshToken(ctx, "refresh-1")
	require.NoError(t, err)
	assert.Nil(t, readRefresh)
}
