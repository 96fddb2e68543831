// Package storagetest holds the behavioural checks every storage backend must pass.
package storagetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty set of repositories for one subtest
type Factory func(t *testing.T) *domain.Repositories

// Run exercises every repository contract against the backend built by newRepos
func Run(t *testing.T, newRepos Factory) {
	t.Run("Clients", func(t *testing.T) { testClients(t, newRepos) })
	t.Run("AuthorizationCodes", func(t *testing.T) { testCodes(t, newRepos) })
	t.Run("AccessTokens", func(t *testing.T) { testAccessTokens(t, newRepos) })
	t.Run("RefreshTokens", func(t *testing.T) { testRefreshTokens(t, newRepos) })
	t.Run("PartnerTokens", func(t *testing.T) { testPartnerTokens(t, newRepos) })
	t.Run("Partners", func(t *testing.T) { testPartners(t, newRepos) })
}

func intPtr(v int) *int { return &v }

// Client returns a fully populated client definition
func Client(id string) *domain.ClientDefinition {
	return &domain.ClientDefinition{
		ClientID:                    id,
		ClientSecret:                "$2a$10$hash-" + id,
		Authorities:                 []string{"ROLE_CLIENT"},
		AuthorizedGrantTypes:        []string{"authorization_code", "refresh_token"},
		Scopes:                      []string{"read", "write"},
		RedirectURIs:                []string{"https://" + id + ".example.com/cb", "https://" + id + ".example.com/alt"},
		AccessTokenValiditySeconds:  intPtr(3600),
		RefreshTokenValiditySeconds: nil,
		AutoApproveScopes:           []string{"read"},
	}
}

// Auth returns an authentication for user (client-only when user is "")
func Auth(clientID, user string, scope ...string) *domain.Authentication {
	auth := &domain.Authentication{
		Request: domain.OAuth2Request{
			ClientID:          clientID,
			Scope:             scope,
			RequestParameters: map[string]string{"grant_type": "authorization_code"},
			Approved:          true,
			RedirectURI:       "https://" + clientID + ".example.com/cb",
			GrantType:         "authorization_code",
		},
	}
	if user != "" {
		auth.User = &domain.UserAuthentication{
			Name:          user,
			Authorities:   []string{"ROLE_USER"},
			Authenticated: true,
		}
	}
	return auth
}

// AccessTokenRecord returns a record with denormalized fields filled in
func AccessTokenRecord(key, authKey, clientID, userName, refreshKey string) *domain.AccessTokenRecord {
	return &domain.AccessTokenRecord{
		TokenKey: key,
		Token: &domain.AccessToken{
			Value:     "value-" + key,
			TokenType: "bearer",
			ExpiresAt: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
			Scope:     []string{"read"},
		},
		AuthenticationKey: authKey,
		Authentication:    Auth(clientID, userName, "read"),
		ClientID:          clientID,
		UserName:          userName,
		RefreshTokenKey:   refreshKey,
	}
}

func testClients(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		repo := newRepos(t).Clients
		client := Client("c1")
		require.NoError(t, repo.Create(ctx, client))

		got, err := repo.FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, client.ClientID, got.ClientID)
		assert.Equal(t, client.ClientSecret, got.ClientSecret)
		assert.Equal(t, client.Authorities, got.Authorities)
		assert.Equal(t, client.AuthorizedGrantTypes, got.AuthorizedGrantTypes)
		assert.Equal(t, client.Scopes, got.Scopes)
		assert.Equal(t, client.RedirectURIs, got.RedirectURIs)
		assert.Equal(t, client.AutoApproveScopes, got.AutoApproveScopes)
		require.NotNil(t, got.AccessTokenValiditySeconds)
		assert.Equal(t, 3600, *got.AccessTokenValiditySeconds)
		assert.Nil(t, got.RefreshTokenValiditySeconds)
	})

	t.Run("duplicate create fails and keeps the original", func(t *testing.T) {
		repo := newRepos(t).Clients
		require.NoError(t, repo.Create(ctx, Client("c1")))

		dup := Client("c1")
		dup.Scopes = []string{"admin"}
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrClientAlreadyExists)

		got, err := repo.FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, []string{"read", "write"}, got.Scopes)
	})

	t.Run("find missing", func(t *testing.T) {
		repo := newRepos(t).Clients
		_, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrClientNotFound)
	})

	t.Run("update keeps the stored secret", func(t *testing.T) {
		repo := newRepos(t).Clients
		require.NoError(t, repo.Create(ctx, Client("c1")))

		update := Client("c1")
		update.ClientSecret = "ignored"
		update.Scopes = []string{"read"}
		update.RedirectURIs = []string{"https://new.example.com/cb"}
		require.NoError(t, repo.Update(ctx, update))

		got, err := repo.FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "$2a$10$hash-c1", got.ClientSecret)
		assert.Equal(t, []string{"read"}, got.Scopes)
		assert.Equal(t, []string{"https://new.example.com/cb"}, got.RedirectURIs)
	})

	t.Run("update missing", func(t *testing.T) {
		repo := newRepos(t).Clients
		err := repo.Update(ctx, Client("missing"))
		assert.ErrorIs(t, err, domain.ErrClientNotFound)
	})

	t.Run("update secret", func(t *testing.T) {
		repo := newRepos(t).Clients
		require.NoError(t, repo.Create(ctx, Client("c1")))
		require.NoError(t, repo.UpdateSecret(ctx, "c1", "new-hash"))

		got, err := repo.FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.ClientSecret)

		err = repo.UpdateSecret(ctx, "missing", "hash")
		assert.ErrorIs(t, err, domain.ErrClientNotFound)
	})

	t.Run("delete reports existence", func(t *testing.T) {
		repo := newRepos(t).Clients
		require.NoError(t, repo.Create(ctx, Client("c1")))

		deleted, err := repo.Delete(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "c1")
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = repo.FindByID(ctx, "c1")
		assert.ErrorIs(t, err, domain.ErrClientNotFound)
	})

	t.Run("list", func(t *testing.T) {
		repo := newRepos(t).Clients
		clients, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, clients)

		for _, id := range []string{"c1", "c2", "c3"} {
			require.NoError(t, repo.Create(ctx, Client(id)))
		}
		clients, err = repo.List(ctx)
		require.NoError(t, err)

		var ids []string
		for _, c := range clients {
			ids = append(ids, c.ClientID)
		}
		assert.ElementsMatch(t, []string{"c1", "c2", "c3"}, ids)
	})
}

func testCodes(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("consume once", func(t *testing.T) {
		repo := newRepos(t).Codes
		auth := Auth("c1", "alice", "read")
		require.NoError(t, repo.Save(ctx, &domain.AuthorizationCode{Code: "abc", Authentication: auth}))

		got, err := repo.Consume(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, auth, got)

		_, err = repo.Consume(ctx, "abc")
		assert.ErrorIs(t, err, domain.ErrAuthorizationCodeNotFound)
	})

	t.Run("save overwrites", func(t *testing.T) {
		repo := newRepos(t).Codes
		require.NoError(t, repo.Save(ctx, &domain.AuthorizationCode{Code: "abc", Authentication: Auth("c1", "alice")}))
		require.NoError(t, repo.Save(ctx, &domain.AuthorizationCode{Code: "abc", Authentication: Auth("c1", "bob")}))

		got, err := repo.Consume(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "bob", got.Name())
	})

	t.Run("concurrent consume succeeds once", func(t *testing.T) {
		repo := newRepos(t).Codes
		require.NoError(t, repo.Save(ctx, &domain.AuthorizationCode{Code: "race", Authentication: Auth("c1", "alice")}))

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				auth, err := repo.Consume(ctx, "race")
				if err == nil && auth != nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, successes)
	})
}

func accessKeys(records []*domain.AccessTokenRecord) []string {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.TokenKey)
	}
	return keys
}

func testAccessTokens(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("save and find", func(t *testing.T) {
		repo := newRepos(t).AccessTokens
		record := AccessTokenRecord("k1", "a1", "c1", "alice", "r1")
		require.NoError(t, repo.Save(ctx, record))

		got, err := repo.FindByKey(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, record.TokenKey, got.TokenKey)
		assert.Equal(t, record.AuthenticationKey, got.AuthenticationKey)
		assert.Equal(t, record.ClientID, got.ClientID)
		assert.Equal(t, record.UserName, got.UserName)
		assert.Equal(t, record.RefreshTokenKey, got.RefreshTokenKey)
		assert.Equal(t, record.Token.Value, got.Token.Value)
		assert.True(t, record.Token.ExpiresAt.Equal(got.Token.ExpiresAt))
		assert.Equal(t, record.Authentication, got.Authentication)

		_, err = repo.FindByKey(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	t.Run("index queries", func(t *testing.T) {
		repo := newRepos(t).AccessTokens
		require.NoError(t, repo.Save(ctx, AccessTokenRecord("k1", "a1", "c1", "alice", "")))
		require.NoError(t, repo.Save(ctx, AccessTokenRecord("k2", "a2", "c1", "bob", "")))
		require.NoError(t, repo.Save(ctx, AccessTokenRecord("k3", "a1", "c2", "alice", "")))

		byAuth, err := repo.FindByAuthenticationKey(ctx, "a1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"k1", "k3"}, accessKeys(byAuth))

		byClient, err := repo.FindByClientID(ctx, "c1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"k1", "k2"}, accessKeys(byClient))

		byClientUser, err := repo.FindByClientIDAndUserName(ctx, "c1", "bob")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"k2"}, accessKeys(byClientUser))

		none, err := repo.FindByClientID(ctx, "unknown")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("resave moves index entries", func(t *testing.T) {
		repo := newRepos(t).AccessTokens
		require.NoError(t, repo.Save(ctx, AccessTokenRecord("k1", "a1", "c1", "alice", "r1")))
		require.NoError(t, repo.Save(ctx, AccessTokenRecord("k1", "a2", "c2", "bob", "r2")))

		old, err := repo.FindByClientID(ctx, "c1")
		require.NoError(t, err)
		assert.Empty(t, old)

		oldAuth, err := repo.FindByAuthenticationKey(ctx, "a1")
		require.NoError(t, err)
		assert.Empty(t, oldAuth)

		moved, err := repo.FindByClientIDAndUserName(ctx, "c2", "bob")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"k1"}, accessKeys(moved))

		n, err := repo.DeleteByRefreshTokenKey(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("delete by key", func(t *testing.T) {
		repo := newRepos(t).AccessTokens
		require.NoError(t, repo.Save(ctx, AccessTokenRecord("k1", "a1", "c1", "alice", "r1")))

		require.NoError(t, repo.DeleteByKey(ctx, "k1"))
		require.NoError(t, repo.DeleteByKey(ctx, "k1"))

		_, err := repo.FindByKey(ctx, "k1")
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)

		byClient, err := repo.FindByClientID(ctx, "c1")
		require.NoError(t, err)
		assert.Empty(t, byClient)
	})

	t.Run("delete by refresh token key", func(t *testing.T) {
		repo := newRepos(t).AccessTokens
		require.NoError(t, repo.Save(ctx, AccessTokenRecord("k1", "a1", "c1", "alice", "r1")))
		require.NoError(t, repo.Save(ctx, AccessTokenRecord("k2", "a2", "c1", "bob", "r1")))
		require.NoError(t, repo.Save(ctx, AccessTokenRecord("k3", "a3", "c1", "carol", "r2")))
		require.NoError(t, repo.Save(ctx, AccessTokenRecord("k4", "a4", "c1", "dave", "")))

		n, err := repo.DeleteByRefreshTokenKey(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		remaining, err := repo.FindByClientID(ctx, "c1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"k3", "k4"}, accessKeys(remaining))

		n, err = repo.DeleteByRefreshTokenKey(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func testRefreshTokens(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	repo := newRepos(t).RefreshTokens

	record := &domain.RefreshTokenRecord{
		TokenKey:       "r1",
		Token:          &domain.RefreshToken{Value: "refresh-value", ExpiresAt: time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)},
		Authentication: Auth("c1", "alice", "read", "write"),
	}
	require.NoError(t, repo.Save(ctx, record))

	got, err := repo.FindByKey(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "refresh-value", got.Token.Value)
	assert.True(t, record.Token.ExpiresAt.Equal(got.Token.ExpiresAt))
	assert.Equal(t, record.Authentication, got.Authentication)

	record.Token.Value = "rotated"
	require.NoError(t, repo.Save(ctx, record))
	got, err = repo.FindByKey(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.Token.Value)

	require.NoError(t, repo.DeleteByKey(ctx, "r1"))
	require.NoError(t, repo.DeleteByKey(ctx, "r1"))
	_, err = repo.FindByKey(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func testPartnerTokens(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	repo := newRepos(t).PartnerTokens

	for i, authKey := range []string{"p1", "p1", "p2"} {
		value := fmt.Sprintf("partner-token-%d", i)
		require.NoError(t, repo.Save(ctx, &domain.PartnerTokenRecord{
			TokenKey:          value,
			Token:             &domain.AccessToken{Value: value, TokenType: "bearer"},
			AuthenticationKey: authKey,
			UserName:          "alice",
			ClientID:          "upstream",
		}))
	}

	records, err := repo.FindByAuthenticationKey(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	var values []string
	for _, r := range records {
		values = append(values, r.Token.Value)
		assert.Equal(t, "alice", r.UserName)
		assert.Equal(t, "upstream", r.ClientID)
	}
	assert.ElementsMatch(t, []string{"partner-token-0", "partner-token-1"}, values)

	n, err := repo.DeleteByAuthenticationKey(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err = repo.FindByAuthenticationKey(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, records)

	n, err = repo.DeleteByAuthenticationKey(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	records, err = repo.FindByAuthenticationKey(ctx, "p2")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Partner tokens are often long JWTs stored under their raw value
	long := strings.Repeat("eyJhbGciOiJSUzI1NiJ9.", 400)
	longName := strings.Repeat("n", 1024)
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Save(ctx, &domain.PartnerTokenRecord{
			TokenKey:          long,
			Token:             &domain.AccessToken{Value: long, TokenType: "bearer"},
			AuthenticationKey: "p3",
			UserName:          longName,
			ClientID:          "upstream",
		}))
	}
	records, err = repo.FindByAuthenticationKey(ctx, "p3")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, long, records[0].TokenKey)
	assert.Equal(t, longName, records[0].UserName)
}

func testPartners(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	repo := newRepos(t).Partners

	partner := &domain.Partner{
		PartnerID:            "billing",
		ClientID:             "tokenstore",
		ClientSecret:         "s3cret",
		AccessTokenURI:       "https://billing.example.com/oauth/token",
		UserAuthorizationURI: "https://billing.example.com/oauth/authorize",
		Scopes:               []string{"invoices"},
	}
	require.NoError(t, repo.Save(ctx, partner))

	got, err := repo.FindByID(ctx, "billing")
	require.NoError(t, err)
	assert.Equal(t, partner.ClientID, got.ClientID)
	assert.Equal(t, partner.ClientSecret, got.ClientSecret)
	assert.Equal(t, partner.AccessTokenURI, got.AccessTokenURI)
	assert.Equal(t, partner.UserAuthorizationURI, got.UserAuthorizationURI)
	assert.Equal(t, "", got.PreEstablishedURI)
	assert.Equal(t, partner.Scopes, got.Scopes)

	partner.Scopes = []string{"invoices", "payments"}
	require.NoError(t, repo.Save(ctx, partner))
	require.NoError(t, repo.Save(ctx, &domain.Partner{PartnerID: "crm", ClientID: "tokenstore", AccessTokenURI: "https://crm.example.com/token"}))

	partners, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, partners, 2)
	for _, p := range partners {
		if p.PartnerID == "billing" {
			assert.Equal(t, []string{"invoices", "payments"}, p.Scopes)
		}
	}

	require.NoError(t, repo.Delete(ctx, "billing"))
	require.NoError(t, repo.Delete(ctx, "billing"))
	_, err = repo.FindByID(ctx, "billing")
	assert.ErrorIs(t, err, domain.ErrPartnerNotFound)
}
