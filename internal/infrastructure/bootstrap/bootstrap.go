// Package bootstrap registers statically configured clients and partners from a YAML file.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/manorfm/tokenstore/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the bootstrap document
type File struct {
	Clients  []Client  `yaml:"clients"`
	Partners []Partner `yaml:"partners"`
}

// Client is a client entry. Secret is plaintext and hashed on registration.
type Client struct {
	ID                   string   `yaml:"id"`
	Secret               string   `yaml:"secret"`
	Authorities          []string `yaml:"authorities"`
	GrantTypes           []string `yaml:"grant_types"`
	Scopes               []string `yaml:"scopes"`
	RedirectURIs         []string `yaml:"redirect_uris"`
	AccessTokenValidity  *int     `yaml:"access_token_validity"`
	RefreshTokenValidity *int     `yaml:"refresh_token_validity"`
	AutoApprove          []string `yaml:"auto_approve"`
}

// Partner is a partner entry
type Partner struct {
	ID                   string   `yaml:"id"`
	ClientID             string   `yaml:"client_id"`
	ClientSecret         string   `yaml:"client_secret"`
	AccessTokenURI       string   `yaml:"access_token_uri"`
	UserAuthorizationURI string   `yaml:"user_authorization_uri"`
	PreEstablishedURI    string   `yaml:"pre_established_redirect_uri"`
	Scopes               []string `yaml:"scopes"`
}

// Load reads and decodes the bootstrap file at path
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a bootstrap document
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse bootstrap file: %w", err)
	}
	for i, c := range file.Clients {
		if c.ID == "" {
			return nil, fmt.Errorf("client %d: %w", i, domain.ErrInvalidClient)
		}
	}
	return &file, nil
}

// Definition converts the entry to a client definition
func (c Client) Definition() *domain.ClientDefinition {
	return &domain.ClientDefinition{
		ClientID:                    c.ID,
		ClientSecret:                c.Secret,
		Authorities:                 c.Authorities,
		AuthorizedGrantTypes:        c.GrantTypes,
		Scopes:                      c.Scopes,
		RedirectURIs:                c.RedirectURIs,
		AccessTokenValiditySeconds:  c.AccessTokenValidity,
		RefreshTokenValiditySeconds: c.RefreshTokenValidity,
		AutoApproveScopes:           c.AutoApprove,
	}
}

// Definition converts the entry to a partner
func (p Partner) Definition() *domain.Partner {
	return &domain.Partner{
		PartnerID:            p.ID,
		ClientID:             p.ClientID,
		ClientSecret:         p.ClientSecret,
		AccessTokenURI:       p.AccessTokenURI,
		UserAuthorizationURI: p.UserAuthorizationURI,
		PreEstablishedURI:    p.PreEstablishedURI,
		Scopes:               p.Scopes,
	}
}

// Result counts what Apply changed
type Result struct {
	ClientsAdded   int
	ClientsUpdated int
	Partners       int
}

// Apply registers every client and partner in file. Clients that already exist are
// updated in place and keep their stored secret.
func Apply(ctx context.Context, clients domain.ClientRegistry, partners domain.PartnerRegistry, file *File, logger *zap.Logger) (Result, error) {
	var res Result

	for _, c := range file.Clients {
		def := c.Definition()
		err := clients.AddClient(ctx, def)
		switch {
		case err == nil:
			res.ClientsAdded++
		case errors.Is(err, domain.ErrClientAlreadyExists):
			if err := clients.UpdateClient(ctx, def); err != nil {
				return res, fmt.Errorf("failed to update client %s: %w", c.ID, err)
			}
			res.ClientsUpdated++
		default:
			return res, fmt.Errorf("failed to add client %s: %w", c.ID, err)
		}
	}

	for _, p := range file.Partners {
		if err := partners.SavePartner(ctx, p.Definition()); err != nil {
			return res, fmt.Errorf("failed to save partner %s: %w", p.ID, err)
		}
		res.Partners++
	}

	logger.Info("Bootstrap applied",
		zap.Int("clients_added", res.ClientsAdded),
		zap.Int("clients_updated", res.ClientsUpdated),
		zap.Int("partners", res.Partners))
	return res, nil
}
