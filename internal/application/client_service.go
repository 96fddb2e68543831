package application

import (
	"context"
	"errors"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// ClientService implements domain.ClientRegistry over a ClientRepository
type ClientService struct {
	repo    domain.ClientRepository
	encoder domain.SecretEncoder
	logger  *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(repo domain.ClientRepository, encoder domain.SecretEncoder, logger *zap.Logger) *ClientService {
	return &ClientService{
		repo:    repo,
		encoder: encoder,
		logger:  logger,
	}
}

func (s *ClientService) LoadClientByID(ctx context.Context, clientID string) (*domain.ClientDefinition, error) {
	client, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		if !errors.Is(err, domain.ErrClientNotFound) {
			logging.FromContext(ctx, s.logger).Error("Failed to load client",
				zap.String("client_id", clientID),
				zap.Error(err))
		}
		return nil, err
	}
	return client, nil
}

// AddClient registers client. A plaintext secret on the definition is hashed before it is stored.
func (s *ClientService) AddClient(ctx context.Context, client *domain.ClientDefinition) error {
	if client == nil || client.ClientID == "" {
		return domain.ErrInvalidClient
	}
	log := logging.FromContext(ctx, s.logger).With(zap.String("client_id", client.ClientID))

	stored := normalizeClient(client)
	if client.ClientSecret != "" {
		hash, err := s.encoder.Encode(client.ClientSecret)
		if err != nil {
			log.Error("Failed to hash client secret", zap.Error(err))
			return domain.WrapInternal(err)
		}
		stored.ClientSecret = hash
	}

	if err := s.repo.Create(ctx, stored); err != nil {
		if errors.Is(err, domain.ErrClientAlreadyExists) {
			log.Info("Client already exists")
		}
		return err
	}

	log.Info("Client registered")
	return nil
}

// UpdateClient replaces every field except the client id and secret
func (s *ClientService) UpdateClient(ctx context.Context, client *domain.ClientDefinition) error {
	if client == nil || client.ClientID == "" {
		return domain.ErrInvalidClient
	}

	if err := s.repo.Update(ctx, normalizeClient(client)); err != nil {
		return err
	}

	logging.FromContext(ctx, s.logger).Debug("Client updated", zap.String("client_id", client.ClientID))
	return nil
}

func (s *ClientService) UpdateClientSecret(ctx context.Context, clientID, secret string) error {
	if secret == "" {
		return domain.ErrInvalidClient
	}

	hash, err := s.encoder.Encode(secret)
	if err != nil {
		return domain.WrapInternal(err)
	}
	if err := s.repo.UpdateSecret(ctx, clientID, hash); err != nil {
		return err
	}

	logging.FromContext(ctx, s.logger).Info("Client secret updated", zap.String("client_id", clientID))
	return nil
}

func (s *ClientService) RemoveClient(ctx context.Context, clientID string) error {
	deleted, err := s.repo.Delete(ctx, clientID)
	if err != nil {
		return err
	}

	log := logging.FromContext(ctx, s.logger).With(zap.String("client_id", clientID))
	if !deleted {
		log.Info("Client already deleted")
		return nil
	}
	log.Info("Client removed")
	return nil
}

func (s *ClientService) ListClients(ctx context.Context) ([]*domain.ClientDefinition, error) {
	return s.repo.List(ctx)
}

// VerifySecret loads the client and checks secret against its stored hash
func (s *ClientService) VerifySecret(ctx context.Context, clientID, secret string) (*domain.ClientDefinition, error) {
	client, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return nil, domain.ErrInvalidClient
		}
		return nil, err
	}

	if client.ClientSecret == "" || !s.encoder.Matches(secret, client.ClientSecret) {
		logging.FromContext(ctx, s.logger).Debug("Client secret mismatch", zap.String("client_id", clientID))
		return nil, domain.ErrInvalidClient
	}
	return client, nil
}

// normalizeClient copies client, keeping only the auto-approve entries that cover a registered scope
func normalizeClient(client *domain.ClientDefinition) *domain.ClientDefinition {
	stored := *client
	if len(client.AutoApproveScopes) == 0 {
		return &stored
	}

	approved := make([]string, 0, len(client.Scopes))
	for _, scope := range client.Scopes {
		if client.IsAutoApprove(scope) {
			approved = append(approved, scope)
		}
	}
	stored.AutoApproveScopes = approved
	return &stored
}
