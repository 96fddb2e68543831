package application

import (
	"context"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// PartnerService implements domain.PartnerRegistry over a PartnerRepository
type PartnerService struct {
	repo   domain.PartnerRepository
	logger *zap.Logger
}

// NewPartnerService creates a new PartnerService
func NewPartnerService(repo domain.PartnerRepository, logger *zap.Logger) *PartnerService {
	return &PartnerService{
		repo:   repo,
		logger: logger,
	}
}

func (s *PartnerService) LoadPartner(ctx context.Context, partnerID string) (*domain.Partner, error) {
	return s.repo.FindByID(ctx, partnerID)
}

func (s *PartnerService) ListPartners(ctx context.Context) ([]*domain.Partner, error) {
	return s.repo.List(ctx)
}

func (s *PartnerService) SavePartner(ctx context.Context, partner *domain.Partner) error {
	if partner == nil || partner.PartnerID == "" || partner.ClientID == "" || partner.AccessTokenURI == "" {
		return domain.ErrInvalidPartner
	}

	if err := s.repo.Save(ctx, partner); err != nil {
		return err
	}

	logging.FromContext(ctx, s.logger).Info("Partner saved", zap.String("partner_id", partner.PartnerID))
	return nil
}

func (s *PartnerService) DeletePartner(ctx context.Context, partnerID string) error {
	return s.repo.Delete(ctx, partnerID)
}
