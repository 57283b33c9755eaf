package catalog

import (
	"context"
	"errors"
	"fmt"

	catalogRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/catalog"
	"github.com/m04kA/HCS-BookingService/internal/service/catalog/models"
)

// Service сервис каталога услуг организации
type Service struct {
	catalogRepo CatalogRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(catalogRepo CatalogRepository, logger Logger) *Service {
	return &Service{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// GetCatalog возвращает каталог организации: услуги с опциями,
// количественные скидки и правила сет-скидок
func (s *Service) GetCatalog(ctx context.Context, organizationID int64) (*models.CatalogResponse, error) {
	org, err := s.catalogRepo.GetOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrOrganizationNotFound) {
			return nil, fmt.Errorf("%w: organization %d", ErrOrganizationNotFound, organizationID)
		}
		s.logger.Error("catalog.GetCatalog: failed to get organization %d: %v", organizationID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	services, err := s.catalogRepo.GetServices(ctx, organizationID)
	if err != nil {
		s.logger.Error("catalog.GetCatalog: failed to get services for organization %d: %v", organizationID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	serviceIDs := make([]int64, 0, len(services))
	for _, svc := range services {
		serviceIDs = append(serviceIDs, svc.ID)
	}

	options, err := s.catalogRepo.GetOptionsByServiceIDs(ctx, serviceIDs)
	if err != nil {
		s.logger.Error("catalog.GetCatalog: failed to get options for organization %d: %v", organizationID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return models.FromDomain(org, services, options), nil
}
