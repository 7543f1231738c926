package services

import (
	"fmt"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/google/uuid"
)

// CatalogSnapshot is the storefront read model: everything orderable right
// now, with current prices.
type CatalogSnapshot struct {
	Products []models.StoreProduct `json:"products"`
	Combos   []models.Combo        `json:"combos"`
}

// CatalogService serves the ordering front end's view of the menu.
type CatalogService interface {
	Snapshot(storeID uuid.UUID) (*CatalogSnapshot, error)
}

type catalogService struct {
	catalogRepo repositories.CatalogRepository
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(cr repositories.CatalogRepository) CatalogService {
	return &catalogService{catalogRepo: cr}
}

func (s *catalogService) Snapshot(storeID uuid.UUID) (*CatalogSnapshot, error) {
	products, err := s.catalogRepo.ListAvailableProducts(storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available products: %w", err)
	}
	combos, err := s.catalogRepo.ListActiveCombos(storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active combos: %w", err)
	}
	return &CatalogSnapshot{Products: products, Combos: combos}, nil
}
