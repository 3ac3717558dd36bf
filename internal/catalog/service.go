package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service answers category questions about products.
type Service interface {
	CategoriesByProduct(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CategoriesByProduct(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	categories := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return categories, nil
	}
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	for _, product := range rows {
		categories[product.ID] = product.Category
	}
	return categories, nil
}
