package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vendorsuite/ordersplit-backend/pkg/db/models"
)

type stubRepo struct {
	rows []models.Product
	err  error
}

func (s *stubRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func TestCategoriesByProduct(t *testing.T) {
	flower := uuid.New()
	edible := uuid.New()
	repo := &stubRepo{rows: []models.Product{
		{ID: flower, Category: "flower"},
		{ID: edible, Category: "edibles"},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	categories, err := svc.CategoriesByProduct(context.Background(), []uuid.UUID{flower, edible})
	if err != nil {
		t.Fatalf("CategoriesByProduct: %v", err)
	}
	if categories[flower] != "flower" || categories[edible] != "edibles" {
		t.Fatalf("unexpected categories %+v", categories)
	}
}

func TestCategoriesByProductEmptyInput(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	categories, err := svc.CategoriesByProduct(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != 0 {
		t.Fatalf("expected empty map")
	}
}

func TestCategoriesByProductPropagatesError(t *testing.T) {
	svc, err := NewService(&stubRepo{err: errors.New("db down")})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.CategoriesByProduct(context.Background(), []uuid.UUID{uuid.New()}); err == nil {
		t.Fatalf("expected error")
	}
}
