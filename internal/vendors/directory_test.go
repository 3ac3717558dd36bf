package vendors

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vendorsuite/ordersplit-backend/pkg/db/models"
)

type stubRepo struct {
	rows []models.Vendor
	err  error
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	for i := range s.rows {
		if s.rows[i].ID == id {
			return &s.rows[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func TestDisplayNamesFallsBackToUnknown(t *testing.T) {
	active := uuid.New()
	inactive := uuid.New()
	missing := uuid.New()

	repo := &stubRepo{rows: []models.Vendor{
		{ID: active, DisplayName: "Acme Goods", Active: true},
		{ID: inactive, DisplayName: "Gone Inc", Active: false},
	}}

	dir, err := NewDirectory(repo, "Unknown Vendor")
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	names, err := dir.DisplayNames(context.Background(), []uuid.UUID{active, inactive, missing})
	if err != nil {
		t.Fatalf("DisplayNames: %v", err)
	}
	if names[active] != "Acme Goods" {
		t.Fatalf("expected active vendor name, got %q", names[active])
	}
	if names[inactive] != "Unknown Vendor" {
		t.Fatalf("expected fallback for inactive vendor, got %q", names[inactive])
	}
	if names[missing] != "Unknown Vendor" {
		t.Fatalf("expected fallback for missing vendor, got %q", names[missing])
	}
}

func TestDisplayNamesPropagatesRepoError(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}
	dir, err := NewDirectory(repo, "")
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	if _, err := dir.DisplayNames(context.Background(), []uuid.UUID{uuid.New()}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewDirectoryRequiresRepo(t *testing.T) {
	if _, err := NewDirectory(nil, "x"); err == nil {
		t.Fatalf("expected error for nil repo")
	}
}
