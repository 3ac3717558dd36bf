package vendors

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Directory resolves vendor display names when labeling split child orders.
type Directory interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type directory struct {
	repo        Repository
	unknownName string
}

// NewDirectory builds a directory that falls back to unknownName for
// missing or inactive vendors.
func NewDirectory(repo Repository, unknownName string) (Directory, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendors repository required")
	}
	if unknownName == "" {
		unknownName = "Unknown Vendor"
	}
	return &directory{repo: repo, unknownName: unknownName}, nil
}

func (d *directory) DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		names[id] = d.unknownName
	}
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := d.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading vendors: %w", err)
	}
	for _, vendor := range rows {
		if !vendor.Active {
			continue
		}
		names[vendor.ID] = vendor.DisplayName
	}
	return names, nil
}
