package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"bookline/backend/internal/domain"
	"bookline/backend/internal/store"
)

// businessRow is the flat storage shape; GetWithDetails folds the
// type-specific columns into the domain variant.
type businessRow struct {
	bun.BaseModel `bun:"table:businesses"`

	ID              string `bun:"id,pk"`
	Name            string `bun:"name,notnull"`
	Type            string `bun:"type,notnull"`
	Timezone        string `bun:"timezone"`
	SeatingCapacity *int   `bun:"seating_capacity"`
	InventorySize   *int   `bun:"inventory_size"`
}

type BusinessRepo struct {
	db *bun.DB
}

func NewBusinessRepo(db *bun.DB) *BusinessRepo {
	return &BusinessRepo{db: db}
}

func (r *BusinessRepo) Exists(ctx context.Context, businessID string) (bool, error) {
	return r.db.NewSelect().
		Model((*businessRow)(nil)).
		Where("id = ?", businessID).
		Exists(ctx)
}

func (r *BusinessRepo) GetWithDetails(ctx context.Context, businessID string) (domain.Business, error) {
	var row businessRow
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", businessID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Business{}, store.ErrNotFound
		}
		return domain.Business{}, err
	}

	return domain.Business{
		ID:       row.ID,
		Name:     row.Name,
		Timezone: row.Timezone,
		Details:  detailsForType(row),
	}, nil
}

func detailsForType(row businessRow) domain.BusinessDetails {
	switch row.Type {
	case "restaurant":
		return domain.RestaurantDetails{SeatingCapacity: row.SeatingCapacity}
	case "retail":
		return domain.RetailDetails{InventorySize: row.InventorySize}
	case "service":
		return domain.ServiceDetails{}
	default:
		return domain.NoDetails{}
	}
}
