// Package repository persists listings in the games table.
package repository

import (
	"context"
	"encoding/json"
	"errors"

	"storefront/backend/internal/apperr"
	"storefront/backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ListingRepository is a thin passthrough to gorm. Errors are classified as
// apperr.ErrNotFound or apperr.ErrBackend.
type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// List returns every row.
func (r *ListingRepository) List(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	if err := r.db.WithContext(ctx).Order("id").Find(&listings).Error; err != nil {
		return nil, apperr.Backend("list games", err)
	}
	return listings, nil
}

// Get returns the row with id.
func (r *ListingRepository) Get(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Game not found")
	}
	if err != nil {
		return nil, apperr.Backend("get game", err)
	}
	return &listing, nil
}

// Insert writes a new row; ID and CreatedAt are filled in by the database.
func (r *ListingRepository) Insert(ctx context.Context, listing *models.Listing) error {
	listing.ID = 0
	if len(listing.Media) == 0 {
		listing.SetMediaList(nil)
	}
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return apperr.Backend("insert game", err)
	}
	return nil
}

// Update merges the supplied fields into row id and returns the resulting row.
// There is no existence pre-check: an id matching nothing fails on the reload.
func (r *ListingRepository) Update(ctx context.Context, id uint, patch models.ListingPatch) (*models.Listing, error) {
	if !patch.IsEmpty() {
		updates, err := patchColumns(patch)
		if err != nil {
			return nil, apperr.Backend("update game", err)
		}
		err = r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, apperr.Backend("update game", err)
		}
	}
	return r.Get(ctx, id)
}

// Delete removes row id. Deleting a missing id is not an error.
func (r *ListingRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Listing{}).Error; err != nil {
		return apperr.Backend("delete game", err)
	}
	return nil
}

func patchColumns(p models.ListingPatch) (map[string]any, error) {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.URL != nil {
		cols["url"] = *p.URL
	}
	if p.DeveloperID != nil {
		cols["developer_id"] = *p.DeveloperID
	}
	if p.Media != nil {
		media := *p.Media
		if media == nil {
			media = []models.MediaObject{}
		}
		b, err := json.Marshal(media)
		if err != nil {
			return nil, err
		}
		cols["media"] = datatypes.JSON(b)
	}
	return cols, nil
}
