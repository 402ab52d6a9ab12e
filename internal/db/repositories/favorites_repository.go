package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"skytracker/backend/internal/models/entities"
)

// FavoritesRepository handles the favorites table using GORM
type FavoritesRepository struct {
	db *gorm.DB
}

// NewFavoritesRepository creates a new GORM-based favorites repository
func NewFavoritesRepository(db *gorm.DB) *FavoritesRepository {
	return &FavoritesRepository{db: db}
}

// ListByUser retrieves all favorites for a user, newest first
func (r *FavoritesRepository) ListByUser(ctx context.Context, userID string) ([]entities.Favorite, error) {
	var favorites []entities.Favorite

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorites: %w", err)
	}
	return favorites, nil
}

// FindByFlight retrieves a user's favorite for one flight id, nil when absent
func (r *FavoritesRepository) FindByFlight(ctx context.Context, userID, flightID string) (*entities.Favorite, error) {
	var favorite entities.Favorite

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND flight_id = ?", userID, flightID).
		First(&favorite).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch favorite: %w", err)
	}
	return &favorite, nil
}

// Insert stores a new favorite
func (r *FavoritesRepository) Insert(ctx context.Context, favorite *entities.Favorite) error {
	if err := r.db.WithContext(ctx).Create(favorite).Error; err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	return nil
}

// SetActive flips the is_active flag on one of the user's favorites
func (r *FavoritesRepository) SetActive(ctx context.Context, userID, favoriteID string, isActive bool) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Favorite{}).
		Where("id = ? AND user_id = ?", favoriteID, userID).
		Update("is_active", isActive).Error

	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}
	return nil
}

// Delete removes one of the user's favorites
func (r *FavoritesRepository) Delete(ctx context.Context, userID, favoriteID string) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", favoriteID, userID).
		Delete(&entities.Favorite{}).Error

	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}
