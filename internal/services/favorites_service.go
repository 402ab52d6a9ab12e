package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"skytracker/backend/internal/db/repositories"
	"skytracker/backend/internal/models/dtos"
	"skytracker/backend/internal/models/entities"
)

// FavoritesService manages a user's saved flights. Every mutation returns the
// refreshed list so the SPA can re-render from a single response.
type FavoritesService struct {
	repo *repositories.FavoritesRepository
}

func NewFavoritesService(repo *repositories.FavoritesRepository) *FavoritesService {
	return &FavoritesService{repo: repo}
}

func (svc *FavoritesService) GetFavorites(ctx context.Context, userID string) ([]entities.Favorite, error) {
	favorites, err := svc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []entities.Favorite{}
	}
	return favorites, nil
}

// ToggleFavorite saves the flight when absent and removes it when present
func (svc *FavoritesService) ToggleFavorite(ctx context.Context, userID string, flight dtos.Flight) ([]entities.Favorite, error) {
	existing, err := svc.repo.FindByFlight(ctx, userID, flight.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := svc.repo.Delete(ctx, userID, existing.ID); err != nil {
			return nil, err
		}
		return svc.GetFavorites(ctx, userID)
	}

	favorite := &entities.Favorite{
		ID:           uuid.NewString(),
		UserID:       userID,
		FlightID:     flight.ID,
		FlightNumber: flight.FlightNumber,
		IsActive:     true,
	}
	if err := svc.repo.Insert(ctx, favorite); err != nil {
		return nil, err
	}
	return svc.GetFavorites(ctx, userID)
}

func (svc *FavoritesService) SetFavoriteStatus(ctx context.Context, userID, favoriteID string, isActive bool) ([]entities.Favorite, error) {
	if err := svc.repo.SetActive(ctx, userID, favoriteID, isActive); err != nil {
		return nil, err
	}
	return svc.GetFavorites(ctx, userID)
}

// AddFavoriteByCode saves a favorite from a raw flight code, normalized to
// uppercase. Blank input is a no-op that returns the current list.
func (svc *FavoritesService) AddFavoriteByCode(ctx context.Context, userID, code string) ([]entities.Favorite, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if userID == "" || normalized == "" {
		return svc.GetFavorites(ctx, userID)
	}

	favorite := &entities.Favorite{
		ID:           uuid.NewString(),
		UserID:       userID,
		FlightID:     normalized,
		FlightNumber: normalized,
		IsActive:     true,
	}
	if err := svc.repo.Insert(ctx, favorite); err != nil {
		return nil, err
	}
	return svc.GetFavorites(ctx, userID)
}

func (svc *FavoritesService) RemoveFavorite(ctx context.Context, userID, favoriteID string) ([]entities.Favorite, error) {
	if err := svc.repo.Delete(ctx, userID, favoriteID); err != nil {
		return nil, err
	}
	return svc.GetFavorites(ctx, userID)
}
