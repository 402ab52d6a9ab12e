package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skytracker/backend/internal/middleware"
	"skytracker/backend/internal/models/dtos"
	"skytracker/backend/internal/models/entities"
	"skytracker/backend/internal/services"
)

type favoritesPayload struct {
	Favorites []entities.Favorite `json:"favorites"`
}

// ListFavoritesHandler handles GET /api/favorites
func ListFavoritesHandler(favSvc *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.GetSessionUser(r.Context())

		favorites, err := favSvc.GetFavorites(r.Context(), user.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Could not load favorites")
			return
		}
		respondWithSuccess(w, http.StatusOK, &favoritesPayload{Favorites: favorites})
	}
}

// ToggleFavoriteHandler handles POST /api/favorites/toggle. The body carries
// the flight record as rendered by the feed endpoints.
func ToggleFavoriteHandler(favSvc *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.GetSessionUser(r.Context())

		var flight dtos.Flight
		if err := json.NewDecoder(r.Body).Decode(&flight); err != nil || flight.ID == "" {
			respondWithError(w, http.StatusBadRequest, "A flight with an id is required")
			return
		}

		favorites, err := favSvc.ToggleFavorite(r.Context(), user.ID, flight)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Could not toggle favorite")
			return
		}
		respondWithSuccess(w, http.StatusOK, &favoritesPayload{Favorites: favorites})
	}
}

// AddFavoriteHandler handles POST /api/favorites
func AddFavoriteHandler(favSvc *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.GetSessionUser(r.Context())

		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		favorites, err := favSvc.AddFavoriteByCode(r.Context(), user.ID, req.Code)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Could not save favorite")
			return
		}
		respondWithSuccess(w, http.StatusOK, &favoritesPayload{Favorites: favorites})
	}
}

// SetFavoriteStatusHandler handles PUT /api/favorites/{id}
func SetFavoriteStatusHandler(favSvc *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.GetSessionUser(r.Context())
		favoriteID := chi.URLParam(r, "id")

		var req struct {
			IsActive bool `json:"isActive"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		favorites, err := favSvc.SetFavoriteStatus(r.Context(), user.ID, favoriteID, req.IsActive)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Could not update favorite")
			return
		}
		respondWithSuccess(w, http.StatusOK, &favoritesPayload{Favorites: favorites})
	}
}

// RemoveFavoriteHandler handles DELETE /api/favorites/{id}
func RemoveFavoriteHandler(favSvc *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.GetSessionUser(r.Context())
		favoriteID := chi.URLParam(r, "id")

		favorites, err := favSvc.RemoveFavorite(r.Context(), user.ID, favoriteID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Could not remove favorite")
			return
		}
		respondWithSuccess(w, http.StatusOK, &favoritesPayload{Favorites: favorites})
	}
}
