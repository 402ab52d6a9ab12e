package api

import (
	"os"

	"skytracker/backend/internal/common"
	"skytracker/backend/internal/constants"
	"skytracker/backend/internal/db"
	"skytracker/backend/internal/db/repositories"
	"skytracker/backend/internal/logging"
	"skytracker/backend/internal/providers"
	"skytracker/backend/internal/services"
)

type Repositories struct {
	User      *repositories.UserRepository
	Favorites *repositories.FavoritesRepository
}

type Services struct {
	Cache     common.CacheInterface
	Store     *common.CacheStore
	Flights   *services.FlightsService
	Auth      *services.AuthService
	Favorites *services.FavoritesService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
}

// InitDependencies wires providers, caches, repositories, and services. The
// schedule cache falls back to in-memory when Redis is unreachable or not
// configured.
func InitDependencies() (*Dependencies, error) {
	repos := &Repositories{
		User:      repositories.NewUserRepository(db.DB),
		Favorites: repositories.NewFavoritesRepository(db.PgDB),
	}

	var cacheSvc common.CacheInterface
	if os.Getenv("REDIS_HOST") != "" {
		redisCache, err := common.NewRedisCacheService()
		if err != nil {
			logging.Warn("Redis unavailable, falling back to in-memory cache", "error", err.Error())
			cacheSvc = common.NewCacheService(constants.DefaultAirportFlightTTL, 10*constants.DefaultAirportFlightTTL)
		} else {
			logging.Info("Using Redis cache")
			cacheSvc = redisCache
		}
	} else {
		cacheSvc = common.NewCacheService(constants.DefaultAirportFlightTTL, 10*constants.DefaultAirportFlightTTL)
	}

	store := common.NewCacheStore(os.Getenv("CACHE_DIR"))

	openSky := providers.NewOpenSkyProvider()
	feed := providers.NewAviationStackProvider()
	photos := providers.NewPlaneSpottersProvider()

	flightsSvc := services.NewFlightsService(openSky, feed, photos, cacheSvc, store)
	authSvc := services.NewAuthService(repos.User)
	favoritesSvc := services.NewFavoritesService(repos.Favorites)

	return &Dependencies{
		Repo: repos,
		Services: &Services{
			Cache:     cacheSvc,
			Store:     store,
			Flights:   flightsSvc,
			Auth:      authSvc,
			Favorites: favoritesSvc,
		},
	}, nil
}
