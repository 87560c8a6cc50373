package repositories

import (
	"context"
	"time"

	"doacin/internal/database"
	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/services"
)

const defaultCacheTTL = 5 * time.Minute

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return defaultCacheTTL
	}
	return ttl
}

// DashboardRepository caches computed dashboards per donor. The source
// data lives in the user and donation repositories.
type DashboardRepository interface {
	GetFromCache(ctx context.Context, userID string) (Dashboard, bool)
	SetToCache(ctx context.Context, userID string, dashboard Dashboard)
}

type dashboardRepository struct {
	db       database.DB
	cacheTTL time.Duration
	log      logger.Logger
}

func NewDashboard(db database.DB, ttl time.Duration) DashboardRepository {
	return &dashboardRepository{
		db:       db,
		cacheTTL: ttlOrDefault(ttl),
		log:      logger.New("dashboardRepository"),
	}
}

func (r *dashboardRepository) GetFromCache(ctx context.Context, userID string) (Dashboard, bool) {
	var dashboard Dashboard
	found, err := database.NewCacheBuilder(r.db.Cache.Dashboard, userID).
		WithHashPattern(services.DashboardCachePattern).
		WithContext(ctx).
		Get(&dashboard)
	if err != nil {
		r.log.Function("GetFromCache").Warn("failed to read dashboard cache", "userID", userID, "error", err)
		return Dashboard{}, false
	}

	return dashboard, found
}

func (r *dashboardRepository) SetToCache(ctx context.Context, userID string, dashboard Dashboard) {
	if err := database.NewCacheBuilder(r.db.Cache.Dashboard, userID).
		WithHashPattern(services.DashboardCachePattern).
		WithStruct(dashboard).
		WithTTL(r.cacheTTL).
		WithContext(ctx).
		Set(); err != nil {
		r.log.Function("SetToCache").Warn("failed to write dashboard cache", "userID", userID, "error", err)
	}
}
