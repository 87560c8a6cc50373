package services

import (
	"context"

	"doacin/internal/database"
	"doacin/internal/logger"
)

const (
	DashboardCachePattern = "dashboard:%s"
	LocalsCacheKey        = "locals:all"
)

// CacheInvalidationService drops cached read models after writes. Failures
// are logged and never returned: a stale entry expires with its TTL.
type CacheInvalidationService struct {
	db  database.DB
	log logger.Logger
}

func NewCacheInvalidationService(db database.DB) *CacheInvalidationService {
	return &CacheInvalidationService{
		db:  db,
		log: logger.New("CacheInvalidationService"),
	}
}

func (s *CacheInvalidationService) InvalidateDashboard(ctx context.Context, userID string) {
	if userID == "" {
		return
	}

	if err := database.NewCacheBuilder(s.db.Cache.Dashboard, userID).
		WithHashPattern(DashboardCachePattern).
		WithContext(ctx).
		Delete(); err != nil {
		s.log.Function("InvalidateDashboard").Warn("failed to invalidate dashboard cache", "userID", userID, "error", err)
	}
}

func (s *CacheInvalidationService) InvalidateLocals(ctx context.Context) {
	if err := database.NewCacheBuilder(s.db.Cache.Locals, LocalsCacheKey).
		WithContext(ctx).
		Delete(); err != nil {
		s.log.Function("InvalidateLocals").Warn("failed to invalidate locals cache", "error", err)
	}
}
