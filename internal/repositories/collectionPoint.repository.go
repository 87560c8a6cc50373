package repositories

import (
	"context"
	"errors"
	"time"

	"doacin/internal/database"
	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/services"
	"doacin/internal/utils"

	"gorm.io/gorm"
)

type CollectionPointRepository interface {
	Create(ctx context.Context, point *CollectionPoint) error
	GetByID(ctx context.Context, id string) (CollectionPoint, error)
	List(ctx context.Context, pointType CollectionPointType) ([]CollectionPoint, error)
	FindByName(ctx context.Context, name string) (*CollectionPoint, error)
	GetLocalsFromCache(ctx context.Context) ([]CampaignLocal, bool)
	SetLocalsToCache(ctx context.Context, locals []CampaignLocal)
}

type collectionPointRepository struct {
	db       database.DB
	cacheTTL time.Duration
	log      logger.Logger
}

func NewCollectionPoint(db database.DB, ttl time.Duration) CollectionPointRepository {
	return &collectionPointRepository{
		db:       db,
		cacheTTL: ttlOrDefault(ttl),
		log:      logger.New("collectionPointRepository"),
	}
}

func (r *collectionPointRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *collectionPointRepository) Create(ctx context.Context, point *CollectionPoint) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(point).Error; err != nil {
		return log.Err("failed to create collection point", err, "name", point.Name)
	}

	return nil
}

func (r *collectionPointRepository) GetByID(ctx context.Context, id string) (CollectionPoint, error) {
	log := r.log.Function("GetByID")

	var point CollectionPoint
	if err := r.getDB(ctx).First(&point, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CollectionPoint{}, log.Err("collection point not found", ErrNotFound, "id", id)
		}
		return CollectionPoint{}, log.Err("failed to get collection point", err, "id", id)
	}

	return point, nil
}

// List returns points ordered by name. An empty pointType lists every type.
func (r *collectionPointRepository) List(
	ctx context.Context,
	pointType CollectionPointType,
) ([]CollectionPoint, error) {
	log := r.log.Function("List")

	query := r.getDB(ctx).Order("name ASC")
	if pointType != "" {
		query = query.Where("type = ?", pointType)
	}

	var points []CollectionPoint
	if err := query.Find(&points).Error; err != nil {
		return nil, log.Err("failed to list collection points", err, "type", pointType)
	}

	return points, nil
}

// FindByName returns the first point, by name order, whose name contains
// name ignoring case and accents. SQL LIKE cannot fold accents on sqlite,
// so matching happens here; the table holds a handful of centres.
func (r *collectionPointRepository) FindByName(ctx context.Context, name string) (*CollectionPoint, error) {
	points, err := r.List(ctx, "")
	if err != nil {
		return nil, err
	}

	for i := range points {
		if utils.ContainsFolded(points[i].Name, name) {
			return &points[i], nil
		}
	}

	return nil, nil
}

func (r *collectionPointRepository) GetLocalsFromCache(ctx context.Context) ([]CampaignLocal, bool) {
	var locals []CampaignLocal
	found, err := database.NewCacheBuilder(r.db.Cache.Locals, services.LocalsCacheKey).
		WithContext(ctx).
		Get(&locals)
	if err != nil {
		r.log.Function("GetLocalsFromCache").Warn("failed to read locals cache", "error", err)
		return nil, false
	}

	return locals, found
}

func (r *collectionPointRepository) SetLocalsToCache(ctx context.Context, locals []CampaignLocal) {
	if err := database.NewCacheBuilder(r.db.Cache.Locals, services.LocalsCacheKey).
		WithStruct(locals).
		WithTTL(r.cacheTTL).
		WithContext(ctx).
		Set(); err != nil {
		r.log.Function("SetLocalsToCache").Warn("failed to write locals cache", "error", err)
	}
}
