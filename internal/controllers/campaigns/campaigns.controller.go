package campaignController

import (
	"context"
	"fmt"
	"strings"
	"time"

	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/repositories"
	"doacin/internal/services"
	"doacin/internal/utils"
)

type CampaignController struct {
	pointRepo repositories.CollectionPointRepository
	cache     *services.CacheInvalidationService
	log       logger.Logger
}

func New(
	pointRepo repositories.CollectionPointRepository,
	cache *services.CacheInvalidationService,
) *CampaignController {
	return &CampaignController{
		pointRepo: pointRepo,
		cache:     cache,
		log:       logger.New("CampaignController"),
	}
}

// ListLocals returns the collection points ordered by name. Only the
// unfiltered list is cached.
func (cc *CampaignController) ListLocals(ctx context.Context, pointType string) ([]CampaignLocal, error) {
	log := cc.log.Function("ListLocals")

	filter := CollectionPointType(strings.ToLower(strings.TrimSpace(pointType)))
	if filter != "" && !filter.Valid() {
		return nil, log.Err("invalid collection point type", ErrValidation, "type", pointType)
	}

	if filter == "" {
		if locals, found := cc.pointRepo.GetLocalsFromCache(ctx); found {
			return locals, nil
		}
	}

	points, err := cc.pointRepo.List(ctx, filter)
	if err != nil {
		return nil, log.Err("failed to list collection points", err, "type", filter)
	}

	locals := make([]CampaignLocal, 0, len(points))
	for _, point := range points {
		locals = append(locals, NewCampaignLocal(point))
	}

	if filter == "" {
		cc.pointRepo.SetLocalsToCache(ctx, locals)
	}

	return locals, nil
}

func (cc *CampaignController) CreateLocal(
	ctx context.Context,
	req CreateCollectionPointRequest,
) (CampaignLocal, error) {
	log := cc.log.Function("CreateLocal")

	point, err := newCollectionPoint(req)
	if err != nil {
		return CampaignLocal{}, log.Err("invalid collection point", err, "name", req.Name)
	}

	if err := cc.pointRepo.Create(ctx, &point); err != nil {
		return CampaignLocal{}, log.Err("failed to create collection point", err, "name", point.Name)
	}

	cc.cache.InvalidateLocals(ctx)

	log.Info("collection point created", "collectionPointID", point.ID, "type", point.Type)
	return NewCampaignLocal(point), nil
}

func newCollectionPoint(req CreateCollectionPointRequest) (CollectionPoint, error) {
	point := CollectionPoint{
		Name:     strings.TrimSpace(req.Name),
		Address:  strings.TrimSpace(req.Address),
		Phone:    optional(req.Contact),
		Email:    optional(req.Email),
		MapsLink: optional(req.MapsLink),
		Type:     CollectionPointFixed,
	}
	if point.Name == "" || point.Address == "" {
		return CollectionPoint{}, fmt.Errorf("%w: name and address are required", ErrValidation)
	}

	if req.Type != "" {
		point.Type = CollectionPointType(strings.ToLower(strings.TrimSpace(req.Type)))
		if !point.Type.Valid() {
			return CollectionPoint{}, fmt.Errorf("%w: type must be fixed or mobile", ErrValidation)
		}
	}

	if err := applyHours(&point, req.Hours); err != nil {
		return CollectionPoint{}, err
	}

	point.Latitude = req.Latitude.Ptr()
	point.Longitude = req.Longitude.Ptr()
	if point.Latitude != nil && (*point.Latitude < -90 || *point.Latitude > 90) {
		return CollectionPoint{}, fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if point.Longitude != nil && (*point.Longitude < -180 || *point.Longitude > 180) {
		return CollectionPoint{}, fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}

	start, err := parseEventDate(req.EventStartDate, "eventStartDate")
	if err != nil {
		return CollectionPoint{}, err
	}
	end, err := parseEventDate(req.EventEndDate, "eventEndDate")
	if err != nil {
		return CollectionPoint{}, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return CollectionPoint{}, fmt.Errorf("%w: eventEndDate is before eventStartDate", ErrValidation)
	}
	point.EventStartDate = start
	point.EventEndDate = end

	return point, nil
}

// applyHours accepts "08:00 - 17:00", or a single opening time.
func applyHours(point *CollectionPoint, hours string) error {
	hours = strings.TrimSpace(hours)
	if hours == "" {
		return nil
	}

	open, closing, _ := strings.Cut(hours, " - ")
	open = strings.TrimSpace(open)
	closing = strings.TrimSpace(closing)

	if open != "" {
		if !utils.ValidClock(open) {
			return fmt.Errorf("%w: hours must look like 08:00 - 17:00", ErrValidation)
		}
		point.OpeningTime = &open
	}
	if closing != "" {
		if !utils.ValidClock(closing) {
			return fmt.Errorf("%w: hours must look like 08:00 - 17:00", ErrValidation)
		}
		point.ClosingTime = &closing
	}

	return nil
}

func parseEventDate(value, field string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	date, ok := utils.ParseCampaignDate(value)
	if !ok {
		return nil, fmt.Errorf("%w: invalid %s", ErrValidation, field)
	}
	return &date, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
