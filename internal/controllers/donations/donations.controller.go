package donationController

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"doacin/config"
	"doacin/internal/conecta"
	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/repositories"
	"doacin/internal/services"
	"doacin/internal/utils"
	"doacin/internal/websockets"
)

const defaultCheckInTimeout = 10 * time.Second

type CheckInClient interface {
	CheckInEnabled() bool
	CheckIn(ctx context.Context, req conecta.CheckInRequest) error
}

type Notifier interface {
	Notify(userID, eventType string, data any)
}

type DonationController struct {
	donationRepo   repositories.DonationRepository
	pointRepo      repositories.CollectionPointRepository
	tx             *services.TransactionService
	cache          *services.CacheInvalidationService
	notifier       Notifier
	conecta        CheckInClient
	points         int
	checkInTimeout time.Duration
	checkIns       sync.WaitGroup
	now            func() time.Time
	log            logger.Logger
}

func New(
	donationRepo repositories.DonationRepository,
	pointRepo repositories.CollectionPointRepository,
	tx *services.TransactionService,
	cache *services.CacheInvalidationService,
	notifier Notifier,
	conecta CheckInClient,
	config config.Config,
) *DonationController {
	timeout := config.ConectaTimeout
	if timeout <= 0 {
		timeout = defaultCheckInTimeout
	}

	return &DonationController{
		donationRepo:   donationRepo,
		pointRepo:      pointRepo,
		tx:             tx,
		cache:          cache,
		notifier:       notifier,
		conecta:        conecta,
		points:         config.DonationPoints,
		checkInTimeout: timeout,
		now:            time.Now,
		log:            logger.New("DonationController"),
	}
}

func (dc *DonationController) List(ctx context.Context, userID string) ([]DonationHistoryItem, error) {
	log := dc.log.Function("List")

	donations, err := dc.donationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, log.Err("failed to list donations", err, "userID", userID)
	}

	items := make([]DonationHistoryItem, 0, len(donations))
	for _, donation := range donations {
		items = append(items, NewDonationHistoryItem(donation))
	}

	return items, nil
}

// Create registers a pending donation. An unknown centre name creates a
// fixed collection point so the history keeps the name the donor typed.
func (dc *DonationController) Create(
	ctx context.Context,
	userID string,
	req CreateDonationRequest,
) (Donation, error) {
	log := dc.log.Function("Create")

	centre := strings.TrimSpace(req.CollectionPoint)
	if strings.TrimSpace(req.DonationDate) == "" || centre == "" {
		return Donation{}, log.Err("donation date and collection point are required", ErrValidation, "userID", userID)
	}

	donationDate, ok := utils.ParseDonationDate(req.DonationDate)
	if !ok {
		return Donation{}, log.Err("invalid donation date", ErrValidation, "userID", userID, "donationDate", req.DonationDate)
	}
	if donationDate.After(dc.now()) {
		return Donation{}, log.Err("donation date is in the future", ErrValidation, "userID", userID, "donationDate", req.DonationDate)
	}

	var donation Donation
	createdPoint := false
	err := dc.tx.Execute(ctx, func(txCtx context.Context) error {
		point, err := dc.pointRepo.FindByName(txCtx, centre)
		if err != nil {
			return err
		}
		if point == nil {
			point = &CollectionPoint{
				Name:    centre,
				Address: UnknownAddress,
				Type:    CollectionPointFixed,
			}
			if err := dc.pointRepo.Create(txCtx, point); err != nil {
				return err
			}
			createdPoint = true
			log.Info("created collection point from donation", "collectionPointID", point.ID, "name", centre)
		}

		donation = Donation{
			UserID:            userID,
			CollectionPointID: point.ID,
			CollectionPoint:   point,
			DonationDate:      donationDate,
			Status:            DonationPending,
			PointsEarned:      dc.points,
		}
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			donation.Notes = &notes
		}

		return dc.donationRepo.Create(txCtx, &donation)
	})
	if err != nil {
		return Donation{}, log.Err("failed to create donation", err, "userID", userID)
	}

	dc.cache.InvalidateDashboard(ctx, userID)
	if createdPoint {
		dc.cache.InvalidateLocals(ctx)
	}
	dc.notifier.Notify(userID, websockets.EventDonationCreated, NewDonationHistoryItem(donation))

	log.Info("donation registered", "userID", userID, "donationID", donation.ID)
	return donation, nil
}

// Confirm validates the caller's most recently registered pending
// donation, then checks the donor in on Conecta in the background.
func (dc *DonationController) Confirm(ctx context.Context, user User) (Donation, error) {
	log := dc.log.Function("Confirm")

	var donation Donation
	err := dc.tx.Execute(ctx, func(txCtx context.Context) error {
		pending, err := dc.donationRepo.GetLatestPending(txCtx, user.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: no pending donation to confirm", ErrValidation)
			}
			return err
		}

		if err := pending.Transition(DonationConfirmed, dc.now()); err != nil {
			return err
		}
		if err := dc.donationRepo.SaveTransition(txCtx, &pending, DonationPending); err != nil {
			return err
		}

		donation = pending
		return nil
	})
	if err != nil {
		return Donation{}, log.Err("failed to confirm donation", err, "userID", user.ID)
	}

	dc.cache.InvalidateDashboard(ctx, user.ID)
	dc.notifier.Notify(user.ID, websockets.EventDonationConfirmed, NewDonationHistoryItem(donation))
	dc.checkIn(user, donation)

	log.Info("donation confirmed", "userID", user.ID, "donationID", donation.ID)
	return donation, nil
}

// checkIn runs detached from the request: fiber recycles the request
// context once the handler returns.
func (dc *DonationController) checkIn(user User, donation Donation) {
	log := dc.log.Function("checkIn")

	if dc.conecta == nil || !dc.conecta.CheckInEnabled() {
		log.Debug("conecta check-in not configured", "donationID", donation.ID)
		return
	}
	if donation.CollectionPoint == nil || !donation.CollectionPoint.HasCoordinates() {
		log.Warn("collection point has no coordinates, skipping check-in", "donationID", donation.ID)
		return
	}

	req := conecta.CheckInRequest{
		Document:  user.NationalID,
		Latitude:  *donation.CollectionPoint.Latitude,
		Longitude: *donation.CollectionPoint.Longitude,
	}

	dc.checkIns.Add(1)
	go func() {
		defer dc.checkIns.Done()

		checkInCtx, cancel := context.WithTimeout(context.Background(), dc.checkInTimeout)
		defer cancel()

		if err := dc.conecta.CheckIn(checkInCtx, req); err != nil {
			log.Er("conecta check-in failed", err, "userID", user.ID, "donationID", donation.ID)
			return
		}
		log.Info("conecta check-in recorded", "userID", user.ID, "donationID", donation.ID)
	}()
}

// Wait blocks until background check-ins finish.
func (dc *DonationController) Wait() {
	dc.checkIns.Wait()
}

func (dc *DonationController) Reject(ctx context.Context, donationID string) (Donation, error) {
	log := dc.log.Function("Reject")

	var donation Donation
	err := dc.tx.Execute(ctx, func(txCtx context.Context) error {
		found, err := dc.donationRepo.GetByID(txCtx, donationID)
		if err != nil {
			return err
		}

		if err := found.Transition(DonationRejected, dc.now()); err != nil {
			return err
		}
		if err := dc.donationRepo.SaveTransition(txCtx, &found, DonationPending); err != nil {
			return err
		}

		donation = found
		return nil
	})
	if err != nil {
		return Donation{}, log.Err("failed to reject donation", err, "donationID", donationID)
	}

	dc.cache.InvalidateDashboard(ctx, donation.UserID)
	dc.notifier.Notify(donation.UserID, websockets.EventDonationRejected, NewDonationHistoryItem(donation))

	log.Info("donation rejected", "donationID", donation.ID, "userID", donation.UserID)
	return donation, nil
}

func (dc *DonationController) Stats(ctx context.Context, userID string) (DonationStats, error) {
	log := dc.log.Function("Stats")

	stats, err := dc.donationRepo.GetStats(ctx, userID)
	if err != nil {
		return DonationStats{}, log.Err("failed to get donation stats", err, "userID", userID)
	}

	return stats, nil
}
