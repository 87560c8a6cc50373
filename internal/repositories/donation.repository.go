package repositories

import (
	"context"
	"errors"
	"time"

	"doacin/internal/database"
	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/services"

	"gorm.io/gorm"
)

// ConfirmedWindow summarises confirmed donations inside a time window.
type ConfirmedWindow struct {
	Count int
	First *time.Time
}

type DonationRepository interface {
	Create(ctx context.Context, donation *Donation) error
	GetByID(ctx context.Context, id string) (Donation, error)
	SaveTransition(ctx context.Context, donation *Donation, from DonationStatus) error
	ListByUser(ctx context.Context, userID string) ([]Donation, error)
	GetLatestPending(ctx context.Context, userID string) (Donation, error)
	GetStats(ctx context.Context, userID string) (DonationStats, error)
	GetLastConfirmed(ctx context.Context, userID string) (*Donation, error)
	GetConfirmedSince(ctx context.Context, userID string, since time.Time) (ConfirmedWindow, error)
}

type donationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewDonation(db database.DB) DonationRepository {
	return &donationRepository{
		db:  db,
		log: logger.New("donationRepository"),
	}
}

func (r *donationRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *donationRepository) Create(ctx context.Context, donation *Donation) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Omit("User", "CollectionPoint").Create(donation).Error; err != nil {
		return log.Err("failed to create donation", err, "userID", donation.UserID)
	}

	return nil
}

func (r *donationRepository) GetByID(ctx context.Context, id string) (Donation, error) {
	log := r.log.Function("GetByID")

	var donation Donation
	err := r.getDB(ctx).Preload("CollectionPoint").First(&donation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Donation{}, log.Err("donation not found", ErrNotFound, "donationID", id)
		}
		return Donation{}, log.Err("failed to get donation", err, "donationID", id)
	}

	return donation, nil
}

// SaveTransition persists a status change made by Donation.Transition. The
// write only matches while the row still holds the from status, so two
// concurrent transitions cannot both succeed.
func (r *donationRepository) SaveTransition(
	ctx context.Context,
	donation *Donation,
	from DonationStatus,
) error {
	log := r.log.Function("SaveTransition")

	result := r.getDB(ctx).
		Model(donation).
		Omit("User", "CollectionPoint").
		Where("status = ?", from).
		Updates(map[string]any{
			"status":          donation.Status,
			"validated_by_qr": donation.ValidatedByQR,
			"confirmed_at":    donation.ConfirmedAt,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return log.Err("failed to save donation status", result.Error, "donationID", donation.ID)
	}
	if result.RowsAffected == 0 {
		return log.Err("donation status changed concurrently", ErrInvalidTransition,
			"donationID", donation.ID, "from", from, "to", donation.Status)
	}

	return nil
}

func (r *donationRepository) ListByUser(ctx context.Context, userID string) ([]Donation, error) {
	log := r.log.Function("ListByUser")

	var donations []Donation
	err := r.getDB(ctx).
		Preload("CollectionPoint").
		Where("user_id = ?", userID).
		Order("donation_date DESC").
		Order("created_at DESC").
		Find(&donations).Error
	if err != nil {
		return nil, log.Err("failed to list donations", err, "userID", userID)
	}

	return donations, nil
}

// GetLatestPending returns the caller's most recently registered pending
// donation, by creation time rather than donation date.
func (r *donationRepository) GetLatestPending(ctx context.Context, userID string) (Donation, error) {
	log := r.log.Function("GetLatestPending")

	var donation Donation
	err := r.getDB(ctx).
		Preload("CollectionPoint").
		Where("user_id = ? AND status = ?", userID, DonationPending).
		Order("created_at DESC").
		Order("id DESC").
		First(&donation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Donation{}, log.Err("no pending donation", ErrNotFound, "userID", userID)
		}
		return Donation{}, log.Err("failed to get pending donation", err, "userID", userID)
	}

	return donation, nil
}

type statusTotals struct {
	Status DonationStatus
	Count  int64
	Points int64
}

func (r *donationRepository) GetStats(ctx context.Context, userID string) (DonationStats, error) {
	log := r.log.Function("GetStats")

	var totals []statusTotals
	err := r.getDB(ctx).
		Model(&Donation{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(points_earned), 0) AS points").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&totals).Error
	if err != nil {
		return DonationStats{}, log.Err("failed to aggregate donations", err, "userID", userID)
	}

	var stats DonationStats
	for _, total := range totals {
		stats.TotalDonations += total.Count
		switch total.Status {
		case DonationConfirmed:
			stats.ConfirmedDonations = total.Count
			stats.CapibasBalance = total.Points
		case DonationPending:
			stats.PendingDonations = total.Count
		}
	}

	last, err := r.GetLastConfirmed(ctx, userID)
	if err != nil {
		return DonationStats{}, err
	}
	if last != nil {
		stats.LastDonationDate = &last.DonationDate
	}

	return stats, nil
}

func (r *donationRepository) GetLastConfirmed(ctx context.Context, userID string) (*Donation, error) {
	log := r.log.Function("GetLastConfirmed")

	var donations []Donation
	err := r.getDB(ctx).
		Where("user_id = ? AND status = ?", userID, DonationConfirmed).
		Order("donation_date DESC").
		Limit(1).
		Find(&donations).Error
	if err != nil {
		return nil, log.Err("failed to get last confirmed donation", err, "userID", userID)
	}

	if len(donations) == 0 {
		return nil, nil
	}
	return &donations[0], nil
}

func (r *donationRepository) GetConfirmedSince(
	ctx context.Context,
	userID string,
	since time.Time,
) (ConfirmedWindow, error) {
	log := r.log.Function("GetConfirmedSince")

	var donations []Donation
	err := r.getDB(ctx).
		Select("id", "donation_date").
		Where("user_id = ? AND status = ? AND donation_date >= ?", userID, DonationConfirmed, since.UTC()).
		Order("donation_date ASC").
		Find(&donations).Error
	if err != nil {
		return ConfirmedWindow{}, log.Err("failed to count confirmed donations", err, "userID", userID)
	}

	window := ConfirmedWindow{Count: len(donations)}
	if len(donations) > 0 {
		first := donations[0].DonationDate
		window.First = &first
	}

	return window, nil
}
