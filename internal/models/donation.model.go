package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationConfirmed DonationStatus = "confirmed"
	DonationRejected  DonationStatus = "rejected"
)

type Donation struct {
	BaseUUIDModel
	UserID            string           `gorm:"type:varchar(64);not null;index"       json:"userId"`
	CollectionPointID string           `gorm:"type:varchar(64);not null;index"       json:"collectionPointId"`
	DonationDate      time.Time        `gorm:"not null"                              json:"donationDate"`
	Status            DonationStatus   `gorm:"type:varchar(16);not null"             json:"status"`
	PointsEarned      int              `gorm:"not null"                              json:"pointsEarned"`
	ValidatedByQR     bool             `gorm:"column:validated_by_qr;not null"       json:"validatedByQR"`
	Notes             *string          `gorm:"type:text"                             json:"notes,omitempty"`
	ConfirmedAt       *time.Time       `                                             json:"confirmedAt,omitempty"`
	User              *User            `gorm:"foreignKey:UserID"                     json:"-"`
	CollectionPoint   *CollectionPoint `gorm:"foreignKey:CollectionPointID"          json:"collectionPoint,omitempty"`
}

func (d *Donation) BeforeSave(tx *gorm.DB) error {
	d.DonationDate = d.DonationDate.UTC()
	d.ConfirmedAt = utcPtr(d.ConfirmedAt)
	return d.BaseUUIDModel.BeforeSave(tx)
}

// Transition applies a status change. Only pending donations move, and
// only forward to confirmed or rejected.
func (d *Donation) Transition(to DonationStatus, at time.Time) error {
	if d.Status != DonationPending || (to != DonationConfirmed && to != DonationRejected) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, to)
	}

	d.Status = to
	if to == DonationConfirmed {
		d.ValidatedByQR = true
		confirmedAt := at.UTC()
		d.ConfirmedAt = &confirmedAt
	}
	return nil
}

// CountsTowardBalance reports whether the donation's points are part of
// the donor's Capibas balance.
func (d Donation) CountsTowardBalance() bool {
	return d.Status == DonationConfirmed
}

type CreateDonationRequest struct {
	DonationDate    string `json:"donationDate"`
	CollectionPoint string `json:"collectionPoint"`
	Notes           string `json:"notes"`
}

type DonationLocation struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type DonationHistoryItem struct {
	ID            string           `json:"id"`
	DonationDate  time.Time        `json:"donationDate"`
	Status        DonationStatus   `json:"status"`
	PointsEarned  int              `json:"pointsEarned"`
	ValidatedByQR bool             `json:"validatedByQR"`
	Location      DonationLocation `json:"location"`
}

const UnknownLocationName = "Local não informado"

func NewDonationHistoryItem(d Donation) DonationHistoryItem {
	location := DonationLocation{Name: UnknownLocationName}
	if d.CollectionPoint != nil {
		location = DonationLocation{ID: d.CollectionPoint.ID, Name: d.CollectionPoint.Name}
	}

	return DonationHistoryItem{
		ID:            d.ID,
		DonationDate:  d.DonationDate,
		Status:        d.Status,
		PointsEarned:  d.PointsEarned,
		ValidatedByQR: d.ValidatedByQR,
		Location:      location,
	}
}

type DonationStats struct {
	TotalDonations     int64      `json:"totalDonations"`
	ConfirmedDonations int64      `json:"confirmedDonations"`
	PendingDonations   int64      `json:"pendingDonations"`
	CapibasBalance     int64      `json:"capibasBalance"`
	LastDonationDate   *time.Time `json:"lastDonationDate"`
}
