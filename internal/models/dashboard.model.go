package models

import (
	"time"

	"doacin/internal/eligibility"
)

type Dashboard struct {
	Name                  string             `json:"name"`
	Email                 string             `json:"email"`
	BloodType             *string            `json:"bloodType"`
	Sex                   eligibility.Sex    `json:"sex"`
	Weight                *float64           `json:"weight"`
	Phone                 *string            `json:"phone"`
	BirthDate             *time.Time         `json:"birthDate"`
	CapibasBalance        int64              `json:"capibasBalance"`
	ExternalCapibas       int                `json:"externalCapibas"`
	LastDonationDate      *time.Time         `json:"lastDonationDate"`
	CycleStartDate        *time.Time         `json:"cycleStartDate"`
	DonationCountLastYear int                `json:"donationCountLastYear"`
	ConfirmedDonations    int64              `json:"confirmedDonations"`
	PendingDonations      int64              `json:"pendingDonations"`
	Eligibility           eligibility.Result `json:"eligibility"`
}

// EligibilityInput rebuilds the calculator input from the dashboard so a
// cached dashboard can be re-evaluated against a new day.
func (d Dashboard) EligibilityInput() eligibility.Input {
	return eligibility.Input{
		LastDonationDate:      d.LastDonationDate,
		Sex:                   d.Sex,
		DonationCountLastYear: d.DonationCountLastYear,
		BirthDate:             d.BirthDate,
		Weight:                d.Weight,
		CycleStartDate:        d.CycleStartDate,
	}
}
