package dashboardController

import (
	"context"
	"time"

	"doacin/internal/eligibility"
	"doacin/internal/logger"
	. "doacin/internal/models"
	"doacin/internal/repositories"
)

type DashboardController struct {
	userRepo      repositories.UserRepository
	donationRepo  repositories.DonationRepository
	dashboardRepo repositories.DashboardRepository
	now           func() time.Time
	log           logger.Logger
}

func New(
	userRepo repositories.UserRepository,
	donationRepo repositories.DonationRepository,
	dashboardRepo repositories.DashboardRepository,
) *DashboardController {
	return &DashboardController{
		userRepo:      userRepo,
		donationRepo:  donationRepo,
		dashboardRepo: dashboardRepo,
		now:           time.Now,
		log:           logger.New("DashboardController"),
	}
}

// GetDashboard serves the cached dashboard when present. Eligibility is
// always recomputed because it depends on today's date, and the entry is
// rebuilt once a counted donation has left the trailing twelve months.
func (dc *DashboardController) GetDashboard(ctx context.Context, userID string) (Dashboard, error) {
	log := dc.log.Function("GetDashboard")

	now := dc.now()

	if dashboard, found := dc.dashboardRepo.GetFromCache(ctx, userID); found && windowCurrent(dashboard, now) {
		dashboard.Eligibility = eligibility.Calculate(dashboard.EligibilityInput(), now)
		return dashboard, nil
	}

	user, err := dc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return Dashboard{}, log.Err("failed to get user", err, "userID", userID)
	}

	stats, err := dc.donationRepo.GetStats(ctx, userID)
	if err != nil {
		return Dashboard{}, log.Err("failed to get donation stats", err, "userID", userID)
	}

	last, err := dc.donationRepo.GetLastConfirmed(ctx, userID)
	if err != nil {
		return Dashboard{}, log.Err("failed to get last donation", err, "userID", userID)
	}

	window, err := dc.donationRepo.GetConfirmedSince(ctx, userID, now.AddDate(-1, 0, 0))
	if err != nil {
		return Dashboard{}, log.Err("failed to get donations of the last year", err, "userID", userID)
	}

	dashboard := Dashboard{
		Name:                  user.Name,
		Email:                 user.Email,
		BloodType:             user.BloodType,
		Sex:                   user.Sex,
		Weight:                user.Weight,
		Phone:                 user.Phone,
		BirthDate:             user.BirthDate,
		CapibasBalance:        stats.CapibasBalance,
		ExternalCapibas:       user.ExternalCapibas,
		CycleStartDate:        window.First,
		DonationCountLastYear: window.Count,
		ConfirmedDonations:    stats.ConfirmedDonations,
		PendingDonations:      stats.PendingDonations,
	}
	if last != nil {
		date := last.DonationDate
		dashboard.LastDonationDate = &date
	}
	dashboard.Eligibility = eligibility.Calculate(dashboard.EligibilityInput(), now)

	dc.dashboardRepo.SetToCache(ctx, userID, dashboard)
	return dashboard, nil
}

// windowCurrent reports whether the cached trailing-year count still holds.
// CycleStartDate is the oldest counted donation, so it is the first to age
// out of the window.
func windowCurrent(dashboard Dashboard, now time.Time) bool {
	return dashboard.CycleStartDate == nil || !dashboard.CycleStartDate.Before(now.AddDate(-1, 0, 0))
}
