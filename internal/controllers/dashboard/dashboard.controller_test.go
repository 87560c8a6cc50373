package dashboardController

import (
	"context"
	"testing"
	"time"

	"doacin/internal/eligibility"
	. "doacin/internal/models"
	"doacin/internal/repositories"
	"doacin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	controller   *DashboardController
	userRepo     repositories.UserRepository
	donationRepo repositories.DonationRepository
	user         User
	point        CollectionPoint
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	userRepo := repositories.New(db)
	donationRepo := repositories.NewDonation(db)
	pointRepo := repositories.NewCollectionPoint(db, time.Minute)

	birth := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)
	weight := 80.0
	user := User{
		Name:         "Joao",
		Email:        "joao@example.com",
		NationalID:   "321",
		PasswordHash: "x",
		Sex:          eligibility.SexMale,
		BirthDate:    &birth,
		Weight:       &weight,
	}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	point := CollectionPoint{Name: "Hemope", Address: "Rua Joaquim Nabuco"}
	require.NoError(t, pointRepo.Create(context.Background(), &point))

	controller := New(userRepo, donationRepo, repositories.NewDashboard(db, time.Minute))
	controller.now = func() time.Time { return now }

	return fixture{
		controller:   controller,
		userRepo:     userRepo,
		donationRepo: donationRepo,
		user:         user,
		point:        point,
	}
}

func (f fixture) donate(t *testing.T, daysAgo int, status DonationStatus) {
	t.Helper()
	donation := Donation{
		UserID:            f.user.ID,
		CollectionPointID: f.point.ID,
		DonationDate:      now.AddDate(0, 0, -daysAgo),
		Status:            status,
		PointsEarned:      100,
	}
	require.NoError(t, f.donationRepo.Create(context.Background(), &donation))
}

func TestGetDashboard_FirstDonation(t *testing.T) {
	f := setup(t)

	dashboard, err := f.controller.GetDashboard(context.Background(), f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, "Joao", dashboard.Name)
	assert.Equal(t, int64(0), dashboard.CapibasBalance)
	assert.Nil(t, dashboard.LastDonationDate)
	assert.Equal(t, 0, dashboard.DonationCountLastYear)
	assert.Equal(t, eligibility.StatusFirstDonation, dashboard.Eligibility.Status)
	assert.True(t, dashboard.Eligibility.Eligible)
}

func TestGetDashboard_CountsOnlyConfirmed(t *testing.T) {
	f := setup(t)
	f.donate(t, 200, DonationConfirmed)
	f.donate(t, 30, DonationConfirmed)
	f.donate(t, 10, DonationPending)
	f.donate(t, 5, DonationRejected)
	f.donate(t, 500, DonationConfirmed)

	dashboard, err := f.controller.GetDashboard(context.Background(), f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(300), dashboard.CapibasBalance)
	assert.Equal(t, int64(3), dashboard.ConfirmedDonations)
	assert.Equal(t, int64(1), dashboard.PendingDonations)
	assert.Equal(t, 2, dashboard.DonationCountLastYear)
	require.NotNil(t, dashboard.LastDonationDate)
	assert.Equal(t, now.AddDate(0, 0, -30), dashboard.LastDonationDate.UTC())
	require.NotNil(t, dashboard.CycleStartDate)
	assert.Equal(t, now.AddDate(0, 0, -200), dashboard.CycleStartDate.UTC())

	assert.Equal(t, eligibility.StatusCooldown, dashboard.Eligibility.Status)
	assert.Equal(t, 30, dashboard.Eligibility.RemainingDays)
}

func TestGetDashboard_IncompleteProfile(t *testing.T) {
	f := setup(t)
	user := f.user
	user.Weight = nil
	require.NoError(t, f.userRepo.Update(context.Background(), &user))

	dashboard, err := f.controller.GetDashboard(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, eligibility.StatusProfileIncomplete, dashboard.Eligibility.Status)
}

func TestGetDashboard_UnknownUser(t *testing.T) {
	f := setup(t)

	_, err := f.controller.GetDashboard(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

type memoryDashboards struct {
	entries map[string]Dashboard
	sets    int
}

func (m *memoryDashboards) GetFromCache(ctx context.Context, userID string) (Dashboard, bool) {
	dashboard, found := m.entries[userID]
	return dashboard, found
}

func (m *memoryDashboards) SetToCache(ctx context.Context, userID string, dashboard Dashboard) {
	m.sets++
	m.entries[userID] = dashboard
}

func TestGetDashboard_CachedWindow(t *testing.T) {
	f := setup(t)
	f.donate(t, 360, DonationConfirmed)
	f.donate(t, 270, DonationConfirmed)
	f.donate(t, 180, DonationConfirmed)
	f.donate(t, 90, DonationConfirmed)

	cache := &memoryDashboards{entries: map[string]Dashboard{}}
	controller := New(f.userRepo, f.donationRepo, cache)
	clock := now
	controller.now = func() time.Time { return clock }

	dashboard, err := controller.GetDashboard(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, dashboard.DonationCountLastYear)
	assert.Equal(t, eligibility.StatusAnnualCapReached, dashboard.Eligibility.Status)
	assert.Equal(t, 1, cache.sets)

	t.Run("served from cache while the window holds", func(t *testing.T) {
		clock = now.AddDate(0, 0, 2)
		dashboard, err := controller.GetDashboard(context.Background(), f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.sets)
		assert.Equal(t, 4, dashboard.DonationCountLastYear)
		assert.Equal(t, eligibility.StatusAnnualCapReached, dashboard.Eligibility.Status)
	})

	t.Run("rebuilt once the oldest donation ages out", func(t *testing.T) {
		clock = now.AddDate(0, 0, 10)
		dashboard, err := controller.GetDashboard(context.Background(), f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, cache.sets)
		assert.Equal(t, 3, dashboard.DonationCountLastYear)
		require.NotNil(t, dashboard.CycleStartDate)
		assert.Equal(t, now.AddDate(0, 0, -270), dashboard.CycleStartDate.UTC())
		assert.Equal(t, eligibility.StatusEligible, dashboard.Eligibility.Status)
	})
}

func TestWindowCurrent(t *testing.T) {
	oldest := now.AddDate(-1, 0, 0)

	assert.True(t, windowCurrent(Dashboard{}, now))
	assert.True(t, windowCurrent(Dashboard{CycleStartDate: &oldest}, now))
	assert.False(t, windowCurrent(Dashboard{CycleStartDate: &oldest}, now.Add(time.Second)))
}
