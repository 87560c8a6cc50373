package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string { return &s }

func TestDonation_Transition(t *testing.T) {
	at := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	tests := []struct {
		name    string
		from    DonationStatus
		to      DonationStatus
		wantErr bool
	}{
		{name: "pending to confirmed", from: DonationPending, to: DonationConfirmed},
		{name: "pending to rejected", from: DonationPending, to: DonationRejected},
		{name: "pending to pending", from: DonationPending, to: DonationPending, wantErr: true},
		{name: "confirmed to rejected", from: DonationConfirmed, to: DonationRejected, wantErr: true},
		{name: "confirmed to pending", from: DonationConfirmed, to: DonationPending, wantErr: true},
		{name: "rejected to confirmed", from: DonationRejected, to: DonationConfirmed, wantErr: true},
		{name: "confirmed to confirmed", from: DonationConfirmed, to: DonationConfirmed, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			donation := Donation{Status: tt.from}
			err := donation.Transition(tt.to, at)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				assert.Equal(t, tt.from, donation.Status)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, donation.Status)
		})
	}
}

func TestDonation_ConfirmSetsValidation(t *testing.T) {
	at := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	donation := Donation{Status: DonationPending}

	require.NoError(t, donation.Transition(DonationConfirmed, at))

	assert.True(t, donation.ValidatedByQR)
	require.NotNil(t, donation.ConfirmedAt)
	assert.Equal(t, time.UTC, donation.ConfirmedAt.Location())
	assert.True(t, donation.ConfirmedAt.Equal(at))
	assert.True(t, donation.CountsTowardBalance())
}

func TestDonation_RejectLeavesValidationUnset(t *testing.T) {
	donation := Donation{Status: DonationPending}

	require.NoError(t, donation.Transition(DonationRejected, time.Now()))

	assert.False(t, donation.ValidatedByQR)
	assert.Nil(t, donation.ConfirmedAt)
	assert.False(t, donation.CountsTowardBalance())
}

func TestNewDonationHistoryItem_MissingLocation(t *testing.T) {
	item := NewDonationHistoryItem(Donation{Status: DonationPending, PointsEarned: 100})
	assert.Equal(t, UnknownLocationName, item.Location.Name)
	assert.Empty(t, item.Location.ID)

	point := &CollectionPoint{Name: "Hemope"}
	point.ID = "cp-1"
	item = NewDonationHistoryItem(Donation{CollectionPoint: point})
	assert.Equal(t, DonationLocation{ID: "cp-1", Name: "Hemope"}, item.Location)
}

func TestCollectionPoint_Hours(t *testing.T) {
	tests := []struct {
		name     string
		open     *string
		close    *string
		expected string
	}{
		{name: "both", open: stringPtr("07:00"), close: stringPtr("18:00"), expected: "07:00 - 18:00"},
		{name: "open only", open: stringPtr("07:00"), expected: "07:00"},
		{name: "close only", close: stringPtr("18:00"), expected: "18:00"},
		{name: "empty strings", open: stringPtr(""), close: stringPtr(""), expected: ""},
		{name: "neither", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point := CollectionPoint{OpeningTime: tt.open, ClosingTime: tt.close}
			assert.Equal(t, tt.expected, point.Hours())
		})
	}
}

func TestNewCampaignLocal_Defaults(t *testing.T) {
	local := NewCampaignLocal(CollectionPoint{Name: "Hemope", Phone: stringPtr("")})

	assert.Equal(t, CollectionPointFixed, local.Type)
	assert.Nil(t, local.Contact)
	assert.Equal(t, "", local.Hours)
}

func TestFlexFloat_Unmarshal(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{input: `72.5`, expected: 72.5},
		{input: `"72.5"`, expected: 72.5},
		{input: `"72,5"`, expected: 72.5},
		{input: `" 60 "`, expected: 60},
		{input: `"heavy"`, wantErr: true},
		{input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var value FlexFloat
			err := json.Unmarshal([]byte(tt.input), &value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, float64(value))
		})
	}
}

func TestUpdateProfileRequest_OmittedWeight(t *testing.T) {
	var req UpdateProfileRequest
	require.NoError(t, json.Unmarshal([]byte(`{"phone":"81999990000"}`), &req))

	assert.Nil(t, req.Weight)
	assert.Nil(t, req.Weight.Ptr())
	require.NotNil(t, req.Phone)
}

func TestValidBloodType(t *testing.T) {
	for _, bloodType := range BloodTypes {
		assert.True(t, ValidBloodType(bloodType), bloodType)
	}
	assert.False(t, ValidBloodType("C+"))
	assert.False(t, ValidBloodType("a+"))
}
