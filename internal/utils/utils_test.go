package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBirthDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
		valid    bool
	}{
		{input: "15/03/1990", expected: time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC), valid: true},
		{input: "1990-03-15", expected: time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC), valid: true},
		{input: " 01/12/2000 ", expected: time.Date(2000, time.December, 1, 0, 0, 0, 0, time.UTC), valid: true},
		{input: "31/02/1990"},
		{input: "03-15-1990"},
		{input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			parsed, ok := ParseBirthDate(tt.input)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.expected, parsed)
			}
		})
	}
}

func TestParseDonationDate(t *testing.T) {
	parsed, ok := ParseDonationDate("2026-10-01T09:30:00-03:00")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, time.October, 1, 12, 30, 0, 0, time.UTC), parsed)

	parsed, ok = ParseDonationDate("2026-10-01")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), parsed)

	parsed, ok = ParseDonationDate("2026-10-01T09:30:00.000")
	assert.True(t, ok)
	assert.Equal(t, 9, parsed.Hour())

	_, ok = ParseDonationDate("yesterday")
	assert.False(t, ok)
}

func TestDateValidator_DetectedFormat(t *testing.T) {
	result := NewDateValidator(FormatISODate, FormatBrazilianDate).ValidateAndConvert("14/10/2026")
	assert.True(t, result.IsValid)
	assert.Equal(t, FormatBrazilianDate, result.DetectedFormat)
	assert.Equal(t, "14/10/2026", result.OriginalValue)
}

func TestValidClock(t *testing.T) {
	assert.True(t, ValidClock("07:15"))
	assert.True(t, ValidClock("23:59"))
	assert.False(t, ValidClock("7:15"))
	assert.False(t, ValidClock("24:00"))
	assert.False(t, ValidClock("noon"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "hemope", Fold("HEMOPE"))
	assert.Equal(t, "gracas", Fold("Graças"))
	assert.Equal(t, "hospital sao jose", Fold(" Hospital São José "))
}

func TestContainsFolded(t *testing.T) {
	assert.True(t, ContainsFolded("Hemope - Graças", "hemope"))
	assert.True(t, ContainsFolded("Fundação HEMOPE", "fundacao"))
	assert.True(t, ContainsFolded("IHENE", "ihéne"))
	assert.False(t, ContainsFolded("GSH", "hemope"))
}
