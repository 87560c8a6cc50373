package utils

import (
	"strings"
	"time"
)

type DateFormat string

const (
	FormatRFC3339       DateFormat = time.RFC3339
	FormatISODateTime   DateFormat = "2006-01-02T15:04:05"
	FormatISODateTimeMs DateFormat = "2006-01-02T15:04:05.000"
	FormatISODate       DateFormat = "2006-01-02"
	FormatBrazilianDate DateFormat = "02/01/2006"
	FormatClock         DateFormat = "15:04"
)

type DateValidator struct {
	supportedFormats []DateFormat
	location         *time.Location
}

type ValidationResult struct {
	IsValid        bool
	DetectedFormat DateFormat
	ParsedTime     time.Time
	OriginalValue  string
}

// NewDateValidator tries formats in the given order. Values without a zone
// are read in UTC unless WithLocation says otherwise.
func NewDateValidator(formats ...DateFormat) *DateValidator {
	return &DateValidator{
		supportedFormats: formats,
		location:         time.UTC,
	}
}

func (dv *DateValidator) WithLocation(loc *time.Location) *DateValidator {
	if loc != nil {
		dv.location = loc
	}
	return dv
}

func (dv *DateValidator) ValidateAndConvert(input string) ValidationResult {
	result := ValidationResult{OriginalValue: input}

	input = strings.TrimSpace(input)
	if input == "" {
		return result
	}

	for _, format := range dv.supportedFormats {
		parsed, err := time.ParseInLocation(string(format), input, dv.location)
		if err != nil {
			continue
		}
		result.IsValid = true
		result.DetectedFormat = format
		result.ParsedTime = parsed.UTC()
		return result
	}

	return result
}

func (dv *DateValidator) GetSupportedFormats() []DateFormat {
	return dv.supportedFormats
}

var (
	birthDates    = NewDateValidator(FormatBrazilianDate, FormatISODate, FormatRFC3339)
	donationDates = NewDateValidator(FormatRFC3339, FormatISODateTimeMs, FormatISODateTime, FormatISODate, FormatBrazilianDate)
	campaignDates = NewDateValidator(FormatRFC3339, FormatISODateTime, FormatISODate)
)

// ParseBirthDate accepts DD/MM/YYYY as typed in the profile form, or ISO.
func ParseBirthDate(input string) (time.Time, bool) {
	result := birthDates.ValidateAndConvert(input)
	return result.ParsedTime, result.IsValid
}

func ParseDonationDate(input string) (time.Time, bool) {
	result := donationDates.ValidateAndConvert(input)
	return result.ParsedTime, result.IsValid
}

func ParseCampaignDate(input string) (time.Time, bool) {
	result := campaignDates.ValidateAndConvert(input)
	return result.ParsedTime, result.IsValid
}

// ValidClock reports whether value is a 24h HH:MM time.
func ValidClock(value string) bool {
	_, err := time.Parse(string(FormatClock), value)
	return err == nil && len(value) == len(FormatClock)
}
