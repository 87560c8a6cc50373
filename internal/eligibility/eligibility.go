// Package eligibility decides whether a donor may give blood today and, if
// not, when they may. Rules follow the Brazilian donation guidelines: donors
// aged 16 to 69 weighing at least 50 kg, 60 days between donations and at
// most 4 per year for men, 90 days and at most 3 per year for women.
package eligibility

import (
	"strings"
	"time"
)

const (
	MinAge    = 16
	MaxAge    = 69
	MinWeight = 50.0

	MaleIntervalDays   = 60
	FemaleIntervalDays = 90

	MaleMaxDonationsPerYear   = 4
	FemaleMaxDonationsPerYear = 3
)

type Sex string

const (
	SexUnknown Sex = ""
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
)

// ParseSex normalises the spellings accepted from clients.
func ParseSex(value string) Sex {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "m", "male", "masculino":
		return SexMale
	case "f", "female", "feminino":
		return SexFemale
	default:
		return SexUnknown
	}
}

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

type Status string

const (
	StatusProfileIncomplete Status = "profile_incomplete"
	StatusIneligibleAge     Status = "ineligible_age"
	StatusFirstDonation     Status = "first_donation"
	StatusAnnualCapReached  Status = "annual_cap_reached"
	StatusEligible          Status = "eligible"
	StatusCooldown          Status = "cooldown"
)

type Input struct {
	LastDonationDate      *time.Time
	Sex                   Sex
	DonationCountLastYear int
	BirthDate             *time.Time
	Weight                *float64
	// CycleStartDate is the first confirmed donation inside the trailing
	// twelve months. Only used to date the end of an annual cap.
	CycleStartDate *time.Time
}

type Result struct {
	Status              Status     `json:"status"`
	Eligible            bool       `json:"eligible"`
	Age                 int        `json:"age,omitempty"`
	IntervalDays        int        `json:"intervalDays,omitempty"`
	MaxDonationsPerYear int        `json:"maxDonationsPerYear,omitempty"`
	NextEligibleDate    *time.Time `json:"nextEligibleDate,omitempty"`
	RemainingDays       int        `json:"remainingDays"`
}

// Calculate never fails: missing or malformed inputs yield
// StatusProfileIncomplete.
func Calculate(in Input, now time.Time) Result {
	if in.Weight == nil || *in.Weight < MinWeight || in.BirthDate == nil || !in.Sex.Valid() {
		return Result{Status: StatusProfileIncomplete}
	}

	today := civilDate(now, now.Location())
	age := Age(*in.BirthDate, today)
	if age < MinAge || age > MaxAge {
		return Result{Status: StatusIneligibleAge, Age: age}
	}

	result := Result{
		Age:                 age,
		IntervalDays:        MaleIntervalDays,
		MaxDonationsPerYear: MaleMaxDonationsPerYear,
	}
	if in.Sex == SexFemale {
		result.IntervalDays = FemaleIntervalDays
		result.MaxDonationsPerYear = FemaleMaxDonationsPerYear
	}

	if in.LastDonationDate == nil {
		result.Status = StatusFirstDonation
		result.Eligible = true
		return result
	}

	last := calendarDate(*in.LastDonationDate, now.Location())

	if in.DonationCountLastYear >= result.MaxDonationsPerYear {
		cycleStart := last
		if in.CycleStartDate != nil {
			cycleStart = calendarDate(*in.CycleStartDate, now.Location())
		}
		next := cycleStart.AddDate(1, 0, 0)
		result.Status = StatusAnnualCapReached
		result.NextEligibleDate = &next
		result.RemainingDays = max(daysBetween(today, next), 0)
		return result
	}

	next := last.AddDate(0, 0, result.IntervalDays)
	result.NextEligibleDate = &next
	if !today.Before(next) {
		result.Status = StatusEligible
		result.Eligible = true
		return result
	}

	result.Status = StatusCooldown
	result.RemainingDays = daysBetween(today, next)
	return result
}

// Age returns completed years between birth and on. birth is a stored
// calendar date, so its UTC day counts, not its instant.
func Age(birth, on time.Time) int {
	birth = birth.UTC()
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age
}

func civilDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// calendarDate rebuilds a stored date in loc. Stored dates are UTC
// calendar days; converting the instant with In would shift them a day
// in zones away from UTC.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from a to b. Both must be civil dates;
// the computation runs in UTC so DST shifts do not skew the count.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
