package billing

import (
	"math"
	"time"
)

// SubscriptionType represents how a payment's validity period is measured
type SubscriptionType string

const (
	SubscriptionMonth SubscriptionType = "month"
	SubscriptionYear  SubscriptionType = "year"
)

// Valid reports whether t is a known subscription type
func (t SubscriptionType) Valid() bool {
	return t == SubscriptionMonth || t == SubscriptionYear
}

// MaxDuration returns the largest duration accepted for this subscription
// type: 31 months for monthly, 12 years for yearly. Zero for unknown types.
func (t SubscriptionType) MaxDuration() int {
	switch t {
	case SubscriptionMonth:
		return 31
	case SubscriptionYear:
		return 12
	}
	return 0
}

// ComputeNextPaymentDate derives the next due date from the payment start
// date, subscription type and duration. The second return value is false when
// any input is unusable (zero start date, non-positive duration, unknown
// type); bad input never panics, matching the form-preview use where fields
// fill in one at a time.
func ComputeNextPaymentDate(start time.Time, typ SubscriptionType, duration int) (time.Time, bool) {
	if start.IsZero() || duration <= 0 || !typ.Valid() {
		return time.Time{}, false
	}

	var next time.Time
	var err error
	switch typ {
	case SubscriptionMonth:
		next, err = AddMonths(start, duration)
	case SubscriptionYear:
		next, err = AddYears(start, duration)
	}
	if err != nil {
		return time.Time{}, false
	}
	return next, true
}

// DueStatus classifies a student's latest billing entry against a reference date
type DueStatus string

const (
	DueStatusUnknown  DueStatus = "unknown"
	DueStatusCurrent  DueStatus = "current"
	DueStatusUpcoming DueStatus = "upcoming"
	DueStatusDue      DueStatus = "due"
)

// DefaultDueWindowDays is the upcoming-due window used when the caller does
// not supply one
const DefaultDueWindowDays = 7

// Classification is the result of classifying a due date. DaysLeft is only
// meaningful for DueStatusUpcoming.
type Classification struct {
	Status   DueStatus `json:"status"`
	DaysLeft int       `json:"days_left,omitempty"`
}

// Tier maps a classification to the UI severity tier
func (c Classification) Tier() string {
	switch c.Status {
	case DueStatusDue:
		return "urgent"
	case DueStatusUpcoming:
		return "warning"
	case DueStatusCurrent:
		return "neutral"
	}
	return ""
}

// ClassifyDueStatus compares a next-payment date against a reference date by
// calendar date only. Due includes "due today". Upcoming covers due dates
// within windowDays after the reference date; windowDays <= 0 falls back to
// DefaultDueWindowDays. hasNext false means the entry had no next payment
// date recorded.
func ClassifyDueStatus(next time.Time, hasNext bool, ref time.Time, windowDays int) Classification {
	if !hasNext || next.IsZero() {
		return Classification{Status: DueStatusUnknown}
	}
	if windowDays <= 0 {
		windowDays = DefaultDueWindowDays
	}

	dueDate := DateOnly(next)
	refDate := DateOnly(ref)

	if !dueDate.After(refDate) {
		return Classification{Status: DueStatusDue}
	}

	// Rounding absorbs DST shifts inside the window so the whole-day count stays exact
	days := int(math.Round(dueDate.Sub(refDate).Hours() / 24))
	if days <= windowDays {
		return Classification{Status: DueStatusUpcoming, DaysLeft: days}
	}
	return Classification{Status: DueStatusCurrent}
}
