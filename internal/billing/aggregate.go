package billing

import (
	"fmt"
	"sort"
	"time"
)

// PaymentMethod records how a payment was taken at the desk
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

// Entry is one subscription payment record as the aggregator sees it. Fee
// fields the store never filled in arrive as zero, which is exactly how the
// rollups treat them. NextPaymentDate is nil when the stored record predates
// due-date tracking.
type Entry struct {
	PaymentDate          time.Time
	NextPaymentDate      *time.Time
	SubscriptionType     SubscriptionType
	SubscriptionDuration int
	BasicFee             int64
	SeatFee              int64
	LockerFee            int64
	PaymentMethod        PaymentMethod
}

// Total is the combined fee amount of the entry
func (e Entry) Total() int64 {
	return e.BasicFee + e.SeatFee + e.LockerFee
}

// StudentAccount is the materialized view the aggregator works on: one
// student with billing entries ordered newest first. Accounts are snapshots
// handed in by the store; the aggregator never fetches.
type StudentAccount struct {
	ID            string
	HumanID       string
	Name          string
	Gender        string
	Active        bool
	DateOfJoining time.Time
	SeatReserved  bool
	Locker        bool
	DocumentCount int
	Entries       []Entry
}

// LatestEntry returns the most recent billing entry, relying on the
// newest-first ordering convention of the store
func (a StudentAccount) LatestEntry() (Entry, bool) {
	if len(a.Entries) == 0 {
		return Entry{}, false
	}
	return a.Entries[0], true
}

// TotalRevenue sums basic, seat and locker fees across all entries
func TotalRevenue(entries []Entry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.Total()
	}
	return sum
}

// MonthlyRecurringRevenue is TotalRevenue restricted to entries paid in the
// same calendar month as ref
func MonthlyRecurringRevenue(entries []Entry, ref time.Time) int64 {
	refYear, refMonth, _ := ref.Date()
	var sum int64
	for _, e := range entries {
		if e.PaymentDate.IsZero() {
			continue
		}
		y, m, _ := e.PaymentDate.Date()
		if y == refYear && m == refMonth {
			sum += e.Total()
		}
	}
	return sum
}

// MonthRevenue is one month's revenue keyed "YYYY-MM"
type MonthRevenue struct {
	Month  string `json:"month"`
	Amount int64  `json:"amount"`
}

// RevenueByMonth groups entries by payment month and sums each group,
// ascending by month key. Entries without a payment date are skipped; a data
// quality gap in one record must not sink the rollup.
func RevenueByMonth(entries []Entry) []MonthRevenue {
	byMonth := make(map[string]int64)
	for _, e := range entries {
		if e.PaymentDate.IsZero() {
			continue
		}
		byMonth[monthKey(e.PaymentDate)] += e.Total()
	}

	out := make([]MonthRevenue, 0, len(byMonth))
	for key, amount := range byMonth {
		out = append(out, MonthRevenue{Month: key, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// SeriesPoint is one labelled point of a chart series
type SeriesPoint struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// TrailingMonthsSeries builds a contiguous revenue series for the `months`
// calendar months ending at ref's month inclusive. Months with no entries
// appear with amount 0, so the series never has gaps and always has exactly
// `months` points. Labels are short month plus two-digit year ("Oct 25").
func TrailingMonthsSeries(entries []Entry, months int, ref time.Time) []SeriesPoint {
	if months <= 0 {
		return nil
	}

	byMonth := make(map[string]int64)
	for _, e := range entries {
		if e.PaymentDate.IsZero() {
			continue
		}
		byMonth[monthKey(e.PaymentDate)] += e.Total()
	}

	year, month, _ := ref.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, ref.Location())

	out := make([]SeriesPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		out = append(out, SeriesPoint{
			Label:  m.Format("Jan 06"),
			Amount: byMonth[monthKey(m)],
		})
	}
	return out
}

// FinancialYearSummary is the Apr-Mar earnings breakdown for one financial year
type FinancialYearSummary struct {
	Label           string `json:"financial_year"`
	TotalRevenue    int64  `json:"total_revenue"`
	TotalBasicFees  int64  `json:"total_basic_fees"`
	TotalSeatFees   int64  `json:"total_seat_fees"`
	TotalLockerFees int64  `json:"total_locker_fees"`
}

// FinancialYearEarnings sums each fee bucket over the financial year
// containing ref. The financial year runs April 1 to March 31; a reference
// date in Jan-Mar belongs to the year that started the previous April. An
// entry paid March 31 lands in the year ending that day, April 1 in the next.
// Membership is decided on each entry's own calendar date, so entries stored
// in a different location than ref cannot shift across the boundary.
func FinancialYearEarnings(entries []Entry, ref time.Time) FinancialYearSummary {
	startYear := ref.Year()
	if ref.Month() < time.April {
		startYear--
	}

	summary := FinancialYearSummary{
		Label: fmt.Sprintf("%d-%d", startYear, startYear+1),
	}
	for _, e := range entries {
		if e.PaymentDate.IsZero() {
			continue
		}
		year, month, _ := e.PaymentDate.Date()
		inYear := (year == startYear && month >= time.April) ||
			(year == startYear+1 && month <= time.March)
		if !inYear {
			continue
		}
		summary.TotalRevenue += e.Total()
		summary.TotalBasicFees += e.BasicFee
		summary.TotalSeatFees += e.SeatFee
		summary.TotalLockerFees += e.LockerFee
	}
	return summary
}

// DueStudent pairs a student with the amount owed on their latest entry.
// DueAmount is the latest entry's fee sum; the console has no concept of a
// partially settled balance.
type DueStudent struct {
	Account   StudentAccount
	DueAmount int64
	DueDate   time.Time
	DaysLeft  int
}

// DueStudents returns the accounts whose latest entry is due on or before
// ref, most overdue first. Accounts with no entries or no recorded next
// payment date are excluded, not treated as due.
func DueStudents(accounts []StudentAccount, ref time.Time) []DueStudent {
	return collectByStatus(accounts, ref, DefaultDueWindowDays, DueStatusDue)
}

// UpcomingDueStudents returns the accounts whose latest entry falls due
// within windowDays after ref, soonest first
func UpcomingDueStudents(accounts []StudentAccount, windowDays int, ref time.Time) []DueStudent {
	return collectByStatus(accounts, ref, windowDays, DueStatusUpcoming)
}

func collectByStatus(accounts []StudentAccount, ref time.Time, windowDays int, want DueStatus) []DueStudent {
	var out []DueStudent
	for _, a := range accounts {
		latest, ok := a.LatestEntry()
		if !ok || latest.NextPaymentDate == nil {
			continue
		}

		c := ClassifyDueStatus(*latest.NextPaymentDate, true, ref, windowDays)
		if c.Status != want {
			continue
		}
		out = append(out, DueStudent{
			Account:   a,
			DueAmount: latest.Total(),
			DueDate:   DateOnly(*latest.NextPaymentDate),
			DaysLeft:  c.DaysLeft,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

// AllEntries flattens the billing entries of every account, the input shape
// of the revenue rollups
func AllEntries(accounts []StudentAccount) []Entry {
	var out []Entry
	for _, a := range accounts {
		out = append(out, a.Entries...)
	}
	return out
}

func monthKey(d time.Time) string {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
}
