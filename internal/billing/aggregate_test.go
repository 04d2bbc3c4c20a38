package billing

import (
	"testing"
	"time"
)

func entry(paid time.Time, basic, seat, locker int64) Entry {
	return Entry{
		PaymentDate:      paid,
		SubscriptionType: SubscriptionMonth,
		BasicFee:         basic,
		SeatFee:          seat,
		LockerFee:        locker,
	}
}

func entryWithDue(paid, due time.Time, basic, seat, locker int64) Entry {
	e := entry(paid, basic, seat, locker)
	e.NextPaymentDate = &due
	return e
}

func TestTotalRevenue(t *testing.T) {
	entries := []Entry{
		entry(date(2025, time.January, 5), 500, 100, 50),
		entry(date(2025, time.February, 5), 500, 0, 0),
		entry(date(2025, time.March, 5), 0, 0, 0),
	}

	if got := TotalRevenue(nil); got != 0 {
		t.Errorf("TotalRevenue(nil) = %d; want 0", got)
	}
	if got := TotalRevenue(entries); got != 1150 {
		t.Errorf("TotalRevenue = %d; want 1150", got)
	}

	// Order must not matter
	reversed := []Entry{entries[2], entries[1], entries[0]}
	if got := TotalRevenue(reversed); got != 1150 {
		t.Errorf("TotalRevenue(reversed) = %d; want 1150", got)
	}
}

func TestMonthlyRecurringRevenue(t *testing.T) {
	entries := []Entry{
		entry(date(2025, time.October, 3), 500, 100, 0),
		entry(date(2025, time.October, 28), 700, 0, 0),
		entry(date(2025, time.September, 30), 900, 0, 0),
		entry(date(2024, time.October, 15), 400, 0, 0), // same month, wrong year
		entry(time.Time{}, 999, 0, 0),                  // no payment date
	}

	got := MonthlyRecurringRevenue(entries, date(2025, time.October, 20))
	if got != 1300 {
		t.Errorf("MonthlyRecurringRevenue = %d; want 1300", got)
	}
}

func TestRevenueByMonth(t *testing.T) {
	entries := []Entry{
		entry(date(2025, time.March, 10), 500, 0, 0),
		entry(date(2025, time.January, 5), 300, 100, 0),
		entry(date(2025, time.January, 25), 200, 0, 0),
		entry(time.Time{}, 999, 0, 0), // skipped, no date
	}

	got := RevenueByMonth(entries)
	want := []MonthRevenue{
		{Month: "2025-01", Amount: 600},
		{Month: "2025-03", Amount: 500},
	}
	if len(got) != len(want) {
		t.Fatalf("RevenueByMonth returned %d groups; want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RevenueByMonth[%d] = %+v; want %+v", i, got[i], want[i])
		}
	}
}

func TestTrailingMonthsSeries(t *testing.T) {
	ref := date(2025, time.October, 15)
	entries := []Entry{
		entry(date(2025, time.October, 3), 800, 0, 0),
		entry(date(2025, time.July, 3), 500, 0, 0),
		entry(date(2024, time.November, 3), 300, 0, 0),
		entry(date(2024, time.October, 3), 999, 0, 0), // 13 months back, outside range
	}

	got := TrailingMonthsSeries(entries, 12, ref)
	if len(got) != 12 {
		t.Fatalf("series has %d points; want 12", len(got))
	}

	if got[0].Label != "Nov 24" || got[0].Amount != 300 {
		t.Errorf("first point = %+v; want {Nov 24 300}", got[0])
	}
	if got[11].Label != "Oct 25" || got[11].Amount != 800 {
		t.Errorf("last point = %+v; want {Oct 25 800}", got[11])
	}

	// Months without data must be present at zero
	if got[8].Label != "Jul 25" || got[8].Amount != 500 {
		t.Errorf("Jul point = %+v; want {Jul 25 500}", got[8])
	}
	if got[9].Label != "Aug 25" || got[9].Amount != 0 {
		t.Errorf("gap month = %+v; want {Aug 25 0}", got[9])
	}
}

func TestTrailingMonthsSeriesAlwaysFullLength(t *testing.T) {
	got := TrailingMonthsSeries(nil, 12, date(2025, time.June, 1))
	if len(got) != 12 {
		t.Fatalf("series with no data has %d points; want 12", len(got))
	}
	for _, p := range got {
		if p.Amount != 0 {
			t.Errorf("point %q = %d; want 0", p.Label, p.Amount)
		}
	}
}

func TestFinancialYearEarnings(t *testing.T) {
	entries := []Entry{
		entry(date(2025, time.March, 31), 500, 100, 50),  // last day of FY 2024-2025
		entry(date(2025, time.April, 1), 700, 200, 100),  // first day of FY 2025-2026
		entry(date(2024, time.April, 1), 300, 0, 0),      // first day of FY 2024-2025
		entry(date(2024, time.March, 31), 999, 999, 999), // FY 2023-2024
	}

	got := FinancialYearEarnings(entries, date(2025, time.June, 1))
	if got.Label != "2025-2026" {
		t.Fatalf("label = %q; want 2025-2026", got.Label)
	}
	if got.TotalRevenue != 1000 || got.TotalBasicFees != 700 || got.TotalSeatFees != 200 || got.TotalLockerFees != 100 {
		t.Errorf("FY 2025-2026 sums = %+v", got)
	}

	// Reference date before April resolves to the previous start year
	got = FinancialYearEarnings(entries, date(2025, time.February, 10))
	if got.Label != "2024-2025" {
		t.Fatalf("label = %q; want 2024-2025", got.Label)
	}
	if got.TotalRevenue != 950 {
		t.Errorf("FY 2024-2025 total = %d; want 950", got.TotalRevenue)
	}
}

func TestFinancialYearEarningsEntryLocation(t *testing.T) {
	// A payment recorded late on March 31 in a western zone reads as April 1
	// in UTC; its own calendar date decides the year, not the reference's zone
	west := time.FixedZone("UTC-5", -5*3600)
	entries := []Entry{
		entry(time.Date(2025, time.March, 31, 23, 0, 0, 0, west), 500, 0, 0),
	}

	got := FinancialYearEarnings(entries, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC))
	if got.Label != "2024-2025" {
		t.Fatalf("label = %q; want 2024-2025", got.Label)
	}
	if got.TotalRevenue != 500 {
		t.Errorf("FY 2024-2025 total = %d; want 500", got.TotalRevenue)
	}

	got = FinancialYearEarnings(entries, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	if got.TotalRevenue != 0 {
		t.Errorf("FY 2025-2026 total = %d; want 0", got.TotalRevenue)
	}
}

func TestDueStudents(t *testing.T) {
	ref := date(2025, time.February, 16)

	accounts := []StudentAccount{
		{
			ID:   "s1",
			Name: "Overdue Since January",
			Entries: []Entry{
				entryWithDue(date(2024, time.December, 20), date(2025, time.January, 20), 500, 0, 0),
			},
		},
		{
			ID:   "s2",
			Name: "Due Yesterday",
			Entries: []Entry{
				entryWithDue(date(2025, time.January, 15), date(2025, time.February, 15), 500, 100, 50),
				// older entry with a due date must be ignored
				entryWithDue(date(2024, time.December, 15), date(2025, time.January, 15), 400, 0, 0),
			},
		},
		{
			ID:   "s3",
			Name: "Far Future",
			Entries: []Entry{
				entryWithDue(date(2025, time.February, 10), date(2025, time.March, 18), 500, 0, 0),
			},
		},
		{ID: "s4", Name: "No Entries"},
		{
			ID:   "s5",
			Name: "No Next Date",
			Entries: []Entry{
				entry(date(2025, time.January, 10), 500, 0, 0),
			},
		},
	}

	got := DueStudents(accounts, ref)
	if len(got) != 2 {
		t.Fatalf("DueStudents returned %d; want 2", len(got))
	}
	if got[0].Account.ID != "s1" || got[1].Account.ID != "s2" {
		t.Errorf("order = [%s %s]; want [s1 s2] most overdue first", got[0].Account.ID, got[1].Account.ID)
	}
	if got[1].DueAmount != 650 {
		t.Errorf("s2 due amount = %d; want 650", got[1].DueAmount)
	}
}

func TestUpcomingDueStudents(t *testing.T) {
	ref := date(2025, time.February, 10)

	accounts := []StudentAccount{
		{
			ID: "s1",
			Entries: []Entry{
				entryWithDue(date(2025, time.January, 15), date(2025, time.February, 15), 500, 0, 0),
			},
		},
		{
			ID: "s2",
			Entries: []Entry{
				entryWithDue(date(2025, time.January, 12), date(2025, time.February, 12), 300, 0, 0),
			},
		},
		{
			ID: "s3", // 30 days out, beyond any window here
			Entries: []Entry{
				entryWithDue(date(2025, time.February, 10), date(2025, time.March, 12), 700, 0, 0),
			},
		},
		{
			ID: "s4", // already due, not upcoming
			Entries: []Entry{
				entryWithDue(date(2025, time.January, 1), date(2025, time.February, 1), 400, 0, 0),
			},
		},
	}

	got := UpcomingDueStudents(accounts, 7, ref)
	if len(got) != 2 {
		t.Fatalf("UpcomingDueStudents returned %d; want 2", len(got))
	}
	if got[0].Account.ID != "s2" || got[1].Account.ID != "s1" {
		t.Errorf("order = [%s %s]; want [s2 s1] soonest first", got[0].Account.ID, got[1].Account.ID)
	}
	if got[0].DaysLeft != 2 || got[1].DaysLeft != 5 {
		t.Errorf("days left = [%d %d]; want [2 5]", got[0].DaysLeft, got[1].DaysLeft)
	}
}

// Full path from a recorded payment to classification, the scenario the
// payment drawer walks through.
func TestPaymentToClassificationEndToEnd(t *testing.T) {
	paid := date(2025, time.January, 15)
	next, ok := ComputeNextPaymentDate(paid, SubscriptionMonth, 1)
	if !ok {
		t.Fatal("ComputeNextPaymentDate not ok")
	}
	if want := date(2025, time.February, 15); !next.Equal(want) {
		t.Fatalf("next payment date = %v; want %v", next, want)
	}

	c := ClassifyDueStatus(next, true, date(2025, time.February, 10), 7)
	if c.Status != DueStatusUpcoming || c.DaysLeft != 5 {
		t.Errorf("at Feb 10 = %+v; want upcoming with 5 days left", c)
	}

	c = ClassifyDueStatus(next, true, date(2025, time.February, 16), 7)
	if c.Status != DueStatusDue {
		t.Errorf("at Feb 16 = %+v; want due", c)
	}
}

func TestAllEntries(t *testing.T) {
	accounts := []StudentAccount{
		{ID: "s1", Entries: []Entry{entry(date(2025, time.January, 1), 100, 0, 0)}},
		{ID: "s2"},
		{ID: "s3", Entries: []Entry{
			entry(date(2025, time.February, 1), 200, 0, 0),
			entry(date(2025, time.January, 1), 300, 0, 0),
		}},
	}
	got := AllEntries(accounts)
	if len(got) != 3 {
		t.Fatalf("AllEntries returned %d entries; want 3", len(got))
	}
	if TotalRevenue(got) != 600 {
		t.Errorf("flattened revenue = %d; want 600", TotalRevenue(got))
	}
}

func TestEnrollmentStats(t *testing.T) {
	ref := date(2025, time.October, 20)
	accounts := []StudentAccount{
		{ID: "s1", Active: true, Gender: "male", DateOfJoining: date(2025, time.October, 2), DocumentCount: 3, SeatReserved: true},
		{ID: "s2", Active: true, Gender: "female", DateOfJoining: date(2025, time.March, 12), Locker: true},
		{ID: "s3", Active: false, Gender: "male", DateOfJoining: date(2024, time.October, 1), DocumentCount: 1},
	}

	got := EnrollmentStats(accounts, ref)
	if got.Total != 3 || got.Active != 2 || got.Inactive != 1 {
		t.Errorf("counts = %d/%d/%d; want 3/2/1", got.Total, got.Active, got.Inactive)
	}
	if got.ThisMonthEnrollments != 1 {
		t.Errorf("this month enrollments = %d; want 1", got.ThisMonthEnrollments)
	}
	if got.TotalDocuments != 4 || got.StudentsWithoutDocument != 1 {
		t.Errorf("documents = %d missing %d; want 4 and 1", got.TotalDocuments, got.StudentsWithoutDocument)
	}
	if got.WithSeats != 1 || got.WithLockers != 1 {
		t.Errorf("seats/lockers = %d/%d; want 1/1", got.WithSeats, got.WithLockers)
	}
	if got.GenderCounts["male"] != 2 || got.GenderCounts["female"] != 1 {
		t.Errorf("gender counts = %v", got.GenderCounts)
	}
	if len(got.EnrollmentsByMonth) != 12 {
		t.Fatalf("enrollments by month has %d buckets; want 12", len(got.EnrollmentsByMonth))
	}
	if got.EnrollmentsByMonth[9].Label != "Oct" || got.EnrollmentsByMonth[9].Count != 1 {
		t.Errorf("october bucket = %+v; want {Oct 1}", got.EnrollmentsByMonth[9])
	}
	if got.EnrollmentsByMonth[2].Count != 1 {
		t.Errorf("march bucket count = %d; want 1", got.EnrollmentsByMonth[2].Count)
	}
}
