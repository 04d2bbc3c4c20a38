package billing

import (
	"testing"
	"time"
)

func TestComputeNextPaymentDate(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		typ      SubscriptionType
		duration int
		expected time.Time
		ok       bool
	}{
		{
			name:     "one month",
			start:    date(2025, time.January, 15),
			typ:      SubscriptionMonth,
			duration: 1,
			expected: date(2025, time.February, 15),
			ok:       true,
		},
		{
			name:     "three months",
			start:    date(2025, time.January, 31),
			typ:      SubscriptionMonth,
			duration: 3,
			expected: date(2025, time.April, 30),
			ok:       true,
		},
		{
			name:     "one year",
			start:    date(2025, time.January, 15),
			typ:      SubscriptionYear,
			duration: 1,
			expected: date(2026, time.January, 15),
			ok:       true,
		},
		{
			name:     "zero duration rejected",
			start:    date(2025, time.January, 15),
			typ:      SubscriptionMonth,
			duration: 0,
			ok:       false,
		},
		{
			name:     "negative duration rejected",
			start:    date(2025, time.January, 15),
			typ:      SubscriptionYear,
			duration: -3,
			ok:       false,
		},
		{
			name:     "zero start date rejected",
			start:    time.Time{},
			typ:      SubscriptionMonth,
			duration: 1,
			ok:       false,
		},
		{
			name:     "unknown type rejected",
			start:    date(2025, time.January, 15),
			typ:      SubscriptionType("week"),
			duration: 1,
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeNextPaymentDate(tt.start, tt.typ, tt.duration)
			if ok != tt.ok {
				t.Fatalf("ComputeNextPaymentDate ok = %v; want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("ComputeNextPaymentDate = %v; want %v", got, tt.expected)
			}
		})
	}
}

func TestComputeNextPaymentDateMatchesAddMonths(t *testing.T) {
	starts := []time.Time{
		date(2024, time.February, 29),
		date(2025, time.January, 31),
		date(2025, time.July, 1),
		date(2025, time.December, 31),
	}
	for _, start := range starts {
		want, err := AddMonths(start, 1)
		if err != nil {
			t.Fatal(err)
		}
		got, ok := ComputeNextPaymentDate(start, SubscriptionMonth, 1)
		if !ok {
			t.Fatalf("ComputeNextPaymentDate(%v, month, 1) not ok", start)
		}
		if !got.Equal(want) {
			t.Errorf("ComputeNextPaymentDate(%v, month, 1) = %v; want AddMonths result %v", start, got, want)
		}
	}
}

func TestClassifyDueStatus(t *testing.T) {
	next := date(2025, time.February, 15)

	tests := []struct {
		name     string
		ref      time.Time
		window   int
		expected Classification
	}{
		{
			name:     "well before window is current",
			ref:      date(2025, time.January, 10),
			window:   7,
			expected: Classification{Status: DueStatusCurrent},
		},
		{
			name:     "inside window is upcoming with days left",
			ref:      date(2025, time.February, 10),
			window:   7,
			expected: Classification{Status: DueStatusUpcoming, DaysLeft: 5},
		},
		{
			name:     "due today is due",
			ref:      date(2025, time.February, 15),
			window:   7,
			expected: Classification{Status: DueStatusDue},
		},
		{
			name:     "past due is due",
			ref:      date(2025, time.February, 16),
			window:   7,
			expected: Classification{Status: DueStatusDue},
		},
		{
			name:     "window boundary is upcoming",
			ref:      date(2025, time.February, 8),
			window:   7,
			expected: Classification{Status: DueStatusUpcoming, DaysLeft: 7},
		},
		{
			name:     "just outside window is current",
			ref:      date(2025, time.February, 7),
			window:   7,
			expected: Classification{Status: DueStatusCurrent},
		},
		{
			name:     "zero window falls back to default",
			ref:      date(2025, time.February, 10),
			window:   0,
			expected: Classification{Status: DueStatusUpcoming, DaysLeft: 5},
		},
		{
			name:     "time of day on reference is ignored",
			ref:      time.Date(2025, time.February, 15, 23, 59, 0, 0, time.UTC),
			window:   7,
			expected: Classification{Status: DueStatusDue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyDueStatus(next, true, tt.ref, tt.window)
			if got != tt.expected {
				t.Errorf("ClassifyDueStatus(ref=%v) = %+v; want %+v", tt.ref, got, tt.expected)
			}
		})
	}
}

func TestClassifyDueStatusUnknown(t *testing.T) {
	ref := date(2025, time.February, 10)
	if got := ClassifyDueStatus(time.Time{}, false, ref, 7); got.Status != DueStatusUnknown {
		t.Errorf("missing next date = %v; want unknown", got.Status)
	}
	if got := ClassifyDueStatus(time.Time{}, true, ref, 7); got.Status != DueStatusUnknown {
		t.Errorf("zero next date = %v; want unknown", got.Status)
	}
}

// As the reference date advances past a fixed due date the classification
// moves current -> upcoming -> due and never steps back.
func TestClassifyDueStatusMonotonic(t *testing.T) {
	next := date(2025, time.June, 20)
	rank := map[DueStatus]int{DueStatusCurrent: 0, DueStatusUpcoming: 1, DueStatusDue: 2}

	prev := -1
	for day := 1; day <= 30; day++ {
		ref := date(2025, time.June, day)
		c := ClassifyDueStatus(next, true, ref, 7)
		r, ok := rank[c.Status]
		if !ok {
			t.Fatalf("unexpected status %v at day %d", c.Status, day)
		}
		if r < prev {
			t.Fatalf("classification regressed from rank %d to %d at day %d", prev, r, day)
		}
		prev = r
	}
}

func TestClassificationTier(t *testing.T) {
	tests := []struct {
		c        Classification
		expected string
	}{
		{Classification{Status: DueStatusDue}, "urgent"},
		{Classification{Status: DueStatusUpcoming, DaysLeft: 3}, "warning"},
		{Classification{Status: DueStatusCurrent}, "neutral"},
		{Classification{Status: DueStatusUnknown}, ""},
	}
	for _, tt := range tests {
		if got := tt.c.Tier(); got != tt.expected {
			t.Errorf("Tier(%v) = %q; want %q", tt.c.Status, got, tt.expected)
		}
	}
}

func TestSubscriptionTypeMaxDuration(t *testing.T) {
	if got := SubscriptionMonth.MaxDuration(); got != 31 {
		t.Errorf("month max duration = %d; want 31", got)
	}
	if got := SubscriptionYear.MaxDuration(); got != 12 {
		t.Errorf("year max duration = %d; want 12", got)
	}
	if got := SubscriptionType("week").MaxDuration(); got != 0 {
		t.Errorf("unknown max duration = %d; want 0", got)
	}
}
