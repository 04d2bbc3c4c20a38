package billing

import "time"

// MonthCount is one month's tally in an enrollment chart
type MonthCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Stats holds the enrollment-side dashboard numbers
type Stats struct {
	Total                   int            `json:"total"`
	Active                  int            `json:"active"`
	Inactive                int            `json:"inactive"`
	ThisMonthEnrollments    int            `json:"this_month_enrollments"`
	TotalDocuments          int            `json:"total_documents"`
	StudentsWithoutDocument int            `json:"students_without_documents"`
	WithSeats               int            `json:"with_seats"`
	WithLockers             int            `json:"with_lockers"`
	GenderCounts            map[string]int `json:"gender_counts"`
	EnrollmentsByMonth      []MonthCount   `json:"enrollments_by_month"`
}

// EnrollmentStats derives the headline student counts and the
// enrollments-per-month chart for ref's calendar year. Twelve buckets,
// zero-filled, January through December.
func EnrollmentStats(accounts []StudentAccount, ref time.Time) Stats {
	stats := Stats{
		Total:        len(accounts),
		GenderCounts: make(map[string]int),
	}

	refYear, refMonth, _ := ref.Date()
	perMonth := make([]int, 12)

	for _, a := range accounts {
		if a.Active {
			stats.Active++
		}
		if a.DocumentCount > 0 {
			stats.TotalDocuments += a.DocumentCount
		} else {
			stats.StudentsWithoutDocument++
		}
		if a.SeatReserved {
			stats.WithSeats++
		}
		if a.Locker {
			stats.WithLockers++
		}
		if a.Gender != "" {
			stats.GenderCounts[a.Gender]++
		}

		if a.DateOfJoining.IsZero() {
			continue
		}
		y, m, _ := a.DateOfJoining.Date()
		if y == refYear && m == refMonth {
			stats.ThisMonthEnrollments++
		}
		if y == refYear {
			perMonth[int(m)-1]++
		}
	}
	stats.Inactive = stats.Total - stats.Active

	stats.EnrollmentsByMonth = make([]MonthCount, 12)
	for i := 0; i < 12; i++ {
		stats.EnrollmentsByMonth[i] = MonthCount{
			Label: time.Month(i + 1).String()[:3],
			Count: perMonth[i],
		}
	}
	return stats
}
