package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"library_console_echo/internal/billing"
	"library_console_echo/internal/models"
)

const (
	dashboardCacheTTL = time.Minute

	// ten years of monthly points is more than any chart renders
	maxTrailingMonths = 120
	maxDueWindowDays  = 365
)

// DashboardService assembles the admin dashboard from the student store and
// the billing aggregator. Snapshots are cached briefly in Redis; writes
// invalidate the default snapshot and the TTL bounds staleness for the rest.
type DashboardService struct {
	db    *gorm.DB
	cache *RedisCache
}

func NewDashboardService(db *gorm.DB, cache *RedisCache) *DashboardService {
	return &DashboardService{db: db, cache: cache}
}

// DueStudentView is the due-list row the dashboard renders
type DueStudentView struct {
	HumanID   string    `json:"human_id"`
	Name      string    `json:"name"`
	DueAmount int64     `json:"due_amount"`
	DueDate   time.Time `json:"due_date"`
	DaysLeft  int       `json:"days_left,omitempty"`
	Tier      string    `json:"tier"`
}

// DashboardSnapshot is everything the dashboard shows, derived in one pass
type DashboardSnapshot struct {
	GeneratedAt time.Time `json:"generated_at"`

	Stats billing.Stats `json:"stats"`

	TotalRevenue    int64                        `json:"total_revenue"`
	MonthlyRevenue  int64                        `json:"monthly_revenue"`
	RevenueByMonth  []billing.MonthRevenue       `json:"revenue_by_month"`
	TrailingRevenue []billing.SeriesPoint        `json:"trailing_revenue"`
	FinancialYear   billing.FinancialYearSummary `json:"financial_year"`
	MonthlyExpenses int64                        `json:"monthly_expenses"`
	SubscriptionMix map[string]int               `json:"subscription_mix"`
	CashPayments    int                          `json:"cash_payments"`
	OnlinePayments  int                          `json:"online_payments"`
	DueStudents     []DueStudentView             `json:"due_students"`
	UpcomingDue     []DueStudentView             `json:"upcoming_due"`
	TotalDueAmount  int64                        `json:"total_due_amount"`
	UpcomingAmount  int64                        `json:"upcoming_amount"`
	DueWindowDays   int                          `json:"due_window_days"`
	TrailingMonths  int                          `json:"trailing_months"`
}

// Snapshot computes (or serves from cache) the dashboard for the given
// trailing-series length and upcoming-due window
func (s *DashboardService) Snapshot(ctx context.Context, months, windowDays int, ref time.Time) (DashboardSnapshot, error) {
	months, windowDays = normalizeSnapshotParams(months, windowDays)

	if s.cache == nil {
		return s.build(ctx, months, windowDays, ref)
	}
	key := dashboardCacheKey(months, windowDays)
	return GetOrSet(s.cache, ctx, key, dashboardCacheTTL, func() (DashboardSnapshot, error) {
		return s.build(ctx, months, windowDays, ref)
	})
}

// Invalidate drops the default cached snapshot; called after any student,
// payment or expense write
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	key := dashboardCacheKey(12, billing.DefaultDueWindowDays)
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("Failed to invalidate dashboard cache: %v", err)
	}
}

func (s *DashboardService) build(ctx context.Context, months, windowDays int, ref time.Time) (DashboardSnapshot, error) {
	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return DashboardSnapshot{}, err
	}

	entries := billing.AllEntries(accounts)

	activeAccounts := make([]billing.StudentAccount, 0, len(accounts))
	for _, a := range accounts {
		if a.Active {
			activeAccounts = append(activeAccounts, a)
		}
	}

	snapshot := DashboardSnapshot{
		GeneratedAt:     ref,
		Stats:           billing.EnrollmentStats(accounts, ref),
		TotalRevenue:    billing.TotalRevenue(entries),
		MonthlyRevenue:  billing.MonthlyRecurringRevenue(entries, ref),
		RevenueByMonth:  billing.RevenueByMonth(entries),
		TrailingRevenue: billing.TrailingMonthsSeries(entries, months, ref),
		FinancialYear:   billing.FinancialYearEarnings(entries, ref),
		SubscriptionMix: make(map[string]int),
		DueWindowDays:   windowDays,
		TrailingMonths:  months,
	}

	for _, e := range entries {
		typ := string(e.SubscriptionType)
		if typ == "" {
			typ = "unknown"
		}
		snapshot.SubscriptionMix[typ]++
		switch e.PaymentMethod {
		case billing.PaymentCash:
			snapshot.CashPayments++
		case billing.PaymentOnline:
			snapshot.OnlinePayments++
		}
	}

	for _, d := range billing.DueStudents(activeAccounts, ref) {
		snapshot.DueStudents = append(snapshot.DueStudents, dueView(d, billing.DueStatusDue))
		snapshot.TotalDueAmount += d.DueAmount
	}
	for _, d := range billing.UpcomingDueStudents(activeAccounts, windowDays, ref) {
		snapshot.UpcomingDue = append(snapshot.UpcomingDue, dueView(d, billing.DueStatusUpcoming))
		snapshot.UpcomingAmount += d.DueAmount
	}

	expenses, err := s.monthlyExpenses(ctx, ref)
	if err != nil {
		// Expense total is a side panel; a failure there must not blank the dashboard
		log.Printf("Failed to compute monthly expenses: %v", err)
	}
	snapshot.MonthlyExpenses = expenses

	return snapshot, nil
}

// loadAccounts materializes every student with billing history, newest entry
// first. Each student's history is fetched independently: a failure loads
// that student without entries and the rest of the dashboard carries on.
func (s *DashboardService) loadAccounts(ctx context.Context) ([]billing.StudentAccount, error) {
	var students []models.Student
	if err := s.db.WithContext(ctx).Preload("Documents").Order("created_at DESC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch students: %w", err)
	}

	accounts := make([]billing.StudentAccount, 0, len(students))
	for i := range students {
		var entries []models.BillingEntry
		err := s.db.WithContext(ctx).
			Where("student_id = ?", students[i].ID).
			Order("payment_date DESC, id DESC").
			Find(&entries).Error
		if err != nil {
			log.Printf("Failed to fetch billing history for student %d, keeping enrollment data only: %v", students[i].ID, err)
		} else {
			students[i].BillingEntries = entries
		}
		accounts = append(accounts, students[i].Account())
	}
	return accounts, nil
}

func (s *DashboardService) monthlyExpenses(ctx context.Context, ref time.Time) (int64, error) {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	end := start.AddDate(0, 1, 0)

	var total int64
	err := s.db.WithContext(ctx).Model(&models.Expense{}).
		Where("expense_date >= ? AND expense_date < ?", start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func dueView(d billing.DueStudent, status billing.DueStatus) DueStudentView {
	return DueStudentView{
		HumanID:   d.Account.HumanID,
		Name:      d.Account.Name,
		DueAmount: d.DueAmount,
		DueDate:   d.DueDate,
		DaysLeft:  d.DaysLeft,
		Tier:      billing.Classification{Status: status, DaysLeft: d.DaysLeft}.Tier(),
	}
}

func dashboardCacheKey(months, windowDays int) string {
	return fmt.Sprintf("dashboard:snapshot:%d:%d", months, windowDays)
}

// normalizeSnapshotParams clamps the query knobs: out-of-range values fall
// back to the defaults or the cap, so a request cannot allocate an oversized
// series or mint unbounded cache keys
func normalizeSnapshotParams(months, windowDays int) (int, int) {
	if months <= 0 {
		months = 12
	}
	if months > maxTrailingMonths {
		months = maxTrailingMonths
	}
	if windowDays <= 0 {
		windowDays = billing.DefaultDueWindowDays
	}
	if windowDays > maxDueWindowDays {
		windowDays = maxDueWindowDays
	}
	return months, windowDays
}
