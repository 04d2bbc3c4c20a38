package tasks

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"library_console_echo/internal/billing"
	"library_console_echo/internal/models"
	"library_console_echo/internal/services"
)

// DueReminderTaskDef encapsulates the daily due reminder task. It summarizes
// the overdue and soon-due members and mails the summary to the admin inbox.
type DueReminderTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *DueReminderTaskDef) TaskID() string {
	return "due_reminder"
}

// DefaultReminderRule runs the reminder once every morning
const DefaultReminderRule = "FREQ=DAILY"

// CreateTask builds a recurring ScheduledTask record for this task
func (t *DueReminderTaskDef) CreateTask(due time.Time, recurringInterval string) (*models.ScheduledTask, error) {
	args := map[string]interface{}{"window_days": billing.DefaultDueWindowDays}
	return BuildScheduledTask(t.TaskID(), args, due, &recurringInterval, models.ScheduledTaskTypeRecurring, 3)
}

// EnsureScheduled creates the daily recurring reminder row unless an active
// one already exists, so a fresh deployment starts reminding without a manual
// schedule_task invocation
func (t *DueReminderTaskDef) EnsureScheduled(db *gorm.DB) error {
	var count int64
	err := db.Model(&models.ScheduledTask{}).
		Where("task_name = ? AND status = ?", t.TaskID(), models.ScheduledTaskStatusActive).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check reminder schedule: %w", err)
	}
	if count > 0 {
		return nil
	}

	task, err := t.CreateTask(nextMorning(time.Now()), DefaultReminderRule)
	if err != nil {
		return err
	}
	if err := db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	log.Printf("[Task: due_reminder] Scheduled daily reminder, first run %s", task.Due)
	return nil
}

// nextMorning is the next 9 AM in ref's location, strictly after ref
func nextMorning(ref time.Time) time.Time {
	next := time.Date(ref.Year(), ref.Month(), ref.Day(), 9, 0, 0, 0, ref.Location())
	if !next.After(ref) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// HandleExecution computes the due lists and sends the summary email
func (t *DueReminderTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	windowDays := billing.DefaultDueWindowDays
	if w, ok := task.Arguments["window_days"].(float64); ok && int(w) > 0 {
		windowDays = int(w)
	}

	var students []models.Student
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Preload("BillingEntries", func(q *gorm.DB) *gorm.DB {
			return q.Order("payment_date DESC, id DESC")
		}).
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}

	accounts := make([]billing.StudentAccount, 0, len(students))
	for _, s := range students {
		accounts = append(accounts, s.Account())
	}

	now := time.Now()
	due := billing.DueStudents(accounts, now)
	upcoming := billing.UpcomingDueStudents(accounts, windowDays, now)

	result := map[string]interface{}{
		"due_count":      len(due),
		"upcoming_count": len(upcoming),
		"window_days":    windowDays,
	}

	if len(due) == 0 && len(upcoming) == 0 {
		log.Printf("[Task: due_reminder] Nothing due within %d days, skipping email", windowDays)
		result["status"] = "skipped"
		return result, nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		return nil, fmt.Errorf("ADMIN_EMAIL is not set")
	}

	subject := fmt.Sprintf("Due reminder: %d overdue, %d due soon", len(due), len(upcoming))
	body := buildReminderBody(due, upcoming, windowDays, now)

	emailService := services.NewEmailService()
	if err := emailService.SendEmail([]string{adminEmail}, subject, body); err != nil {
		return nil, fmt.Errorf("failed to send reminder email: %w", err)
	}

	log.Printf("[Task: due_reminder] Sent summary to %s (%d due, %d upcoming)", adminEmail, len(due), len(upcoming))
	result["status"] = "sent"
	return result, nil
}

func buildReminderBody(due, upcoming []billing.DueStudent, windowDays int, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Payment summary for %s\n\n", now.Format("02 Jan 2006"))

	if len(due) > 0 {
		fmt.Fprintf(&b, "Overdue (%d):\n", len(due))
		for _, d := range due {
			fmt.Fprintf(&b, "  %s  %-25s  due %s  amount %d\n",
				d.Account.HumanID, d.Account.Name, d.DueDate.Format("02 Jan 2006"), d.DueAmount)
		}
		b.WriteString("\n")
	}

	if len(upcoming) > 0 {
		fmt.Fprintf(&b, "Due within %d days (%d):\n", windowDays, len(upcoming))
		for _, d := range upcoming {
			fmt.Fprintf(&b, "  %s  %-25s  due %s (%d days)  amount %d\n",
				d.Account.HumanID, d.Account.Name, d.DueDate.Format("02 Jan 2006"), d.DaysLeft, d.DueAmount)
		}
	}

	return b.String()
}

// DueReminderTask is the singleton instance of DueReminderTaskDef
var DueReminderTask = &DueReminderTaskDef{}
