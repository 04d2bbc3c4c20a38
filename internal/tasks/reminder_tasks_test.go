package tasks

import (
	"strings"
	"testing"
	"time"

	"library_console_echo/internal/billing"
	"library_console_echo/internal/models"
)

func TestDueReminderCreateTask(t *testing.T) {
	due := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

	task, err := DueReminderTask.CreateTask(due, DefaultReminderRule)
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if task.TaskName != "due_reminder" {
		t.Errorf("TaskName = %q; want due_reminder", task.TaskName)
	}
	if task.TaskType != models.ScheduledTaskTypeRecurring {
		t.Errorf("TaskType = %q; want %q", task.TaskType, models.ScheduledTaskTypeRecurring)
	}
	if task.Status != models.ScheduledTaskStatusActive {
		t.Errorf("Status = %q; want %q", task.Status, models.ScheduledTaskStatusActive)
	}
	if !task.Due.Equal(due) {
		t.Errorf("Due = %v; want %v", task.Due, due)
	}
	if task.RecurringInterval == nil || *task.RecurringInterval != DefaultReminderRule {
		t.Errorf("RecurringInterval = %v; want %q", task.RecurringInterval, DefaultReminderRule)
	}
	if task.MaxAttempt != 3 {
		t.Errorf("MaxAttempt = %d; want 3", task.MaxAttempt)
	}

	// Arguments round-trip through JSON, so numbers arrive as float64, which
	// is what HandleExecution reads back
	window, ok := task.Arguments["window_days"].(float64)
	if !ok || int(window) != billing.DefaultDueWindowDays {
		t.Errorf("Arguments[window_days] = %v; want %d", task.Arguments["window_days"], billing.DefaultDueWindowDays)
	}
}

func TestNextMorning(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{
			"before nine same day",
			time.Date(2025, time.March, 1, 6, 30, 0, 0, time.UTC),
			time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			"after nine next day",
			time.Date(2025, time.March, 1, 14, 0, 0, 0, time.UTC),
			time.Date(2025, time.March, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			"exactly nine next day",
			time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
			time.Date(2025, time.March, 2, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextMorning(tt.ref)
			if !got.Equal(tt.want) {
				t.Errorf("nextMorning(%v) = %v; want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestBuildReminderBody(t *testing.T) {
	now := time.Date(2025, time.February, 16, 10, 0, 0, 0, time.UTC)

	due := []billing.DueStudent{
		{
			Account:   billing.StudentAccount{HumanID: "LIB_0001", Name: "Overdue Member"},
			DueAmount: 650,
			DueDate:   time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC),
		},
	}
	upcoming := []billing.DueStudent{
		{
			Account:   billing.StudentAccount{HumanID: "LIB_0002", Name: "Soon Due Member"},
			DueAmount: 500,
			DueDate:   time.Date(2025, time.February, 18, 0, 0, 0, 0, time.UTC),
			DaysLeft:  2,
		},
	}

	body := buildReminderBody(due, upcoming, 7, now)

	for _, want := range []string{"LIB_0001", "Overdue Member", "650", "LIB_0002", "(2 days)", "Due within 7 days"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}
