package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense is an operating cost of the hall (rent, electricity, supplies),
// tracked alongside billing so the dashboard can show spend next to revenue
type Expense struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Title       string    `gorm:"type:varchar(255)" json:"title"`
	Category    string    `gorm:"type:varchar(100)" json:"category"`
	Amount      int64     `json:"amount"`
	ExpenseDate time.Time `json:"expense_date"`
	Note        string    `gorm:"type:text" json:"note,omitempty"`
}
