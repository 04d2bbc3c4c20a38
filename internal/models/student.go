package models

import (
	"time"

	"gorm.io/gorm"

	"library_console_echo/internal/billing"
)

// Student represents an enrolled member of the library / reading hall
type Student struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	HumanID       string    `gorm:"type:varchar(20);uniqueIndex" json:"human_id"` // e.g. "LIB_0001"
	StudentName   string    `gorm:"type:varchar(255)" json:"student_name"`
	Gender        string    `gorm:"type:varchar(20)" json:"gender"`
	Phone         string    `gorm:"type:varchar(50)" json:"phone"`
	Email         string    `gorm:"type:varchar(255)" json:"email"`
	AadhaarNumber string    `gorm:"type:varchar(20);index" json:"aadhaar_number,omitempty"`
	DateOfJoining time.Time `json:"date_of_joining"`
	Active        bool      `gorm:"default:true" json:"active"`
	SeatReserved  bool      `gorm:"default:false" json:"seat_reserved"`
	SeatNumber    string    `gorm:"type:varchar(20)" json:"seat_number,omitempty"`
	Locker        bool      `gorm:"default:false" json:"locker"`

	// Relationships; billing entries and documents are removed with the student
	BillingEntries []BillingEntry    `gorm:"foreignKey:StudentID" json:"billing_entries,omitempty"`
	Documents      []StudentDocument `gorm:"foreignKey:StudentID" json:"documents,omitempty"`
}

// Account projects the student into the shape the billing aggregator
// consumes. BillingEntries must already be ordered payment_date desc, which
// is how the store preloads them.
func (s Student) Account() billing.StudentAccount {
	entries := make([]billing.Entry, 0, len(s.BillingEntries))
	for _, e := range s.BillingEntries {
		entries = append(entries, e.BillingView())
	}
	return billing.StudentAccount{
		ID:            s.HumanID,
		HumanID:       s.HumanID,
		Name:          s.StudentName,
		Gender:        s.Gender,
		Active:        s.Active,
		DateOfJoining: s.DateOfJoining,
		SeatReserved:  s.SeatReserved,
		Locker:        s.Locker,
		DocumentCount: len(s.Documents),
		Entries:       entries,
	}
}

// LatestBilling returns the most recent billing entry, the read-time
// projection used for due-date display. Relies on payment_date desc ordering.
func (s Student) LatestBilling() *BillingEntry {
	if len(s.BillingEntries) == 0 {
		return nil
	}
	return &s.BillingEntries[0]
}
