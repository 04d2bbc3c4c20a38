package models

import (
	"time"

	"gorm.io/gorm"

	"library_console_echo/internal/billing"
)

// BillingEntry records one subscription payment taken at the desk.
// NextPaymentDate is computed when the entry is created and only recomputed
// when the entry is edited; it is never touched by reads. Entries are deleted
// only through the owning student's cascade, never on their own.
type BillingEntry struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	StudentID uint   `gorm:"index" json:"student_id"`
	ReceiptID string `gorm:"type:varchar(64);uniqueIndex" json:"receipt_id"`

	SubscriptionType     billing.SubscriptionType `gorm:"type:varchar(10)" json:"subscription_type"`
	SubscriptionDuration int                      `json:"subscription_duration"`
	PaymentDate          time.Time                `json:"payment_date"`
	NextPaymentDate      *time.Time               `json:"next_payment_date,omitempty"`

	BasicFee  int64 `json:"basic_fee"`
	SeatFee   int64 `json:"seat_fee"`
	LockerFee int64 `json:"locker_fee"`

	PaymentMethod billing.PaymentMethod `gorm:"type:varchar(10);default:'cash'" json:"payment_method"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// BillingView converts the stored row to the aggregator's entry shape
func (e BillingEntry) BillingView() billing.Entry {
	return billing.Entry{
		PaymentDate:          e.PaymentDate,
		NextPaymentDate:      e.NextPaymentDate,
		SubscriptionType:     e.SubscriptionType,
		SubscriptionDuration: e.SubscriptionDuration,
		BasicFee:             e.BasicFee,
		SeatFee:              e.SeatFee,
		LockerFee:            e.LockerFee,
		PaymentMethod:        e.PaymentMethod,
	}
}

// Total is the combined fee amount of the entry
func (e BillingEntry) Total() int64 {
	return e.BasicFee + e.SeatFee + e.LockerFee
}
