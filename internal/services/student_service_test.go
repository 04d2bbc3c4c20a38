package services

import (
	"errors"
	"testing"
	"time"

	"library_console_echo/internal/billing"
)

func TestPaymentInputValidate(t *testing.T) {
	paid := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	valid := PaymentInput{
		SubscriptionType:     billing.SubscriptionMonth,
		SubscriptionDuration: 3,
		PaymentDate:          paid,
		BasicFee:             500,
		SeatFee:              100,
		LockerFee:            50,
		PaymentMethod:        billing.PaymentCash,
	}

	tests := []struct {
		name    string
		mutate  func(in *PaymentInput)
		wantErr bool
	}{
		{"valid monthly", func(in *PaymentInput) {}, false},
		{"valid yearly", func(in *PaymentInput) {
			in.SubscriptionType = billing.SubscriptionYear
			in.SubscriptionDuration = 1
		}, false},
		{"empty method allowed", func(in *PaymentInput) { in.PaymentMethod = "" }, false},
		{"unknown type", func(in *PaymentInput) { in.SubscriptionType = "weekly" }, true},
		{"zero duration", func(in *PaymentInput) { in.SubscriptionDuration = 0 }, true},
		{"monthly over max", func(in *PaymentInput) { in.SubscriptionDuration = 32 }, true},
		{"yearly over max", func(in *PaymentInput) {
			in.SubscriptionType = billing.SubscriptionYear
			in.SubscriptionDuration = 13
		}, true},
		{"zero payment date", func(in *PaymentInput) { in.PaymentDate = time.Time{} }, true},
		{"zero basic fee", func(in *PaymentInput) { in.BasicFee = 0 }, true},
		{"negative seat fee", func(in *PaymentInput) { in.SeatFee = -1 }, true},
		{"unknown method", func(in *PaymentInput) { in.PaymentMethod = "upi" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSubscription) {
				t.Errorf("Validate() error = %v; want wrapped ErrInvalidSubscription", err)
			}
		})
	}
}

func TestPaymentInputToEntry(t *testing.T) {
	paid := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	in := PaymentInput{
		SubscriptionType:     billing.SubscriptionMonth,
		SubscriptionDuration: 1,
		PaymentDate:          paid,
		BasicFee:             500,
		SeatFee:              100,
		LockerFee:            50,
	}

	entry, err := in.toEntry(42)
	if err != nil {
		t.Fatalf("toEntry() error = %v", err)
	}

	if entry.StudentID != 42 {
		t.Errorf("StudentID = %d; want 42", entry.StudentID)
	}
	if entry.ReceiptID == "" {
		t.Error("ReceiptID is empty; want a generated id")
	}
	if entry.PaymentMethod != billing.PaymentCash {
		t.Errorf("PaymentMethod = %q; want %q (default)", entry.PaymentMethod, billing.PaymentCash)
	}
	if entry.NextPaymentDate == nil {
		t.Fatal("NextPaymentDate is nil; want computed date")
	}
	want := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)
	if !entry.NextPaymentDate.Equal(want) {
		t.Errorf("NextPaymentDate = %v; want %v", entry.NextPaymentDate, want)
	}
}

func TestPaymentInputToEntryEndOfMonthClamp(t *testing.T) {
	// Jan 31 + 1 month lands on the last day of February
	paid := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

	in := PaymentInput{
		SubscriptionType:     billing.SubscriptionMonth,
		SubscriptionDuration: 1,
		PaymentDate:          paid,
		BasicFee:             500,
	}

	entry, err := in.toEntry(1)
	if err != nil {
		t.Fatalf("toEntry() error = %v", err)
	}
	want := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !entry.NextPaymentDate.Equal(want) {
		t.Errorf("NextPaymentDate = %v; want %v", entry.NextPaymentDate, want)
	}
}
