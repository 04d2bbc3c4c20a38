package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library_console_echo/internal/billing"
	"library_console_echo/internal/models"
)

var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrEntryNotFound       = errors.New("billing entry not found")
	ErrAadhaarExists       = errors.New("a student with this Aadhaar number already exists")
	ErrInvalidSubscription = errors.New("invalid subscription parameters")
)

// StudentService is the query and mutation layer over the student store
type StudentService struct {
	db *gorm.DB
}

func NewStudentService(db *gorm.DB) *StudentService {
	return &StudentService{db: db}
}

// StudentInput carries the writable fields of a student record
type StudentInput struct {
	StudentName   string    `json:"student_name"`
	Gender        string    `json:"gender"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	AadhaarNumber string    `json:"aadhaar_number"`
	DateOfJoining time.Time `json:"date_of_joining"`
	Active        bool      `json:"active"`
	SeatReserved  bool      `json:"seat_reserved"`
	SeatNumber    string    `json:"seat_number"`
	Locker        bool      `json:"locker"`
}

// PaymentInput carries the writable fields of a billing entry
type PaymentInput struct {
	SubscriptionType     billing.SubscriptionType `json:"subscription_type"`
	SubscriptionDuration int                      `json:"subscription_duration"`
	PaymentDate          time.Time                `json:"payment_date"`
	BasicFee             int64                    `json:"basic_fee"`
	SeatFee              int64                    `json:"seat_fee"`
	LockerFee            int64                    `json:"locker_fee"`
	PaymentMethod        billing.PaymentMethod    `json:"payment_method"`
}

// Validate applies the desk's validation policy: monthly subscriptions run
// 1-31 months, yearly 1-12 years, fees are non-negative and the basic fee is
// required
func (in PaymentInput) Validate() error {
	if !in.SubscriptionType.Valid() {
		return fmt.Errorf("%w: unknown subscription type %q", ErrInvalidSubscription, in.SubscriptionType)
	}
	if in.SubscriptionDuration < 1 || in.SubscriptionDuration > in.SubscriptionType.MaxDuration() {
		return fmt.Errorf("%w: duration %d out of range 1-%d for %s",
			ErrInvalidSubscription, in.SubscriptionDuration, in.SubscriptionType.MaxDuration(), in.SubscriptionType)
	}
	if in.PaymentDate.IsZero() {
		return fmt.Errorf("%w: payment date required", ErrInvalidSubscription)
	}
	if in.BasicFee <= 0 {
		return fmt.Errorf("%w: basic fee must be greater than 0", ErrInvalidSubscription)
	}
	if in.SeatFee < 0 || in.LockerFee < 0 {
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidSubscription)
	}
	if in.PaymentMethod != "" && in.PaymentMethod != billing.PaymentCash && in.PaymentMethod != billing.PaymentOnline {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidSubscription, in.PaymentMethod)
	}
	return nil
}

func (in PaymentInput) toEntry(studentID uint) (models.BillingEntry, error) {
	if err := in.Validate(); err != nil {
		return models.BillingEntry{}, err
	}

	next, ok := billing.ComputeNextPaymentDate(in.PaymentDate, in.SubscriptionType, in.SubscriptionDuration)
	if !ok {
		return models.BillingEntry{}, ErrInvalidSubscription
	}

	method := in.PaymentMethod
	if method == "" {
		method = billing.PaymentCash
	}

	return models.BillingEntry{
		StudentID:            studentID,
		ReceiptID:            uuid.New().String(),
		SubscriptionType:     in.SubscriptionType,
		SubscriptionDuration: in.SubscriptionDuration,
		PaymentDate:          in.PaymentDate,
		NextPaymentDate:      &next,
		BasicFee:             in.BasicFee,
		SeatFee:              in.SeatFee,
		LockerFee:            in.LockerFee,
		PaymentMethod:        method,
	}, nil
}

// StudentFilter selects, orders and pages a student listing
type StudentFilter struct {
	Active       *bool
	Gender       string
	Search       string
	SeatReserved *bool
	Locker       *bool
	SortBy       string
	SortOrder    string
	Page         int
	PageSize     int
}

// sort columns the API accepts; anything else falls back to newest-first
var studentSortColumns = map[string]string{
	"name":            "student_name",
	"human_id":        "human_id",
	"date_of_joining": "date_of_joining",
	"created_at":      "created_at",
}

// List returns one page of students with billing history attached, plus the
// total match count. Billing is fetched per student so one broken history
// cannot sink the whole listing; a failed fetch logs and leaves that
// student's entries empty.
func (s *StudentService) List(ctx context.Context, f StudentFilter) ([]models.Student, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Student{})

	if f.Active != nil {
		query = query.Where("active = ?", *f.Active)
	}
	if f.Gender != "" {
		query = query.Where("gender = ?", f.Gender)
	}
	if f.SeatReserved != nil {
		query = query.Where("seat_reserved = ?", *f.SeatReserved)
	}
	if f.Locker != nil {
		query = query.Where("locker = ?", *f.Locker)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("student_name ILIKE ? OR human_id ILIKE ? OR phone ILIKE ?", like, like, like)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	column, ok := studentSortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "desc"
	if f.SortOrder == "asc" {
		direction = "asc"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	var students []models.Student
	err := query.
		Order(column + " " + direction).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Preload("Documents").
		Find(&students).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch students: %w", err)
	}

	for i := range students {
		if err := s.attachBilling(ctx, &students[i]); err != nil {
			log.Printf("Failed to fetch billing history for student %d: %v", students[i].ID, err)
		}
	}
	return students, totalCount, nil
}

// Get returns one student with full billing history (newest first) and documents
func (s *StudentService) Get(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	err := s.db.WithContext(ctx).
		Preload("BillingEntries", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date DESC, id DESC")
		}).
		Preload("Documents").
		First(&student, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

// Create enrolls a student: allocates the human ID, enforces Aadhaar
// uniqueness and optionally records the first payment, all in one transaction
func (s *StudentService) Create(ctx context.Context, in StudentInput, initial *PaymentInput) (models.Student, error) {
	var student models.Student

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.AadhaarNumber != "" {
			var count int64
			if err := tx.Model(&models.Student{}).Where("aadhaar_number = ?", in.AadhaarNumber).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrAadhaarExists
			}
		}

		humanID, err := allocateHumanID(tx, "students")
		if err != nil {
			return fmt.Errorf("failed to allocate human id: %w", err)
		}

		student = models.Student{
			HumanID:       humanID,
			StudentName:   in.StudentName,
			Gender:        in.Gender,
			Phone:         in.Phone,
			Email:         in.Email,
			AadhaarNumber: in.AadhaarNumber,
			DateOfJoining: in.DateOfJoining,
			Active:        in.Active,
			SeatReserved:  in.SeatReserved,
			SeatNumber:    in.SeatNumber,
			Locker:        in.Locker,
		}
		if err := tx.Create(&student).Error; err != nil {
			return err
		}

		if initial != nil {
			entry, err := initial.toEntry(student.ID)
			if err != nil {
				return err
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			student.BillingEntries = []models.BillingEntry{entry}
		}
		return nil
	})
	if err != nil {
		return models.Student{}, err
	}
	return student, nil
}

// Update rewrites the student's editable fields, re-checking Aadhaar
// uniqueness against everyone else
func (s *StudentService) Update(ctx context.Context, id uint, in StudentInput) (models.Student, error) {
	var student models.Student

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&student, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}

		if in.AadhaarNumber != "" && in.AadhaarNumber != student.AadhaarNumber {
			var count int64
			if err := tx.Model(&models.Student{}).
				Where("aadhaar_number = ? AND id <> ?", in.AadhaarNumber, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrAadhaarExists
			}
		}

		updates := map[string]interface{}{
			"student_name":   in.StudentName,
			"gender":         in.Gender,
			"phone":          in.Phone,
			"email":          in.Email,
			"aadhaar_number": in.AadhaarNumber,
			"active":         in.Active,
			"seat_reserved":  in.SeatReserved,
			"seat_number":    in.SeatNumber,
			"locker":         in.Locker,
		}
		if !in.DateOfJoining.IsZero() {
			updates["date_of_joining"] = in.DateOfJoining
		}
		return tx.Model(&student).Updates(updates).Error
	})
	if err != nil {
		return models.Student{}, err
	}
	return student, nil
}

// Delete removes the student and cascades to billing entries and document
// rows. Returns the stored paths of the student's files so the caller can
// clean up the document store.
func (s *StudentService) Delete(ctx context.Context, id uint) ([]string, error) {
	var paths []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}

		var docs []models.StudentDocument
		if err := tx.Where("student_id = ?", id).Find(&docs).Error; err != nil {
			return err
		}
		for _, d := range docs {
			paths = append(paths, d.StoredPath)
		}

		if err := tx.Where("student_id = ?", id).Delete(&models.BillingEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", id).Delete(&models.StudentDocument{}).Error; err != nil {
			return err
		}
		return tx.Delete(&student).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// ListPayments returns the student's billing history, newest first
func (s *StudentService) ListPayments(ctx context.Context, studentID uint) ([]models.BillingEntry, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}

	var entries []models.BillingEntry
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("payment_date DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch billing entries: %w", err)
	}
	return entries, nil
}

// AddPayment records a payment; the next payment date is derived once, here
func (s *StudentService) AddPayment(ctx context.Context, studentID uint, in PaymentInput) (models.BillingEntry, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return models.BillingEntry{}, err
	}

	entry, err := in.toEntry(studentID)
	if err != nil {
		return models.BillingEntry{}, err
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return models.BillingEntry{}, fmt.Errorf("failed to create billing entry: %w", err)
	}
	return entry, nil
}

// EditPayment rewrites an entry's fees, dates and subscription and recomputes
// the next payment date. This is the only path that touches NextPaymentDate
// after creation.
func (s *StudentService) EditPayment(ctx context.Context, studentID, entryID uint, in PaymentInput) (models.BillingEntry, error) {
	var entry models.BillingEntry
	err := s.db.WithContext(ctx).
		Where("id = ? AND student_id = ?", entryID, studentID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.BillingEntry{}, ErrEntryNotFound
		}
		return models.BillingEntry{}, err
	}

	if err := in.Validate(); err != nil {
		return models.BillingEntry{}, err
	}
	next, ok := billing.ComputeNextPaymentDate(in.PaymentDate, in.SubscriptionType, in.SubscriptionDuration)
	if !ok {
		return models.BillingEntry{}, ErrInvalidSubscription
	}

	updates := map[string]interface{}{
		"subscription_type":     in.SubscriptionType,
		"subscription_duration": in.SubscriptionDuration,
		"payment_date":          in.PaymentDate,
		"next_payment_date":     &next,
		"basic_fee":             in.BasicFee,
		"seat_fee":              in.SeatFee,
		"locker_fee":            in.LockerFee,
	}
	if in.PaymentMethod != "" {
		updates["payment_method"] = in.PaymentMethod
	}
	if err := s.db.WithContext(ctx).Model(&entry).Updates(updates).Error; err != nil {
		return models.BillingEntry{}, fmt.Errorf("failed to update billing entry: %w", err)
	}
	return entry, nil
}

func (s *StudentService) ensureStudent(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (s *StudentService) attachBilling(ctx context.Context, student *models.Student) error {
	var entries []models.BillingEntry
	err := s.db.WithContext(ctx).
		Where("student_id = ?", student.ID).
		Order("payment_date DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return err
	}
	student.BillingEntries = entries
	return nil
}

// allocateHumanID reserves the next counter value for the key inside the
// caller's transaction, widening the zero-padding when the counter crosses
// 10^width
func allocateHumanID(tx *gorm.DB, key string) (string, error) {
	var seq models.Sequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("key = ?", key).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.Sequence{
			Key:    key,
			Next:   1,
			Width:  models.DefaultHumanIDWidth,
			Prefix: models.DefaultHumanIDPrefix,
		}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	id := models.FormatHumanID(seq.Prefix, seq.Next, seq.Width)

	updates := map[string]interface{}{
		"next":  seq.Next + 1,
		"width": models.NextWidth(seq.Next, seq.Width),
	}
	if err := tx.Model(&models.Sequence{}).Where("key = ?", key).Updates(updates).Error; err != nil {
		return "", err
	}
	return id, nil
}
