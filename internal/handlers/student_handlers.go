package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"library_console_echo/internal/billing"
	"library_console_echo/internal/models"
	"library_console_echo/internal/services"
)

type StudentHandler struct {
	students  *services.StudentService
	dashboard *services.DashboardService
	documents *services.DocumentStore
}

func NewStudentHandler(students *services.StudentService, dashboard *services.DashboardService, documents *services.DocumentStore) *StudentHandler {
	return &StudentHandler{students: students, dashboard: dashboard, documents: documents}
}

// studentView decorates a student row with the latest billing entry and its
// due classification, which is what the list grid color-codes on
type studentView struct {
	models.Student
	LatestBilling *models.BillingEntry   `json:"latest_billing,omitempty"`
	DueStatus     billing.Classification `json:"due_status"`
	DueTier       string                 `json:"due_tier"`
}

func newStudentView(s models.Student, ref time.Time) studentView {
	view := studentView{Student: s}
	if latest := s.LatestBilling(); latest != nil {
		view.LatestBilling = latest
		var next time.Time
		hasNext := latest.NextPaymentDate != nil
		if hasNext {
			next = *latest.NextPaymentDate
		}
		view.DueStatus = billing.ClassifyDueStatus(next, hasNext, ref, billing.DefaultDueWindowDays)
	} else {
		view.DueStatus = billing.Classification{Status: billing.DueStatusUnknown}
	}
	view.DueTier = view.DueStatus.Tier()
	// The grid doesn't need the whole history on every row
	view.Student.BillingEntries = nil
	return view
}

// ListStudents returns a filtered, sorted, paginated page of students
func (h *StudentHandler) ListStudents(c echo.Context) error {
	filter := services.StudentFilter{
		Active:       parseBoolQuery(c, "active"),
		Gender:       c.QueryParam("gender"),
		Search:       c.QueryParam("search"),
		SeatReserved: parseBoolQuery(c, "seat_reserved"),
		Locker:       parseBoolQuery(c, "locker"),
		SortBy:       c.QueryParam("sort_by"),
		SortOrder:    c.QueryParam("sort_order"),
		Page:         parseIntQuery(c, "page", "1"),
		PageSize:     parseIntQuery(c, "page_size", "20"),
	}

	students, totalCount, err := h.students.List(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch students")
	}

	now := time.Now()
	views := make([]studentView, 0, len(students))
	for _, s := range students {
		views = append(views, newStudentView(s, now))
	}

	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, newListResponse(views, page, pageSize, totalCount))
}

// GetStudent returns one student with billing history and documents
func (h *StudentHandler) GetStudent(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}

	student, err := h.students.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch student")
	}
	return c.JSON(http.StatusOK, student)
}

type studentRequest struct {
	StudentName   string          `json:"student_name"`
	Gender        string          `json:"gender"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	AadhaarNumber string          `json:"aadhaar_number"`
	DateOfJoining string          `json:"date_of_joining"`
	Active        *bool           `json:"active"`
	SeatReserved  bool            `json:"seat_reserved"`
	SeatNumber    string          `json:"seat_number"`
	Locker        bool            `json:"locker"`
	InitialBill   *paymentRequest `json:"initial_billing,omitempty"`
}

func (r studentRequest) toInput() (services.StudentInput, error) {
	if r.StudentName == "" {
		return services.StudentInput{}, errors.New("student name is required")
	}

	var joined time.Time
	if r.DateOfJoining != "" {
		var err error
		joined, err = dateFromRequest(r.DateOfJoining)
		if err != nil {
			return services.StudentInput{}, errors.New("invalid date of joining, expected YYYY-MM-DD")
		}
	}

	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return services.StudentInput{
		StudentName:   r.StudentName,
		Gender:        r.Gender,
		Phone:         r.Phone,
		Email:         r.Email,
		AadhaarNumber: r.AadhaarNumber,
		DateOfJoining: joined,
		Active:        active,
		SeatReserved:  r.SeatReserved,
		SeatNumber:    r.SeatNumber,
		Locker:        r.Locker,
	}, nil
}

// CreateStudent enrolls a student, optionally recording the first payment in
// the same transaction
func (h *StudentHandler) CreateStudent(c echo.Context) error {
	var req studentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	input, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var initial *services.PaymentInput
	if req.InitialBill != nil {
		p, err := req.InitialBill.toInput()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		initial = &p
	}

	student, err := h.students.Create(c.Request().Context(), input, initial)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAadhaarExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrInvalidSubscription):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create student")
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, student)
}

// UpdateStudent rewrites the student's editable fields
func (h *StudentHandler) UpdateStudent(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}

	var req studentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	input, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	student, err := h.students.Update(c.Request().Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		case errors.Is(err, services.ErrAadhaarExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update student")
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, student)
}

// DeleteStudent removes the student, their billing history, and their
// stored documents
func (h *StudentHandler) DeleteStudent(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}

	paths, err := h.students.Delete(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete student")
	}

	// Best-effort file cleanup; the rows are already gone
	for _, p := range paths {
		if err := h.documents.Remove(p); err != nil {
			c.Logger().Errorf("failed to remove document file %s: %v", p, err)
		}
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
