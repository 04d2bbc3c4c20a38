package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"library_console_echo/internal/billing"
	"library_console_echo/internal/services"
)

type PaymentHandler struct {
	students  *services.StudentService
	dashboard *services.DashboardService
}

func NewPaymentHandler(students *services.StudentService, dashboard *services.DashboardService) *PaymentHandler {
	return &PaymentHandler{students: students, dashboard: dashboard}
}

type paymentRequest struct {
	SubscriptionType     string `json:"subscription_type"`
	SubscriptionDuration int    `json:"subscription_duration"`
	PaymentDate          string `json:"payment_date"`
	BasicFee             int64  `json:"basic_fee"`
	SeatFee              int64  `json:"seat_fee"`
	LockerFee            int64  `json:"locker_fee"`
	PaymentMethod        string `json:"payment_method"`
}

func (r paymentRequest) toInput() (services.PaymentInput, error) {
	paymentDate, err := dateFromRequest(r.PaymentDate)
	if err != nil {
		return services.PaymentInput{}, errors.New("invalid payment date, expected YYYY-MM-DD")
	}
	return services.PaymentInput{
		SubscriptionType:     billing.SubscriptionType(r.SubscriptionType),
		SubscriptionDuration: r.SubscriptionDuration,
		PaymentDate:          paymentDate,
		BasicFee:             r.BasicFee,
		SeatFee:              r.SeatFee,
		LockerFee:            r.LockerFee,
		PaymentMethod:        billing.PaymentMethod(r.PaymentMethod),
	}, nil
}

// ListPayments returns the student's billing history, newest first
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}

	entries, err := h.students.ListPayments(c.Request().Context(), studentID)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch payments")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": entries})
}

// AddPayment records a payment against the student
func (h *PaymentHandler) AddPayment(c echo.Context) error {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}

	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	input, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.students.AddPayment(c.Request().Context(), studentID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		case errors.Is(err, services.ErrInvalidSubscription):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to add payment")
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, entry)
}

// EditPayment rewrites a billing entry; the next payment date is recomputed
func (h *PaymentHandler) EditPayment(c echo.Context) error {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}
	entryID, ok := parseIDParam(c, "entryId")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid entry id")
	}

	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	input, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.students.EditPayment(c.Request().Context(), studentID, entryID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEntryNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "billing entry not found")
		case errors.Is(err, services.ErrInvalidSubscription):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update payment")
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, entry)
}

// PreviewNextDue answers the payment form's live "next payment will be due
// on" hint without persisting anything
func (h *PaymentHandler) PreviewNextDue(c echo.Context) error {
	typ := billing.SubscriptionType(c.QueryParam("subscription_type"))
	duration := parseIntQuery(c, "subscription_duration", "0")

	start, err := dateFromRequest(c.QueryParam("payment_date"))
	if err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"available": false})
	}

	next, ok := billing.ComputeNextPaymentDate(start, typ, duration)
	if !ok {
		return c.JSON(http.StatusOK, map[string]interface{}{"available": false})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"available":         true,
		"next_payment_date": next.Format("2006-01-02"),
	})
}

// ClassifyDue answers the due badge for one next-payment date, available to
// the frontend anywhere it shows a date outside a full student row
func (h *PaymentHandler) ClassifyDue(c echo.Context) error {
	next, err := dateFromRequest(c.QueryParam("next_payment_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid next payment date, expected YYYY-MM-DD")
	}
	window := parseIntQuery(c, "window", "7")

	classification := billing.ClassifyDueStatus(next, true, time.Now(), window)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    classification.Status,
		"days_left": classification.DaysLeft,
		"tier":      classification.Tier(),
	})
}
