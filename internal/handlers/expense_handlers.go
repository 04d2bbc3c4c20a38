package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"library_console_echo/internal/models"
	"library_console_echo/internal/services"
)

type ExpenseHandler struct {
	db        *gorm.DB
	dashboard *services.DashboardService
}

func NewExpenseHandler(db *gorm.DB, dashboard *services.DashboardService) *ExpenseHandler {
	return &ExpenseHandler{db: db, dashboard: dashboard}
}

type expenseRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Amount      int64  `json:"amount"`
	ExpenseDate string `json:"expense_date"`
	Note        string `json:"note"`
}

func (r expenseRequest) toModel() (models.Expense, error) {
	if r.Title == "" {
		return models.Expense{}, errors.New("title is required")
	}
	if r.Amount <= 0 {
		return models.Expense{}, errors.New("amount must be positive")
	}
	date := time.Now()
	if r.ExpenseDate != "" {
		parsed, err := dateFromRequest(r.ExpenseDate)
		if err != nil {
			return models.Expense{}, errors.New("expense_date must be YYYY-MM-DD")
		}
		date = parsed
	}
	return models.Expense{
		Title:       r.Title,
		Category:    r.Category,
		Amount:      r.Amount,
		ExpenseDate: date,
		Note:        r.Note,
	}, nil
}

// ListExpenses supports optional month scoping (?year=2025&month=4) and
// category filtering
func (h *ExpenseHandler) ListExpenses(c echo.Context) error {
	page := parseIntQuery(c, "page", "1")
	limit := parseIntQuery(c, "limit", "20")
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.WithContext(c.Request().Context()).Model(&models.Expense{})

	year := parseIntQuery(c, "year", "0")
	month := parseIntQuery(c, "month", "0")
	if year > 0 && month >= 1 && month <= 12 {
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
		query = query.Where("expense_date >= ? AND expense_date < ?", start, start.AddDate(0, 1, 0))
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to count expenses")
	}

	var expenses []models.Expense
	err := query.Order("expense_date DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&expenses).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch expenses")
	}

	return c.JSON(http.StatusOK, newListResponse(expenses, page, limit, total))
}

func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	expense, err := req.toModel()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.db.WithContext(c.Request().Context()).Create(&expense).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create expense")
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid expense id")
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	updated, err := req.toModel()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var expense models.Expense
	err = h.db.WithContext(c.Request().Context()).First(&expense, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "expense not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch expense")
	}

	expense.Title = updated.Title
	expense.Category = updated.Category
	expense.Amount = updated.Amount
	expense.ExpenseDate = updated.ExpenseDate
	expense.Note = updated.Note
	if err := h.db.WithContext(c.Request().Context()).Save(&expense).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update expense")
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid expense id")
	}

	result := h.db.WithContext(c.Request().Context()).Delete(&models.Expense{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete expense")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "expense not found")
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
