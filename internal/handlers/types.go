package handlers

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// ListResponse is the paging envelope every list endpoint returns
type ListResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int64       `json:"total_count"`
	TotalPages int         `json:"total_pages"`
}

func newListResponse(data interface{}, page, pageSize int, totalCount int64) ListResponse {
	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}
	return ListResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

func parseIDParam(c echo.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || val == 0 {
		return 0, false
	}
	return uint(val), true
}

func parseIntQuery(c echo.Context, name, fallback string) int {
	s := c.QueryParam(name)
	if s == "" {
		s = fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseBoolQuery(c echo.Context, name string) *bool {
	switch c.QueryParam(name) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

// dateFromRequest parses the YYYY-MM-DD dates the frontend's date inputs send
func dateFromRequest(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
