package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"library_console_echo/internal/models"
	"library_console_echo/internal/services"
)

// 10 MB per upload, matching what the frontend accepts
const maxDocumentSize = 10 << 20

type DocumentHandler struct {
	db        *gorm.DB
	store     *services.DocumentStore
	students  *services.StudentService
	dashboard *services.DashboardService
}

func NewDocumentHandler(db *gorm.DB, store *services.DocumentStore, students *services.StudentService, dashboard *services.DashboardService) *DocumentHandler {
	return &DocumentHandler{db: db, store: store, students: students, dashboard: dashboard}
}

// documentView adds the rendered size label the document list displays
type documentView struct {
	models.StudentDocument
	SizeLabel string `json:"size_label"`
}

func newDocumentView(d models.StudentDocument) documentView {
	return documentView{StudentDocument: d, SizeLabel: d.SizeLabel()}
}

// ListDocuments returns the metadata of a student's stored documents
func (h *DocumentHandler) ListDocuments(c echo.Context) error {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}

	var docs []models.StudentDocument
	err := h.db.WithContext(c.Request().Context()).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch documents")
	}

	views := make([]documentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, newDocumentView(d))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": views})
}

// UploadDocument stores one multipart file and its metadata row
func (h *DocumentHandler) UploadDocument(c echo.Context) error {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}
	if _, err := h.students.Get(c.Request().Context(), studentID); err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch student")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxDocumentSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds the 10 MB limit")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload")
	}
	defer src.Close()

	storedPath, size, err := h.store.Save(studentID, fileHeader.Filename, src)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store file")
	}

	doc := models.StudentDocument{
		StudentID:   studentID,
		FileName:    fileHeader.Filename,
		StoredPath:  storedPath,
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   size,
		DocType:     c.FormValue("doc_type"),
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&doc).Error; err != nil {
		// Roll the file back so the store doesn't accumulate orphans
		if rmErr := h.store.Remove(storedPath); rmErr != nil {
			c.Logger().Errorf("failed to remove orphaned file %s: %v", storedPath, rmErr)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save document")
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, newDocumentView(doc))
}

// DownloadDocument streams the stored file back with its original name
func (h *DocumentHandler) DownloadDocument(c echo.Context) error {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}
	docID, ok := parseIDParam(c, "docId")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	var doc models.StudentDocument
	err := h.db.WithContext(c.Request().Context()).
		Where("id = ? AND student_id = ?", docID, studentID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch document")
	}

	f, err := h.store.Open(doc.StoredPath)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "stored file missing")
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.FileName+`"`)
	return c.Stream(http.StatusOK, doc.ContentType, f)
}

// DeleteDocument removes the metadata row and the stored file
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}
	docID, ok := parseIDParam(c, "docId")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	var doc models.StudentDocument
	err := h.db.WithContext(c.Request().Context()).
		Where("id = ? AND student_id = ?", docID, studentID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch document")
	}

	if err := h.db.WithContext(c.Request().Context()).Delete(&doc).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete document")
	}
	if err := h.store.Remove(doc.StoredPath); err != nil {
		c.Logger().Errorf("failed to remove document file %s: %v", doc.StoredPath, err)
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
