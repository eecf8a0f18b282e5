package reports

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/byoma-kusuma/sangha-management-backend/middleware"
)

type Handler struct {
	Service ReportService
}

func NewHandler(s ReportService) *Handler {
	return &Handler{Service: s}
}

// ===========================
// 📊 Attendance Report - GET /events/:id/report?format=json|csv|excel|pdf
//
// Without a format (or format=json) the matrix comes back as JSON; any
// other format streams a file download.
func (h *Handler) GetAttendanceReport(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}
	eventID := uint(id)

	format := c.DefaultQuery("format", "json")
	if format == "json" {
		report, err := h.Service.GetAttendanceReport(eventID)
		if err != nil {
			if errors.Is(err, ErrEventNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build report"})
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	content, filename, mime, err := h.Service.ExportAttendanceReport(
		c.Request.Context(), eventID, format, &actor.UserID, middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, mime, content)
}
