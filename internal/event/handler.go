package event

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/byoma-kusuma/sangha-management-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// statusForError maps engine errors onto HTTP statuses. State conflicts
// (closed, duplicate, blocked, incomplete) surface as 409 so clients can
// distinguish them from validation failures.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrEventNotFound),
		errors.Is(err, ErrPersonNotFound),
		errors.Is(err, ErrAttendeeNotFound),
		errors.Is(err, ErrDayNotFound),
		errors.Is(err, ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEventClosed),
		errors.Is(err, ErrAlreadyClosed),
		errors.Is(err, ErrDuplicateRegistration),
		errors.Is(err, ErrDateChangeBlocked),
		errors.Is(err, ErrCreditAlreadyGranted),
		errors.Is(err, ErrIncompleteAttendance),
		errors.Is(err, ErrCloseInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrOverrideNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrMissingEmpowermentLink),
		errors.Is(err, ErrMissingGuruLink):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// ===========================
// 🎯 Create Event - POST /events
func (h *Handler) CreateEvent(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	e, err := h.Service.CreateEvent(&req, actor.UserID, middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// ===========================
// ✏️ Update Event - PUT /events/:id
func (h *Handler) UpdateEvent(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	e, err := h.Service.UpdateEvent(id, &req, actor.UserID, middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// ===========================
// 🔍 Get Event - GET /events/:id
func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.Service.GetEvent(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ===========================
// 📄 List Events - GET /events?status=&category_id=
func (h *Handler) ListEvents(c *gin.Context) {
	categoryID, _ := strconv.Atoi(c.DefaultQuery("category_id", "0"))

	events, err := h.Service.ListEvents(c.Query("status"), uint(categoryID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// ===========================
// 📊 Event Stats - GET /events/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Service.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ===========================
// 🗑️ Delete Event - DELETE /events/:id
func (h *Handler) DeleteEvent(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteEvent(id, actor.UserID, middleware.GetIPFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}

// ===========================
// ➕ Register Attendee - POST /events/:id/attendees
func (h *Handler) RegisterAttendee(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req RegisterAttendeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	view, err := h.Service.RegisterAttendee(eventID, &req, actor.UserID, middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ===========================
// 📄 List Attendees - GET /events/:id/attendees
func (h *Handler) ListAttendees(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	views, err := h.Service.ListAttendees(eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendees": views, "count": len(views)})
}

// ===========================
// ✏️ Update Attendee - PUT /events/:id/attendees/:attendeeId
func (h *Handler) UpdateAttendee(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attendeeID, ok := pathID(c, "attendeeId")
	if !ok {
		return
	}

	var req UpdateAttendeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	view, err := h.Service.UpdateAttendee(eventID, attendeeID, &req, actor.UserID, middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ===========================
// ➖ Remove Attendee - DELETE /events/:id/attendees/:attendeeId
func (h *Handler) RemoveAttendee(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attendeeID, ok := pathID(c, "attendeeId")
	if !ok {
		return
	}

	if err := h.Service.RemoveAttendee(eventID, attendeeID, actor.UserID, middleware.GetIPFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "attendee removed"})
}

// ===========================
// ✅ Set Check-In - PUT /events/:id/attendees/:attendeeId/checkin/:dayId
func (h *Handler) SetCheckIn(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attendeeID, ok := pathID(c, "attendeeId")
	if !ok {
		return
	}
	dayID, ok := pathID(c, "dayId")
	if !ok {
		return
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	result, err := h.Service.SetCheckIn(eventID, attendeeID, dayID, req.CheckedIn, actor.UserID, middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ===========================
// 🔒 Close Event - POST /events/:id/close
func (h *Handler) CloseEvent(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CloseEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	result, err := h.Service.CloseEvent(eventID, &req, actor, middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
