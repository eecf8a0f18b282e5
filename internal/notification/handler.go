package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/byoma-kusuma/sangha-management-backend/middleware"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// 🔔 List My Notifications - GET /notifications?unread=&limit=
func (h *Handler) ListMyNotifications(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}

	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	list, unread, err := h.Service.ListMyNotifications(c.Request.Context(), actor.UserID, unreadOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread_count": unread})
}

// ===========================
// ✅ Mark As Read - PUT /notifications/:id/read
func (h *Handler) MarkAsRead(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification ID"})
		return
	}

	if err := h.Service.MarkAsRead(c.Request.Context(), uint(id), actor.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

// ===========================
// ✅ Mark All As Read - PUT /notifications/read-all
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}

	if err := h.Service.MarkAllAsRead(c.Request.Context(), actor.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked as read"})
}

// ===========================
// 📱 Register Device Token - POST /notifications/device-tokens
func (h *Handler) RegisterDeviceToken(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}

	var req RegisterDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if err := h.Service.RegisterDeviceToken(c.Request.Context(), actor.UserID, &req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register device token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "device token registered"})
}

// ===========================
// 📱 Remove Device Token - DELETE /notifications/device-tokens/:token
func (h *Handler) RemoveDeviceToken(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}

	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing device token"})
		return
	}

	if err := h.Service.RemoveDeviceToken(c.Request.Context(), actor.UserID, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove device token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device token removed"})
}
