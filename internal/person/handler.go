package person

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

// ===========================
// 🎯 Create Person - POST /persons
func (h *Handler) CreatePerson(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}

	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	p, err := h.Service.CreatePerson(&req, actor.UserID, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ===========================
// 🔍 Get Person - GET /persons/:id
func (h *Handler) GetPersonByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person ID"})
		return
	}

	p, err := h.Service.GetPersonByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// ===========================
// 📄 List Persons - GET /persons?limit=&offset=&search=
func (h *Handler) ListPersons(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	search := c.Query("search")

	persons, total, err := h.Service.ListPersons(limit, offset, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list persons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": persons, "total": total})
}

// ===========================
// 🛠 Update Person - PUT /persons/:id
func (h *Handler) UpdatePerson(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person ID"})
		return
	}

	var req UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	p, err := h.Service.UpdatePerson(uint(id), &req, actor.UserID, middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrPersonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, p)
}

// ===========================
// ❌ Delete Person - DELETE /persons/:id
func (h *Handler) DeletePerson(c *gin.Context) {
	actor, ok := middleware.GetAccessContext(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person ID"})
		return
	}

	if err := h.Service.DeletePerson(uint(id), actor.UserID, middleware.GetIPFromContext(c)); err != nil {
		if errors.Is(err, ErrPersonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete person"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "person deleted successfully"})
}
