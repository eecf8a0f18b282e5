package empowerment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(r *Repository) *Handler {
	return &Handler{Repo: r}
}

// ===========================
// 📄 List Empowerments - GET /empowerments
func (h *Handler) ListEmpowerments(c *gin.Context) {
	list, err := h.Repo.ListEmpowerments()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list empowerments"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// ===========================
// 📄 List Gurus - GET /gurus
func (h *Handler) ListGurus(c *gin.Context) {
	list, err := h.Repo.ListGurus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list gurus"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// ===========================
// 📄 Person Credit History - GET /persons/:id/empowerments
func (h *Handler) ListPersonEmpowerments(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person ID"})
		return
	}

	recs, err := h.Repo.ListRecordsByPerson(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list person empowerments"})
		return
	}
	c.JSON(http.StatusOK, recs)
}
