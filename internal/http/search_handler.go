package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"movie-tracker/internal/tmdb"
)

// SearchHandler expone el proxy de búsqueda contra TMDB.
type SearchHandler struct {
	logger *zap.Logger
	client tmdb.Client
}

func NewSearchHandler(logger *zap.Logger, client tmdb.Client) *SearchHandler {
	return &SearchHandler{
		logger: logger,
		client: client,
	}
}

// Search maneja GET /api/search?q=...&page=N.
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter is required"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	results, err := h.client.Search(c.Request.Context(), query, page)
	if err != nil {
		h.logger.Error("tmdb search failed", zap.Error(err), zap.String("query", query))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search movies"})
		return
	}

	c.JSON(http.StatusOK, results)
}
