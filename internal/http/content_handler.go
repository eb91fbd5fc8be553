package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"movie-tracker/internal/service"
)

// ContentHandler mantiene dependencias para los endpoints de watchlist y vistos.
type ContentHandler struct {
	logger     *zap.Logger
	contentSvc *service.ContentService
}

func NewContentHandler(logger *zap.Logger, contentSvc *service.ContentService) *ContentHandler {
	return &ContentHandler{
		logger:     logger,
		contentSvc: contentSvc,
	}
}

type mediaItemRequest struct {
	MediaID      int     `json:"media_id" binding:"required"`
	Title        string  `json:"title" binding:"required"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	MediaType    string  `json:"media_type" binding:"required"`
}

func (r mediaItemRequest) toInput() service.AddItemInput {
	return service.AddItemInput{
		MediaID:      r.MediaID,
		Title:        r.Title,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		Overview:     r.Overview,
		VoteAverage:  r.VoteAverage,
		MediaType:    r.MediaType,
	}
}

// ListWatchlist maneja GET /api/watchlist.
func (h *ContentHandler) ListWatchlist(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	items, err := h.contentSvc.ListWatchlist(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list watchlist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get watchlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AddToWatchlist maneja POST /api/watchlist.
func (h *ContentHandler) AddToWatchlist(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req mediaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	item, err := h.contentSvc.AddToWatchlist(c.Request.Context(), claims.UserID, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrInvalidItem) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item"})
			return
		}
		h.logger.Error("add to watchlist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add to watchlist"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// RemoveFromWatchlist maneja DELETE /api/watchlist/:id.
func (h *ContentHandler) RemoveFromWatchlist(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	err := h.contentSvc.RemoveFromWatchlist(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		h.logger.Error("remove from watchlist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove from watchlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkWatched maneja POST /api/watchlist/:id/watched.
func (h *ContentHandler) MarkWatched(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	item, err := h.contentSvc.MarkWatched(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		h.logger.Error("mark watched failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark as watched"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// ListWatched maneja GET /api/watched.
func (h *ContentHandler) ListWatched(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	items, err := h.contentSvc.ListWatched(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list watched failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get watched items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AddWatched maneja POST /api/watched.
func (h *ContentHandler) AddWatched(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		mediaItemRequest
		WatchedDate *time.Time `json:"watched_date"`
		Rating      *int       `json:"rating"`
		Notes       string     `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	input := service.AddWatchedInput{
		AddItemInput: req.toInput(),
		Rating:       req.Rating,
		Notes:        req.Notes,
	}
	if req.WatchedDate != nil {
		input.WatchedDate = *req.WatchedDate
	}

	item, err := h.contentSvc.AddWatched(c.Request.Context(), claims.UserID, input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidItem) || errors.Is(err, service.ErrInvalidRating) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("add watched failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add watched item"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// UpdateWatched maneja PUT /api/watched/:id.
func (h *ContentHandler) UpdateWatched(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Rating *int   `json:"rating"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.contentSvc.UpdateWatched(c.Request.Context(), claims.UserID, c.Param("id"), req.Rating, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, service.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("update watched failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update watched item"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveWatched maneja DELETE /api/watched/:id.
func (h *ContentHandler) RemoveWatched(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	err := h.contentSvc.RemoveWatched(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		h.logger.Error("remove watched failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove watched item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
