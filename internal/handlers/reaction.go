package handlers

import (
	"net/http"
	"time"

	"commentkit/internal/config"
	"commentkit/internal/fingerprint"
	"commentkit/internal/middleware"
	"commentkit/internal/models"
	"commentkit/internal/services"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	comments  *services.CommentService
	reactions *services.ReactionService
	cfg       *config.Config
}

func NewReactionHandler(comments *services.CommentService, reactions *services.ReactionService, cfg *config.Config) *ReactionHandler {
	return &ReactionHandler{comments: comments, reactions: reactions, cfg: cfg}
}

// identity resolves (fingerprint, userID) for the request. Explicit
// fingerprints from the body win; otherwise guests get the cookie-backed
// fingerprint when guest reactions are allowed.
func (h *ReactionHandler) identity(c *gin.Context, explicit string) (string, *uint) {
	userID := middleware.CurrentUserID(c)

	fp := explicit
	if userID == nil && fp == "" && h.cfg.Guests.Allowed {
		fp = fingerprint.GetOrCreate(c, h.cfg.Guests.CookieName)
	}
	return fp, userID
}

type toggleRequest struct {
	Type        models.ReactionType `json:"type"`
	Fingerprint string              `json:"fingerprint"`
}

// Toggle handles POST /:id/reactions.
func (h *ReactionHandler) Toggle(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reaction type."})
		return
	}

	comment, err := h.comments.GetComment(id)
	if err != nil {
		fail(c, err)
		return
	}

	fp, userID := h.identity(c, req.Fingerprint)

	reaction, err := h.reactions.ToggleReaction(comment, req.Type, fp, userID)
	if err != nil {
		fail(c, err)
		return
	}

	stats, err := h.reactions.GetReactionStats(comment)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reaction": reaction, "stats": stats})
}

// Stats handles GET /:id/reactions/stats.
func (h *ReactionHandler) Stats(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	comment, err := h.comments.GetComment(id)
	if err != nil {
		fail(c, err)
		return
	}

	stats, err := h.reactions.GetReactionStats(comment)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Me handles GET /:id/reactions/me — the current identity's reaction.
func (h *ReactionHandler) Me(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	comment, err := h.comments.GetComment(id)
	if err != nil {
		fail(c, err)
		return
	}

	fp, userID := h.identity(c, c.Query("fingerprint"))

	reaction, err := h.reactions.GetUserReaction(comment, fp, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reaction": reaction})
}

// List handles GET /:id/reactions with limit/offset pagination.
func (h *ReactionHandler) List(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	comment, err := h.comments.GetComment(id)
	if err != nil {
		fail(c, err)
		return
	}

	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	reactions, err := h.reactions.GetCommentReactions(comment, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}

type bulkToggleRequest struct {
	CommentIDs  []uint              `json:"comment_ids"`
	Type        models.ReactionType `json:"type"`
	Fingerprint string              `json:"fingerprint"`
}

// BulkToggle handles POST /reactions/bulk.
func (h *ReactionHandler) BulkToggle(c *gin.Context) {
	var req bulkToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Type.Valid() || len(req.CommentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	fp, userID := h.identity(c, req.Fingerprint)

	results := h.reactions.BulkToggleReactions(req.CommentIDs, req.Type, fp, userID)

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Popular handles GET /popular?limit=10&days=7.
func (h *ReactionHandler) Popular(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	days := queryInt(c, "days", 7)

	comments, err := h.reactions.GetPopularComments(limit, time.Duration(days)*24*time.Hour)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
