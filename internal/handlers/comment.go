package handlers

import (
	"net/http"

	"commentkit/internal/config"
	"commentkit/internal/middleware"
	"commentkit/internal/models"
	"commentkit/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments  *services.CommentService
	reactions *services.ReactionService
	recaptcha *services.RecaptchaVerifier
	cfg       *config.Config
}

func NewCommentHandler(comments *services.CommentService, reactions *services.ReactionService, recaptcha *services.RecaptchaVerifier, cfg *config.Config) *CommentHandler {
	return &CommentHandler{comments: comments, reactions: reactions, recaptcha: recaptcha, cfg: cfg}
}

type createCommentRequest struct {
	Body           string `json:"body"`
	ParentID       *uint  `json:"parent_id"`
	GuestName      string `json:"guest_name"`
	GuestEmail     string `json:"guest_email"`
	RecaptchaToken string `json:"recaptcha_token"`
}

// Create handles POST /owners/:otype/:oid — a new comment on the owning entity.
func (h *CommentHandler) Create(c *gin.Context) {
	ownerID, ok := paramUint(c, "oid")
	if !ok {
		return
	}
	owner := models.Owner{Type: c.Param("otype"), ID: ownerID}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	userID := middleware.CurrentUserID(c)

	// Guests pass the captcha gate when it is switched on.
	if h.cfg.Recaptcha.Enabled && userID == nil {
		if !h.recaptcha.Verify(req.RecaptchaToken, c.ClientIP()) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"errors": gin.H{"recaptcha_token": "Captcha verification failed."},
			})
			return
		}
	}

	comment, err := h.comments.CreateComment(services.CommentInput{
		Body:       req.Body,
		ParentID:   req.ParentID,
		UserID:     userID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestIP:    c.ClientIP(),
	}, owner)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Approve handles POST /:id/approve.
func (h *CommentHandler) Approve(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	comment, err := h.comments.GetComment(id)
	if err != nil {
		fail(c, err)
		return
	}

	comment, err = h.comments.ApproveComment(comment)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Tree handles GET /owners/:otype/:oid — the approved comment tree with
// reaction counts.
func (h *CommentHandler) Tree(c *gin.Context) {
	ownerID, ok := paramUint(c, "oid")
	if !ok {
		return
	}
	owner := models.Owner{Type: c.Param("otype"), ID: ownerID}

	comments, err := h.comments.ListApproved(owner)
	if err != nil {
		fail(c, err)
		return
	}

	stats, err := h.reactions.GetReactionStatsForComments(comments)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": h.comments.ToTree(comments, stats)})
}
