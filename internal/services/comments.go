package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"commentkit/internal/config"
	"commentkit/internal/models"
	"commentkit/internal/utils"

	"gorm.io/gorm"
)

// CommentInput carries caller-supplied fields for a new comment. UserID
// is the authenticated user, nil for guests.
type CommentInput struct {
	Body       string
	ParentID   *uint
	UserID     *uint
	GuestName  string
	GuestEmail string
	GuestIP    string
}

type CommentService struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier *Notifier
}

func NewCommentService(db *gorm.DB, cfg *config.Config, notifier *Notifier) *CommentService {
	return &CommentService{db: db, cfg: cfg, notifier: notifier}
}

// CreateComment validates and persists a comment on the owning entity,
// then emits a comment.created event.
func (s *CommentService) CreateComment(in CommentInput, owner models.Commentable) (*models.Comment, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, invalid("body", "The body field is required.")
	}

	authenticated := in.UserID != nil

	status := models.CommentStatusPending
	if authenticated && s.cfg.AutoApproveAuthenticated {
		status = models.CommentStatusApproved
	}

	comment := models.Comment{
		CommentableType: owner.CommentableType(),
		CommentableID:   owner.CommentableID(),
		UserID:          in.UserID,
		Body:            body,
		Status:          status,
	}

	if !authenticated {
		if !s.cfg.Guests.Allowed {
			return nil, invalid("guest", "Guests are not allowed to comment.")
		}
		if s.cfg.Guests.RequireEmail && in.GuestEmail == "" {
			return nil, invalid("guest_email", "Email is required for guest comments.")
		}
		comment.GuestName = in.GuestName
		comment.GuestEmail = in.GuestEmail
		comment.GuestIP = in.GuestIP
	}

	if in.ParentID != nil {
		var parent models.Comment
		err := s.db.Scopes(models.ScopeOwner(owner)).
			Select("id", "status", "depth").
			First(&parent, *in.ParentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("parent_id", "Invalid parent comment.")
		}
		if err != nil {
			return nil, fmt.Errorf("load parent comment: %w", err)
		}

		if s.cfg.ReplyOnlyToApprovedParent && !parent.IsApproved() {
			return nil, invalid("parent_id", "Parent comment is not approved.")
		}

		comment.ParentID = in.ParentID
		comment.Depth = parent.Depth + 1

		if s.cfg.MaxDepth > 0 && comment.Depth > s.cfg.MaxDepth {
			return nil, invalid("parent_id", "Max depth reached.")
		}
	}

	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.notifier.Emit(EventCommentCreated, &comment)

	return &comment, nil
}

// ApproveComment marks the comment approved and returns the refreshed row.
func (s *CommentService) ApproveComment(comment *models.Comment) (*models.Comment, error) {
	err := s.db.Model(comment).Update("status", models.CommentStatusApproved).Error
	if err != nil {
		return nil, fmt.Errorf("approve comment: %w", err)
	}

	if err := s.db.Preload("User").First(comment, comment.ID).Error; err != nil {
		return nil, fmt.Errorf("reload comment: %w", err)
	}
	return comment, nil
}

// GetComment loads one comment by id.
func (s *CommentService) GetComment(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		return nil, fmt.Errorf("load comment %d: %w", id, err)
	}
	return &comment, nil
}

// ListApproved returns the approved comments of one owning entity with
// authors preloaded, oldest first.
func (s *CommentService) ListApproved(owner models.Commentable) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Scopes(models.ScopeOwner(owner), models.ScopeApproved).
		Preload("User").
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// TreeNode is one rendered comment in the nested tree output.
type TreeNode struct {
	ID        uint       `json:"id"`
	User      string     `json:"user"`
	Body      string     `json:"body"`
	BodyHTML  string     `json:"body_html"`
	CreatedAt time.Time  `json:"created_at"`
	Depth     int        `json:"depth"`
	Likes     int64      `json:"likes"`
	Dislikes  int64      `json:"dislikes"`
	Children  []TreeNode `json:"children"`
}

// ToTree assembles a flat comment collection into ordered root nodes
// with nested children. Each level is sorted by creation time
// ascending. stats supplies per-comment like/dislike counts and may be
// nil.
func (s *CommentService) ToTree(comments []models.Comment, stats map[uint]ReactionStats) []TreeNode {
	byParent := make(map[uint][]models.Comment)
	for _, comment := range comments {
		key := uint(0) // roots
		if comment.ParentID != nil {
			key = *comment.ParentID
		}
		byParent[key] = append(byParent[key], comment)
	}

	var build func(parentID uint) []TreeNode
	build = func(parentID uint) []TreeNode {
		level := byParent[parentID]
		sort.SliceStable(level, func(i, j int) bool {
			if level[i].CreatedAt.Equal(level[j].CreatedAt) {
				return level[i].ID < level[j].ID
			}
			return level[i].CreatedAt.Before(level[j].CreatedAt)
		})

		nodes := make([]TreeNode, 0, len(level))
		for _, comment := range level {
			node := TreeNode{
				ID:        comment.ID,
				User:      comment.AuthorName(),
				Body:      comment.Body,
				BodyHTML:  utils.RenderMarkdown(comment.Body),
				CreatedAt: comment.CreatedAt,
				Depth:     comment.Depth,
				Children:  build(comment.ID),
			}
			if st, ok := stats[comment.ID]; ok {
				node.Likes = st.Likes
				node.Dislikes = st.Dislikes
			}
			nodes = append(nodes, node)
		}
		return nodes
	}

	return build(0)
}
