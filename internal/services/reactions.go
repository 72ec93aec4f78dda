package services

import (
	"errors"
	"fmt"
	"time"

	"commentkit/internal/cache"
	"commentkit/internal/fingerprint"
	"commentkit/internal/models"

	"gorm.io/gorm"
)

const popularCacheTTL = 5 * time.Minute

// ReactionStats are per-comment reaction counts.
type ReactionStats struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
	Total    int64 `json:"total"`
}

// UserReaction describes the current identity's reaction on a comment.
type UserReaction struct {
	Type      models.ReactionType `json:"type"`
	CreatedAt time.Time           `json:"created_at"`
}

// BulkResult is the per-comment outcome of a bulk toggle.
type BulkResult struct {
	Success  bool             `json:"success"`
	Reaction *models.Reaction `json:"reaction,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type ReactionService struct {
	db       *gorm.DB
	notifier *Notifier
	cache    *cache.Cache
}

// NewReactionService wires the reaction service. cache may be nil to
// disable popular-comment caching.
func NewReactionService(db *gorm.DB, notifier *Notifier, c *cache.Cache) *ReactionService {
	return &ReactionService{db: db, notifier: notifier, cache: c}
}

// ToggleReaction applies toggle semantics for one identity on one
// comment: same type removes, different type replaces, absent creates.
// Identity precedence is userID first, else guestFingerprint (resolved
// by the caller from the request cookie). The read-then-write sequence
// runs in a single transaction; the unique indexes remain the backstop
// for concurrent toggles from the same identity.
func (s *ReactionService) ToggleReaction(comment *models.Comment, typ models.ReactionType, guestFingerprint string, userID *uint) (*models.Reaction, error) {
	if !comment.IsApproved() {
		return nil, invalid("comment", "Cannot react to unapproved comment.")
	}

	if userID == nil && guestFingerprint != "" && !fingerprint.Validate(guestFingerprint) {
		return nil, invalid("fingerprint", "Invalid guest fingerprint format.")
	}

	if userID == nil && guestFingerprint == "" {
		return nil, invalid("user", "User must be authenticated or provide guest fingerprint.")
	}

	var reaction models.Reaction
	var removed bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findExistingReaction(tx, comment, userID, guestFingerprint)
		if err != nil {
			return err
		}

		if existing != nil {
			if existing.Type == typ {
				if err := tx.Delete(existing).Error; err != nil {
					return fmt.Errorf("delete reaction: %w", err)
				}
				reaction = *existing
				removed = true
				return nil
			}

			if err := tx.Model(existing).Update("type", typ).Error; err != nil {
				return fmt.Errorf("update reaction: %w", err)
			}
			existing.Type = typ
			reaction = *existing
			return nil
		}

		reaction = models.Reaction{
			CommentID: comment.ID,
			UserID:    userID,
			Type:      typ,
		}
		if userID == nil {
			reaction.GuestFingerprint = &guestFingerprint
		}
		if err := tx.Create(&reaction).Error; err != nil {
			return fmt.Errorf("create reaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !removed {
		s.notifier.Emit(EventReactionToggled, &reaction)
	}

	return &reaction, nil
}

// RemoveReaction deletes the reaction and returns the removed row.
func (s *ReactionService) RemoveReaction(reaction *models.Reaction) (*models.Reaction, error) {
	if err := s.db.Delete(reaction).Error; err != nil {
		return nil, fmt.Errorf("delete reaction: %w", err)
	}
	return reaction, nil
}

// DetachReaction removes a guest's reaction rows on the comment.
func (s *ReactionService) DetachReaction(comment *models.Comment, guestFingerprint string) error {
	err := s.db.Where("comment_id = ? AND guest_fingerprint = ?", comment.ID, guestFingerprint).
		Delete(&models.Reaction{}).Error
	if err != nil {
		return fmt.Errorf("detach reaction: %w", err)
	}
	return nil
}

type typeCount struct {
	Type  models.ReactionType
	Count int64
}

// GetReactionStats counts the comment's reactions grouped by type.
func (s *ReactionService) GetReactionStats(comment *models.Comment) (ReactionStats, error) {
	var rows []typeCount
	err := s.db.Model(&models.Reaction{}).
		Select("type, COUNT(*) as count").
		Where("comment_id = ?", comment.ID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return ReactionStats{}, fmt.Errorf("count reactions: %w", err)
	}

	var stats ReactionStats
	for _, row := range rows {
		switch row.Type {
		case models.ReactionTypeLike:
			stats.Likes = row.Count
		case models.ReactionTypeDislike:
			stats.Dislikes = row.Count
		}
	}
	stats.Total = stats.Likes + stats.Dislikes
	return stats, nil
}

// GetReactionStatsForComments batches per-comment stats with a single
// grouped count query. Comments without reactions yield zero stats.
func (s *ReactionService) GetReactionStatsForComments(comments []models.Comment) (map[uint]ReactionStats, error) {
	stats := make(map[uint]ReactionStats, len(comments))
	if len(comments) == 0 {
		return stats, nil
	}

	ids := make([]uint, len(comments))
	for i, comment := range comments {
		ids[i] = comment.ID
		stats[comment.ID] = ReactionStats{}
	}

	var rows []struct {
		CommentID uint
		Type      models.ReactionType
		Count     int64
	}
	err := s.db.Model(&models.Reaction{}).
		Select("comment_id, type, COUNT(*) as count").
		Where("comment_id IN ?", ids).
		Group("comment_id, type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}

	for _, row := range rows {
		st := stats[row.CommentID]
		switch row.Type {
		case models.ReactionTypeLike:
			st.Likes = row.Count
		case models.ReactionTypeDislike:
			st.Dislikes = row.Count
		}
		st.Total = st.Likes + st.Dislikes
		stats[row.CommentID] = st
	}

	return stats, nil
}

// GetUserReaction returns the current identity's reaction on the
// comment, or nil when there is none.
func (s *ReactionService) GetUserReaction(comment *models.Comment, guestFingerprint string, userID *uint) (*UserReaction, error) {
	reaction, err := findExistingReaction(s.db, comment, userID, guestFingerprint)
	if err != nil {
		return nil, err
	}
	if reaction == nil {
		return nil, nil
	}
	return &UserReaction{Type: reaction.Type, CreatedAt: reaction.CreatedAt}, nil
}

// GetCommentReactions returns the comment's reactions with authors
// preloaded, newest first.
func (s *ReactionService) GetCommentReactions(comment *models.Comment, limit, offset int) ([]models.Reaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var reactions []models.Reaction
	err := s.db.Preload("User").
		Where("comment_id = ?", comment.ID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reactions).Error
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	return reactions, nil
}

// GetReactionsByType returns the comment's reactions grouped into like
// and dislike lists. Both keys are always present.
func (s *ReactionService) GetReactionsByType(comment *models.Comment) (map[models.ReactionType][]models.Reaction, error) {
	var reactions []models.Reaction
	err := s.db.Preload("User").
		Where("comment_id = ?", comment.ID).
		Find(&reactions).Error
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}

	grouped := map[models.ReactionType][]models.Reaction{
		models.ReactionTypeLike:    {},
		models.ReactionTypeDislike: {},
	}
	for _, reaction := range reactions {
		grouped[reaction.Type] = append(grouped[reaction.Type], reaction)
	}
	return grouped, nil
}

// BulkToggleReactions toggles each comment independently; one failure
// does not abort the rest.
func (s *ReactionService) BulkToggleReactions(commentIDs []uint, typ models.ReactionType, guestFingerprint string, userID *uint) map[uint]BulkResult {
	results := make(map[uint]BulkResult, len(commentIDs))

	for _, id := range commentIDs {
		var comment models.Comment
		if err := s.db.First(&comment, id).Error; err != nil {
			results[id] = BulkResult{Success: false, Error: fmt.Sprintf("comment %d not found", id)}
			continue
		}

		reaction, err := s.ToggleReaction(&comment, typ, guestFingerprint, userID)
		if err != nil {
			results[id] = BulkResult{Success: false, Error: err.Error()}
			continue
		}
		results[id] = BulkResult{Success: true, Reaction: reaction}
	}

	return results
}

// GetPopularComments returns approved comments created within period,
// ranked by reaction count then recency. Results are cached briefly.
func (s *ReactionService) GetPopularComments(limit int, period time.Duration) ([]models.Comment, error) {
	if limit <= 0 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("comments:popular:%d:%s", limit, period)
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			return cached.([]models.Comment), nil
		}
	}

	cutoff := time.Now().Add(-period)

	var comments []models.Comment
	err := s.db.Model(&models.Comment{}).
		Select("comments.*, COUNT(reactions.id) AS reaction_count").
		Joins("LEFT JOIN reactions ON reactions.comment_id = comments.id").
		Where("comments.status = ? AND comments.created_at >= ?", models.CommentStatusApproved, cutoff).
		Group("comments.id").
		Order("reaction_count DESC").
		Order("comments.created_at DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("rank popular comments: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, comments, popularCacheTTL)
	}

	return comments, nil
}

// CleanupOrphanedReactions deletes reactions whose comment no longer
// exists and returns the number removed. Cascade deletes should make
// this a no-op; it exists for databases migrated without the FK.
func (s *ReactionService) CleanupOrphanedReactions() (int64, error) {
	result := s.db.
		Where("NOT EXISTS (SELECT 1 FROM comments WHERE comments.id = reactions.comment_id)").
		Delete(&models.Reaction{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup reactions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// findExistingReaction looks up the identity's reaction on the comment.
// userID takes precedence over the guest fingerprint.
func findExistingReaction(tx *gorm.DB, comment *models.Comment, userID *uint, guestFingerprint string) (*models.Reaction, error) {
	query := tx.Where("comment_id = ?", comment.ID)

	switch {
	case userID != nil:
		query = query.Where("user_id = ?", *userID)
	case guestFingerprint != "":
		query = query.Where("guest_fingerprint = ?", guestFingerprint)
	default:
		return nil, nil
	}

	var reaction models.Reaction
	err := query.First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reaction: %w", err)
	}
	return &reaction, nil
}
