package services

import (
	"strings"
	"testing"
	"time"

	"commentkit/internal/cache"
	"commentkit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFingerprint = strings.Repeat("ab", 32)

func reactionCount(t *testing.T, svc *ReactionService, commentID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, svc.db.Model(&models.Reaction{}).Where("comment_id = ?", commentID).Count(&count).Error)
	return count
}

func TestToggleReactionUnapprovedComment(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)

	comment := createComment(t, conn, models.CommentStatusPending)

	_, err := svc.ToggleReaction(comment, models.ReactionTypeLike, testFingerprint, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "comment", verr.Field)
}

func TestToggleReactionIdentityRequired(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)

	comment := createComment(t, conn, models.CommentStatusApproved)

	var verr *ValidationError

	_, err := svc.ToggleReaction(comment, models.ReactionTypeLike, "", nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user", verr.Field)

	_, err = svc.ToggleReaction(comment, models.ReactionTypeLike, "not-a-fingerprint", nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "fingerprint", verr.Field)
}

func TestToggleReactionLifecycle(t *testing.T) {
	conn := newTestDB(t)
	notifier := NewNotifier()

	var events []Event
	notifier.Subscribe(func(e Event) { events = append(events, e) })

	svc := NewReactionService(conn, notifier, nil)
	comment := createComment(t, conn, models.CommentStatusApproved)

	// Create.
	reaction, err := svc.ToggleReaction(comment, models.ReactionTypeLike, testFingerprint, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionTypeLike, reaction.Type)
	require.NotNil(t, reaction.GuestFingerprint)
	assert.Equal(t, testFingerprint, *reaction.GuestFingerprint)
	assert.True(t, reaction.IsGuest())
	assert.EqualValues(t, 1, reactionCount(t, svc, comment.ID))
	require.Len(t, events, 1)
	assert.Equal(t, EventReactionToggled, events[0].Name)

	// Different type updates in place.
	updated, err := svc.ToggleReaction(comment, models.ReactionTypeDislike, testFingerprint, nil)
	require.NoError(t, err)
	assert.Equal(t, reaction.ID, updated.ID)
	assert.Equal(t, models.ReactionTypeDislike, updated.Type)
	assert.EqualValues(t, 1, reactionCount(t, svc, comment.ID))
	assert.Len(t, events, 2)

	// Same type removes; removal emits no event.
	removed, err := svc.ToggleReaction(comment, models.ReactionTypeDislike, testFingerprint, nil)
	require.NoError(t, err)
	assert.Equal(t, reaction.ID, removed.ID)
	assert.EqualValues(t, 0, reactionCount(t, svc, comment.ID))
	assert.Len(t, events, 2)
}

func TestToggleReactionDoubleToggleNetsToNothing(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)
	comment := createComment(t, conn, models.CommentStatusApproved)
	user := createUser(t, conn, "alice")

	_, err := svc.ToggleReaction(comment, models.ReactionTypeLike, "", &user.ID)
	require.NoError(t, err)
	_, err = svc.ToggleReaction(comment, models.ReactionTypeLike, "", &user.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 0, reactionCount(t, svc, comment.ID))
}

func TestToggleReactionIdentityPrecedence(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)
	comment := createComment(t, conn, models.CommentStatusApproved)
	user := createUser(t, conn, "alice")

	// A user reaction and a guest reaction are distinct identities.
	userReaction, err := svc.ToggleReaction(comment, models.ReactionTypeLike, "", &user.ID)
	require.NoError(t, err)
	guestReaction, err := svc.ToggleReaction(comment, models.ReactionTypeDislike, testFingerprint, nil)
	require.NoError(t, err)

	assert.NotEqual(t, userReaction.ID, guestReaction.ID)
	assert.EqualValues(t, 2, reactionCount(t, svc, comment.ID))

	// With both user id and fingerprint supplied, the user id wins: the
	// user's like toggles off, the guest row stays.
	_, err = svc.ToggleReaction(comment, models.ReactionTypeLike, testFingerprint, &user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, reactionCount(t, svc, comment.ID))

	remaining, err := svc.GetUserReaction(comment, testFingerprint, nil)
	require.NoError(t, err)
	require.NotNil(t, remaining)
	assert.Equal(t, models.ReactionTypeDislike, remaining.Type)
}

func TestRemoveAndDetachReaction(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)
	comment := createComment(t, conn, models.CommentStatusApproved)

	reaction, err := svc.ToggleReaction(comment, models.ReactionTypeLike, testFingerprint, nil)
	require.NoError(t, err)

	removed, err := svc.RemoveReaction(reaction)
	require.NoError(t, err)
	assert.Equal(t, reaction.ID, removed.ID)
	assert.EqualValues(t, 0, reactionCount(t, svc, comment.ID))

	_, err = svc.ToggleReaction(comment, models.ReactionTypeLike, testFingerprint, nil)
	require.NoError(t, err)
	require.NoError(t, svc.DetachReaction(comment, testFingerprint))
	assert.EqualValues(t, 0, reactionCount(t, svc, comment.ID))
}

func TestGetReactionStats(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)
	comment := createComment(t, conn, models.CommentStatusApproved)

	// No reactions: all zero.
	stats, err := svc.GetReactionStats(comment)
	require.NoError(t, err)
	assert.Equal(t, ReactionStats{}, stats)

	for i := 0; i < 3; i++ {
		user := createUser(t, conn, "liker"+strings.Repeat("x", i))
		_, err := svc.ToggleReaction(comment, models.ReactionTypeLike, "", &user.ID)
		require.NoError(t, err)
	}
	_, err = svc.ToggleReaction(comment, models.ReactionTypeDislike, testFingerprint, nil)
	require.NoError(t, err)

	stats, err = svc.GetReactionStats(comment)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Likes)
	assert.EqualValues(t, 1, stats.Dislikes)
	assert.Equal(t, stats.Likes+stats.Dislikes, stats.Total)
}

func TestGetReactionStatsForComments(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)

	liked := createComment(t, conn, models.CommentStatusApproved)
	bare := createComment(t, conn, models.CommentStatusApproved)

	user := createUser(t, conn, "alice")
	_, err := svc.ToggleReaction(liked, models.ReactionTypeLike, "", &user.ID)
	require.NoError(t, err)
	_, err = svc.ToggleReaction(liked, models.ReactionTypeDislike, testFingerprint, nil)
	require.NoError(t, err)

	stats, err := svc.GetReactionStatsForComments([]models.Comment{*liked, *bare})
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, ReactionStats{Likes: 1, Dislikes: 1, Total: 2}, stats[liked.ID])
	assert.Equal(t, ReactionStats{}, stats[bare.ID])

	empty, err := svc.GetReactionStatsForComments(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetUserReaction(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)
	comment := createComment(t, conn, models.CommentStatusApproved)

	none, err := svc.GetUserReaction(comment, testFingerprint, nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = svc.ToggleReaction(comment, models.ReactionTypeLike, testFingerprint, nil)
	require.NoError(t, err)

	got, err := svc.GetUserReaction(comment, testFingerprint, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.ReactionTypeLike, got.Type)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetCommentReactionsPagination(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)
	comment := createComment(t, conn, models.CommentStatusApproved)

	var ids []uint
	for i := 0; i < 3; i++ {
		user := createUser(t, conn, "reactor"+strings.Repeat("x", i))
		reaction, err := svc.ToggleReaction(comment, models.ReactionTypeLike, "", &user.ID)
		require.NoError(t, err)
		conn.Model(reaction).UpdateColumn("created_at", time.Now().Add(-time.Duration(3-i)*time.Hour))
		ids = append(ids, reaction.ID)
	}

	// Newest first.
	page, err := svc.GetCommentReactions(comment, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	rest, err := svc.GetCommentReactions(comment, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
}

func TestGetReactionsByType(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)
	comment := createComment(t, conn, models.CommentStatusApproved)

	user := createUser(t, conn, "alice")
	_, err := svc.ToggleReaction(comment, models.ReactionTypeLike, "", &user.ID)
	require.NoError(t, err)
	_, err = svc.ToggleReaction(comment, models.ReactionTypeDislike, testFingerprint, nil)
	require.NoError(t, err)

	grouped, err := svc.GetReactionsByType(comment)
	require.NoError(t, err)
	assert.Len(t, grouped[models.ReactionTypeLike], 1)
	assert.Len(t, grouped[models.ReactionTypeDislike], 1)
}

func TestBulkToggleReactions(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)

	first := createComment(t, conn, models.CommentStatusApproved)
	second := createComment(t, conn, models.CommentStatusApproved)

	results := svc.BulkToggleReactions([]uint{first.ID, second.ID, 999}, models.ReactionTypeLike, testFingerprint, nil)

	require.Len(t, results, 3)
	assert.True(t, results[first.ID].Success)
	require.NotNil(t, results[first.ID].Reaction)
	assert.True(t, results[second.ID].Success)
	assert.False(t, results[999].Success)
	assert.NotEmpty(t, results[999].Error)

	// A failing id does not roll back the others.
	assert.EqualValues(t, 1, reactionCount(t, svc, first.ID))
	assert.EqualValues(t, 1, reactionCount(t, svc, second.ID))
}

func TestGetPopularComments(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)

	popular := createComment(t, conn, models.CommentStatusApproved)
	quiet := createComment(t, conn, models.CommentStatusApproved)
	stale := createComment(t, conn, models.CommentStatusApproved)
	createComment(t, conn, models.CommentStatusPending)
	backdate(conn, stale, 30*24*time.Hour)

	for i := 0; i < 2; i++ {
		user := createUser(t, conn, "fan"+strings.Repeat("x", i))
		_, err := svc.ToggleReaction(popular, models.ReactionTypeLike, "", &user.ID)
		require.NoError(t, err)
	}

	comments, err := svc.GetPopularComments(10, 7*24*time.Hour)
	require.NoError(t, err)

	require.Len(t, comments, 2) // stale outside period, pending not approved
	assert.Equal(t, popular.ID, comments[0].ID)
	assert.Equal(t, quiet.ID, comments[1].ID)
}

func TestGetPopularCommentsCaching(t *testing.T) {
	conn := newTestDB(t)
	c, err := cache.New(16)
	require.NoError(t, err)
	svc := NewReactionService(conn, nil, c)

	createComment(t, conn, models.CommentStatusApproved)

	first, err := svc.GetPopularComments(5, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// New rows do not show up until the cache entry expires.
	createComment(t, conn, models.CommentStatusApproved)
	cached, err := svc.GetPopularComments(5, 24*time.Hour)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// A different limit is a different cache key.
	fresh, err := svc.GetPopularComments(6, 24*time.Hour)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestCleanupOrphanedReactions(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReactionService(conn, nil, nil)

	comment := createComment(t, conn, models.CommentStatusApproved)
	_, err := svc.ToggleReaction(comment, models.ReactionTypeLike, testFingerprint, nil)
	require.NoError(t, err)

	// sqlite does not enforce the FK here, so an orphan can be forged.
	require.NoError(t, conn.Exec(
		"INSERT INTO reactions (comment_id, guest_fingerprint, type, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		99999, strings.Repeat("cd", 32), "like", time.Now(), time.Now(),
	).Error)

	deleted, err := svc.CleanupOrphanedReactions()
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.EqualValues(t, 1, reactionCount(t, svc, comment.ID))
}
