package repository

import (
	"context"
	"fmt"

	"github.com/discussion-system/discussion-system/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores likes on both discussions and comments.
type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) WithTx(tx *gorm.DB) *LikeRepository {
	return &LikeRepository{db: tx}
}

// LikeDiscussion is a no-op when the user already likes the discussion.
func (r *LikeRepository) LikeDiscussion(ctx context.Context, userID, discussionID uint) error {
	like := &models.Like{UserID: userID, DiscussionID: discussionID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("User", "Discussion").
		Create(like).Error; err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

func (r *LikeRepository) UnlikeDiscussion(ctx context.Context, userID, discussionID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND discussion_id = ?", userID, discussionID).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

func (r *LikeRepository) LikeComment(ctx context.Context, userID, commentID uint) error {
	like := &models.CommentLike{UserID: userID, CommentID: commentID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("User").
		Create(like).Error; err != nil {
		return fmt.Errorf("failed to create comment like: %w", err)
	}
	return nil
}

func (r *LikeRepository) UnlikeComment(ctx context.Context, userID, commentID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&models.CommentLike{}).Error; err != nil {
		return fmt.Errorf("failed to delete comment like: %w", err)
	}
	return nil
}

func (r *LikeRepository) CountByDiscussionIDs(ctx context.Context, discussionIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(discussionIDs))
	if len(discussionIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		DiscussionID uint
		Count        int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("discussion_id, COUNT(*) AS count").
		Where("discussion_id IN ?", discussionIDs).
		Group("discussion_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	for _, row := range rows {
		counts[row.DiscussionID] = row.Count
	}
	return counts, nil
}
