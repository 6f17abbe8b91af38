package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/discussion-system/discussion-system/internal/models"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) WithTx(tx *gorm.DB) *CommentRepository {
	return &CommentRepository{db: tx}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("User", "Discussion", "Parent", "Likes").Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Likes", orderByID("comment_likes")).
		First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// ListByDiscussion returns every comment of the discussion, replies included,
// ordered by id.
func (r *CommentRepository) ListByDiscussion(ctx context.Context, discussionID uint) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	if err := r.db.WithContext(ctx).
		Preload("Likes", orderByID("comment_likes")).
		Where("discussion_id = ?", discussionID).
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to get comments by discussion: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) UpdateText(ctx context.Context, id uint, text string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("text", text).Error; err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// DeleteSubtree removes the comment, all of its replies at any depth and the
// likes on them. Run it inside a transaction.
func (r *CommentRepository) DeleteSubtree(ctx context.Context, id uint) (int, error) {
	db := r.db.WithContext(ctx)

	ids := []uint{id}
	frontier := []uint{id}
	for len(frontier) > 0 {
		var children []uint
		if err := db.Model(&models.Comment{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return 0, fmt.Errorf("failed to collect replies: %w", err)
		}
		ids = append(ids, children...)
		frontier = children
	}

	if err := db.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete comment likes: %w", err)
	}
	if err := db.Where("id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	return len(ids), nil
}
