package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/discussion-system/discussion-system/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DiscussionRepository struct {
	db *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

func (r *DiscussionRepository) WithTx(tx *gorm.DB) *DiscussionRepository {
	return &DiscussionRepository{db: tx}
}

func (r *DiscussionRepository) Create(ctx context.Context, discussion *models.Discussion) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(discussion).Error; err != nil {
		return fmt.Errorf("failed to create discussion: %w", err)
	}
	return nil
}

func (r *DiscussionRepository) GetByID(ctx context.Context, id uint) (*models.Discussion, error) {
	var discussion models.Discussion
	if err := r.db.WithContext(ctx).
		Preload("Hashtags", orderByID("hashtags")).
		First(&discussion, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get discussion: %w", err)
	}
	return &discussion, nil
}

func (r *DiscussionRepository) List(ctx context.Context, offset, limit int) ([]*models.Discussion, error) {
	discussions := []*models.Discussion{}
	if err := r.db.WithContext(ctx).
		Preload("Hashtags", orderByID("hashtags")).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&discussions).Error; err != nil {
		return nil, fmt.Errorf("failed to list discussions: %w", err)
	}
	return discussions, nil
}

func (r *DiscussionRepository) ListByHashtag(ctx context.Context, name string, offset, limit int) ([]*models.Discussion, error) {
	discussions := []*models.Discussion{}
	if err := r.db.WithContext(ctx).
		Select("discussions.*").
		Preload("Hashtags", orderByID("hashtags")).
		Joins("JOIN discussion_hashtags ON discussion_hashtags.discussion_id = discussions.id").
		Joins("JOIN hashtags ON hashtags.id = discussion_hashtags.hashtag_id").
		Where("hashtags.name = ?", name).
		Order("discussions.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&discussions).Error; err != nil {
		return nil, fmt.Errorf("failed to list discussions by hashtag: %w", err)
	}
	return discussions, nil
}

// UpdateFields patches the given columns only.
func (r *DiscussionRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Discussion{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update discussion: %w", err)
	}
	return nil
}

// ReplaceHashtags swaps the discussion's hashtag links for hashtagIDs.
func (r *DiscussionRepository) ReplaceHashtags(ctx context.Context, discussionID uint, hashtagIDs []uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("discussion_id = ?", discussionID).
		Delete(&models.DiscussionHashtag{}).Error; err != nil {
		return fmt.Errorf("failed to clear hashtags: %w", err)
	}
	if len(hashtagIDs) == 0 {
		return nil
	}

	links := make([]models.DiscussionHashtag, 0, len(hashtagIDs))
	for _, hashtagID := range hashtagIDs {
		links = append(links, models.DiscussionHashtag{DiscussionID: discussionID, HashtagID: hashtagID})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link hashtags: %w", err)
	}
	return nil
}

// IncrementViewCount bumps view_count in SQL and reports whether the row exists.
func (r *DiscussionRepository) IncrementViewCount(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Discussion{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return false, fmt.Errorf("failed to increment view count: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Delete removes the discussion together with its hashtag links, likes,
// comments and comment likes. Run it inside a transaction.
func (r *DiscussionRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	commentIDs := db.Model(&models.Comment{}).Select("id").Where("discussion_id = ?", id)

	if err := db.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
		return fmt.Errorf("failed to delete comment likes: %w", err)
	}
	if err := db.Where("discussion_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	if err := db.Where("discussion_id = ?", id).Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete likes: %w", err)
	}
	if err := db.Where("discussion_id = ?", id).Delete(&models.DiscussionHashtag{}).Error; err != nil {
		return fmt.Errorf("failed to delete hashtag links: %w", err)
	}
	if err := db.Delete(&models.Discussion{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete discussion: %w", err)
	}
	return nil
}

func orderByID(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id ASC")
	}
}
