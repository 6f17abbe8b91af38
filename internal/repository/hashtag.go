package repository

import (
	"context"
	"fmt"

	"github.com/discussion-system/discussion-system/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HashtagRepository struct {
	db *gorm.DB
}

func NewHashtagRepository(db *gorm.DB) *HashtagRepository {
	return &HashtagRepository{db: db}
}

func (r *HashtagRepository) WithTx(tx *gorm.DB) *HashtagRepository {
	return &HashtagRepository{db: tx}
}

// ResolveOrCreate returns one hashtag row per name, inserting missing ones.
// Names must already be normalized.
func (r *HashtagRepository) ResolveOrCreate(ctx context.Context, names []string) ([]models.Hashtag, error) {
	hashtags := make([]models.Hashtag, 0, len(names))
	db := r.db.WithContext(ctx)
	for _, name := range names {
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&models.Hashtag{Name: name}).Error; err != nil {
			return nil, fmt.Errorf("failed to create hashtag: %w", err)
		}

		var hashtag models.Hashtag
		if err := db.First(&hashtag, "name = ?", name).Error; err != nil {
			return nil, fmt.Errorf("failed to get hashtag: %w", err)
		}
		hashtags = append(hashtags, hashtag)
	}
	return hashtags, nil
}
