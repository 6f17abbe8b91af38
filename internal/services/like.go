package services

import (
	"context"

	"github.com/discussion-system/discussion-system/internal/models"
	"github.com/discussion-system/discussion-system/internal/repository"
	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/discussion-system/discussion-system/pkg/queue"
	"gorm.io/gorm"
)

// LikeService handles likes on discussions and comments. Liking twice or
// unliking something not liked is a no-op.
type LikeService struct {
	db             *repository.Database
	discussionRepo *repository.DiscussionRepository
	commentRepo    *repository.CommentRepository
	likeRepo       *repository.LikeRepository
	producer       queue.Publisher
	logger         *logger.Logger
}

func NewLikeService(db *repository.Database, discussionRepo *repository.DiscussionRepository, commentRepo *repository.CommentRepository, likeRepo *repository.LikeRepository, producer queue.Publisher, logger *logger.Logger) *LikeService {
	return &LikeService{
		db:             db,
		discussionRepo: discussionRepo,
		commentRepo:    commentRepo,
		likeRepo:       likeRepo,
		producer:       producer,
		logger:         logger,
	}
}

func (s *LikeService) LikeDiscussion(ctx context.Context, actor *models.User, discussionID uint) error {
	err := s.withDiscussion(ctx, discussionID, func(tx *gorm.DB) error {
		return s.likeRepo.WithTx(tx).LikeDiscussion(ctx, actor.ID, discussionID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.producer, s.logger, actor.ID, queue.NewEvent(queue.EventDiscussionLiked, queue.LikeEventData{
		UserID:       actor.ID,
		DiscussionID: discussionID,
	}))

	s.logger.WithFields(map[string]interface{}{
		"user_id":       actor.ID,
		"discussion_id": discussionID,
	}).Info("Discussion liked successfully")
	return nil
}

func (s *LikeService) UnlikeDiscussion(ctx context.Context, actor *models.User, discussionID uint) error {
	err := s.withDiscussion(ctx, discussionID, func(tx *gorm.DB) error {
		return s.likeRepo.WithTx(tx).UnlikeDiscussion(ctx, actor.ID, discussionID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.producer, s.logger, actor.ID, queue.NewEvent(queue.EventDiscussionUnliked, queue.LikeEventData{
		UserID:       actor.ID,
		DiscussionID: discussionID,
	}))

	s.logger.WithFields(map[string]interface{}{
		"user_id":       actor.ID,
		"discussion_id": discussionID,
	}).Info("Discussion unliked successfully")
	return nil
}

func (s *LikeService) LikeComment(ctx context.Context, actor *models.User, commentID uint) error {
	err := s.withComment(ctx, commentID, func(tx *gorm.DB) error {
		return s.likeRepo.WithTx(tx).LikeComment(ctx, actor.ID, commentID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.producer, s.logger, actor.ID, queue.NewEvent(queue.EventCommentLiked, queue.LikeEventData{
		UserID:    actor.ID,
		CommentID: commentID,
	}))

	s.logger.WithFields(map[string]interface{}{
		"user_id":    actor.ID,
		"comment_id": commentID,
	}).Info("Comment liked successfully")
	return nil
}

func (s *LikeService) UnlikeComment(ctx context.Context, actor *models.User, commentID uint) error {
	err := s.withComment(ctx, commentID, func(tx *gorm.DB) error {
		return s.likeRepo.WithTx(tx).UnlikeComment(ctx, actor.ID, commentID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.producer, s.logger, actor.ID, queue.NewEvent(queue.EventCommentUnliked, queue.LikeEventData{
		UserID:    actor.ID,
		CommentID: commentID,
	}))

	s.logger.WithFields(map[string]interface{}{
		"user_id":    actor.ID,
		"comment_id": commentID,
	}).Info("Comment unliked successfully")
	return nil
}

func (s *LikeService) withDiscussion(ctx context.Context, discussionID uint, fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		discussion, err := s.discussionRepo.WithTx(tx).GetByID(ctx, discussionID)
		if err != nil {
			return err
		}
		if discussion == nil {
			return ErrDiscussionNotFound
		}
		return fn(tx)
	})
}

func (s *LikeService) withComment(ctx context.Context, commentID uint, fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		comment, err := s.commentRepo.WithTx(tx).GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment == nil {
			return ErrCommentNotFound
		}
		return fn(tx)
	})
}
