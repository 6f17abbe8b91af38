package services

import (
	"context"
	"time"

	"github.com/discussion-system/discussion-system/internal/models"
	"github.com/discussion-system/discussion-system/internal/repository"
	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/discussion-system/discussion-system/pkg/queue"
	"gorm.io/gorm"
)

type CommentService struct {
	db             *repository.Database
	discussionRepo *repository.DiscussionRepository
	commentRepo    *repository.CommentRepository
	producer       queue.Publisher
	logger         *logger.Logger
}

func NewCommentService(db *repository.Database, discussionRepo *repository.DiscussionRepository, commentRepo *repository.CommentRepository, producer queue.Publisher, logger *logger.Logger) *CommentService {
	return &CommentService{
		db:             db,
		discussionRepo: discussionRepo,
		commentRepo:    commentRepo,
		producer:       producer,
		logger:         logger,
	}
}

type CommentRequest struct {
	Text string `json:"text" binding:"required,max=500"`
}

func (s *CommentService) Create(ctx context.Context, actor *models.User, discussionID uint, req *CommentRequest) (*models.Comment, error) {
	text, err := sanitizeText(req.Text)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:         text,
		CreatedOn:    time.Now().UTC(),
		UserID:       actor.ID,
		DiscussionID: discussionID,
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		discussion, err := s.discussionRepo.WithTx(tx).GetByID(ctx, discussionID)
		if err != nil {
			return err
		}
		if discussion == nil {
			return ErrDiscussionNotFound
		}
		return s.commentRepo.WithTx(tx).Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	s.created(ctx, comment)
	return comment, nil
}

// Reply attaches a comment under parentID in the parent's discussion.
func (s *CommentService) Reply(ctx context.Context, actor *models.User, parentID uint, req *CommentRequest) (*models.Comment, error) {
	text, err := sanitizeText(req.Text)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:      text,
		CreatedOn: time.Now().UTC(),
		UserID:    actor.ID,
		ParentID:  &parentID,
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		parent, err := s.commentRepo.WithTx(tx).GetByID(ctx, parentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return ErrCommentNotFound
		}
		comment.DiscussionID = parent.DiscussionID
		return s.commentRepo.WithTx(tx).Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	s.created(ctx, comment)
	return comment, nil
}

func (s *CommentService) created(ctx context.Context, comment *models.Comment) {
	comment.Replies = []*models.Comment{}
	comment.Likes = []models.CommentLike{}

	publish(ctx, s.producer, s.logger, comment.UserID, queue.NewEvent(queue.EventCommentCreated, queue.CommentEventData{
		CommentID:    comment.ID,
		DiscussionID: comment.DiscussionID,
		UserID:       comment.UserID,
		ParentID:     comment.ParentID,
	}))

	s.logger.WithFields(map[string]interface{}{
		"comment_id":    comment.ID,
		"discussion_id": comment.DiscussionID,
		"user_id":       comment.UserID,
	}).Info("Comment created successfully")
}

// List pages through the discussion's top-level comments; each carries its
// full reply tree.
func (s *CommentService) List(ctx context.Context, discussionID uint, offset, limit int) ([]*models.Comment, error) {
	discussion, err := s.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if discussion == nil {
		return nil, ErrDiscussionNotFound
	}

	comments, err := s.commentRepo.ListByDiscussion(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	return paginate(buildCommentTree(comments), offset, limit), nil
}

func (s *CommentService) Update(ctx context.Context, actor *models.User, commentID uint, req *CommentRequest) (*models.Comment, error) {
	text, err := sanitizeText(req.Text)
	if err != nil {
		return nil, err
	}

	var comment *models.Comment
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		comments := s.commentRepo.WithTx(tx)
		var err error
		comment, err = comments.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment == nil {
			return ErrCommentNotFound
		}
		if err := RequireOwner(actor, comment, "update this comment"); err != nil {
			return err
		}
		if err := comments.UpdateText(ctx, commentID, text); err != nil {
			return err
		}
		comment.Text = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	comment.Replies = []*models.Comment{}
	s.logger.WithField("comment_id", commentID).Info("Comment updated successfully")
	return comment, nil
}

// Delete removes the comment with all of its replies.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, commentID uint) error {
	var comment *models.Comment
	var removed int
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		comments := s.commentRepo.WithTx(tx)
		var err error
		comment, err = comments.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment == nil {
			return ErrCommentNotFound
		}
		if err := RequireOwner(actor, comment, "delete this comment"); err != nil {
			return err
		}
		removed, err = comments.DeleteSubtree(ctx, commentID)
		return err
	})
	if err != nil {
		return err
	}

	publish(ctx, s.producer, s.logger, actor.ID, queue.NewEvent(queue.EventCommentDeleted, queue.CommentEventData{
		CommentID:    comment.ID,
		DiscussionID: comment.DiscussionID,
		UserID:       actor.ID,
		ParentID:     comment.ParentID,
	}))

	s.logger.WithFields(map[string]interface{}{
		"comment_id": commentID,
		"removed":    removed,
	}).Info("Comment deleted successfully")
	return nil
}
