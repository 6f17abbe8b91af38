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

type DiscussionService struct {
	db             *repository.Database
	discussionRepo *repository.DiscussionRepository
	hashtagRepo    *repository.HashtagRepository
	commentRepo    *repository.CommentRepository
	likeRepo       *repository.LikeRepository
	producer       queue.Publisher
	logger         *logger.Logger
}

func NewDiscussionService(db *repository.Database, discussionRepo *repository.DiscussionRepository, hashtagRepo *repository.HashtagRepository, commentRepo *repository.CommentRepository, likeRepo *repository.LikeRepository, producer queue.Publisher, logger *logger.Logger) *DiscussionService {
	return &DiscussionService{
		db:             db,
		discussionRepo: discussionRepo,
		hashtagRepo:    hashtagRepo,
		commentRepo:    commentRepo,
		likeRepo:       likeRepo,
		producer:       producer,
		logger:         logger,
	}
}

type CreateDiscussionRequest struct {
	Text     string   `json:"text" binding:"required,max=1000"`
	Image    *string  `json:"image" binding:"omitempty,max=255"`
	Hashtags []string `json:"hashtags"`
}

const maxImageLength = 255

// UpdateDiscussionRequest patches text and image when present; an explicit
// null image clears it. Hashtags are always replaced, so an absent or empty
// list clears them.
type UpdateDiscussionRequest struct {
	Text     *string        `json:"text" binding:"omitempty,max=1000"`
	Image    NullableString `json:"image"`
	Hashtags []string       `json:"hashtags"`
}

func (s *DiscussionService) Create(ctx context.Context, actor *models.User, req *CreateDiscussionRequest) (*models.Discussion, error) {
	text, err := sanitizeText(req.Text)
	if err != nil {
		return nil, err
	}
	names, err := normalizeHashtags(req.Hashtags)
	if err != nil {
		return nil, err
	}

	discussion := &models.Discussion{
		Text:      text,
		Image:     req.Image,
		CreatedOn: time.Now().UTC(),
		UserID:    actor.ID,
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.discussionRepo.WithTx(tx).Create(ctx, discussion); err != nil {
			return err
		}
		return s.linkHashtags(ctx, tx, discussion.ID, names)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.producer, s.logger, actor.ID, queue.NewEvent(queue.EventDiscussionCreated, queue.DiscussionEventData{
		DiscussionID: discussion.ID,
		UserID:       actor.ID,
		Hashtags:     names,
	}))

	s.logger.WithFields(map[string]interface{}{
		"discussion_id": discussion.ID,
		"user_id":       actor.ID,
	}).Info("Discussion created successfully")

	return s.Get(ctx, discussion.ID)
}

// Get returns the discussion with its hashtags, like count and comment tree.
func (s *DiscussionService) Get(ctx context.Context, discussionID uint) (*models.Discussion, error) {
	discussion, err := s.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if discussion == nil {
		return nil, ErrDiscussionNotFound
	}

	if err := s.fillLikeCounts(ctx, []*models.Discussion{discussion}); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByDiscussion(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	discussion.Comments = buildCommentTree(comments)

	return discussion, nil
}

func (s *DiscussionService) List(ctx context.Context, offset, limit int) ([]*models.Discussion, error) {
	discussions, err := s.discussionRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if err := s.fillLikeCounts(ctx, discussions); err != nil {
		return nil, err
	}
	return discussions, nil
}

func (s *DiscussionService) ListByHashtag(ctx context.Context, name string, offset, limit int) ([]*models.Discussion, error) {
	discussions, err := s.discussionRepo.ListByHashtag(ctx, normalizeHashtag(name), offset, limit)
	if err != nil {
		return nil, err
	}
	if err := s.fillLikeCounts(ctx, discussions); err != nil {
		return nil, err
	}
	return discussions, nil
}

func (s *DiscussionService) Update(ctx context.Context, actor *models.User, discussionID uint, req *UpdateDiscussionRequest) (*models.Discussion, error) {
	fields := make(map[string]interface{})
	if req.Text != nil {
		text, err := sanitizeText(*req.Text)
		if err != nil {
			return nil, err
		}
		fields["text"] = text
	}
	if req.Image.Set {
		var image interface{}
		if v := req.Image.Value; v != nil {
			if len(*v) > maxImageLength {
				return nil, ErrImageTooLong
			}
			image = *v
		}
		fields["image"] = image
	}
	names, err := normalizeHashtags(req.Hashtags)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		discussions := s.discussionRepo.WithTx(tx)
		discussion, err := discussions.GetByID(ctx, discussionID)
		if err != nil {
			return err
		}
		if discussion == nil {
			return ErrDiscussionNotFound
		}
		if err := RequireOwner(actor, discussion, "update this discussion"); err != nil {
			return err
		}

		if err := discussions.UpdateFields(ctx, discussionID, fields); err != nil {
			return err
		}
		return s.linkHashtags(ctx, tx, discussionID, names)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.producer, s.logger, actor.ID, queue.NewEvent(queue.EventDiscussionUpdated, queue.DiscussionEventData{
		DiscussionID: discussionID,
		UserID:       actor.ID,
		Hashtags:     names,
	}))

	s.logger.WithField("discussion_id", discussionID).Info("Discussion updated successfully")
	return s.Get(ctx, discussionID)
}

// Delete removes the discussion and everything hanging off it.
func (s *DiscussionService) Delete(ctx context.Context, actor *models.User, discussionID uint) error {
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		discussions := s.discussionRepo.WithTx(tx)
		discussion, err := discussions.GetByID(ctx, discussionID)
		if err != nil {
			return err
		}
		if discussion == nil {
			return ErrDiscussionNotFound
		}
		if err := RequireOwner(actor, discussion, "delete this discussion"); err != nil {
			return err
		}
		return discussions.Delete(ctx, discussionID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.producer, s.logger, actor.ID, queue.NewEvent(queue.EventDiscussionDeleted, queue.DiscussionEventData{
		DiscussionID: discussionID,
		UserID:       actor.ID,
	}))

	s.logger.WithField("discussion_id", discussionID).Info("Discussion deleted successfully")
	return nil
}

// IncrementViewCount adds one view atomically and returns the fresh row.
func (s *DiscussionService) IncrementViewCount(ctx context.Context, discussionID uint) (*models.Discussion, error) {
	var discussion *models.Discussion
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		discussions := s.discussionRepo.WithTx(tx)
		found, err := discussions.IncrementViewCount(ctx, discussionID)
		if err != nil {
			return err
		}
		if !found {
			return ErrDiscussionNotFound
		}
		discussion, err = discussions.GetByID(ctx, discussionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.fillLikeCounts(ctx, []*models.Discussion{discussion}); err != nil {
		return nil, err
	}
	return discussion, nil
}

func (s *DiscussionService) linkHashtags(ctx context.Context, tx *gorm.DB, discussionID uint, names []string) error {
	hashtags, err := s.hashtagRepo.WithTx(tx).ResolveOrCreate(ctx, names)
	if err != nil {
		return err
	}
	ids := make([]uint, 0, len(hashtags))
	for _, h := range hashtags {
		ids = append(ids, h.ID)
	}
	return s.discussionRepo.WithTx(tx).ReplaceHashtags(ctx, discussionID, ids)
}

func (s *DiscussionService) fillLikeCounts(ctx context.Context, discussions []*models.Discussion) error {
	ids := make([]uint, 0, len(discussions))
	for _, d := range discussions {
		ids = append(ids, d.ID)
	}
	counts, err := s.likeRepo.CountByDiscussionIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, d := range discussions {
		d.LikeCount = counts[d.ID]
	}
	return nil
}
