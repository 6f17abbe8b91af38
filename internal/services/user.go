package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/discussion-system/discussion-system/internal/models"
	"github.com/discussion-system/discussion-system/internal/repository"
	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/discussion-system/discussion-system/pkg/password"
	"github.com/discussion-system/discussion-system/pkg/queue"
	"github.com/discussion-system/discussion-system/pkg/token"
	"gorm.io/gorm"
)

type UserService struct {
	db         *repository.Database
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	likeRepo   *repository.LikeRepository
	hasher     *password.Hasher
	tokens     *token.Manager
	guard      LoginGuard
	producer   queue.Publisher
	logger     *logger.Logger
}

func NewUserService(db *repository.Database, userRepo *repository.UserRepository, followRepo *repository.FollowRepository, likeRepo *repository.LikeRepository, hasher *password.Hasher, tokens *token.Manager, guard LoginGuard, producer queue.Publisher, logger *logger.Logger) *UserService {
	return &UserService{
		db:         db,
		userRepo:   userRepo,
		followRepo: followRepo,
		likeRepo:   likeRepo,
		hasher:     hasher,
		tokens:     tokens,
		guard:      guard,
		producer:   producer,
		logger:     logger,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	MobileNo string `json:"mobile_no" binding:"required,max=15"`
	Password string `json:"password" binding:"required,max=72"`
}

func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	mobileNo := strings.TrimSpace(req.MobileNo)

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailRegistered
	}

	existingUser, err = s.userRepo.GetByMobileNo(ctx, mobileNo)
	if err != nil {
		return nil, fmt.Errorf("failed to check mobile number: %w", err)
	}
	if existingUser != nil {
		return nil, ErrMobileRegistered
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		MobileNo:       mobileNo,
		HashedPassword: hashedPassword,
		Discussions:    []models.Discussion{},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.registrationConflict(ctx, email, mobileNo)
		}
		return nil, err
	}

	publish(ctx, s.producer, s.logger, user.ID, queue.NewEvent(queue.EventUserCreated, queue.UserEventData{
		UserID: user.ID,
		Name:   user.Name,
	}))

	s.logger.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

// registrationConflict names the unique key a failed insert collided with.
func (s *UserService) registrationConflict(ctx context.Context, email, mobileNo string) error {
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return ErrEmailRegistered
	}
	if existing, err := s.userRepo.GetByMobileNo(ctx, mobileNo); err == nil && existing != nil {
		return ErrMobileRegistered
	}
	return ErrAlreadyRegistered
}

// Login checks the credentials and issues a bearer token whose subject is
// the user's email.
func (s *UserService) Login(ctx context.Context, email, pw string) (string, error) {
	allowed, err := s.guard.Allow(ctx, email)
	if err != nil {
		s.logger.WithError(err).Warn("Login guard unavailable")
	}
	if !allowed {
		return "", ErrLoginLocked
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	var verified bool
	if user == nil {
		s.hasher.VerifyDummy(pw)
	} else {
		verified = s.hasher.Verify(pw, user.HashedPassword)
	}
	if !verified {
		if err := s.guard.RecordFailure(ctx, email); err != nil {
			s.logger.WithError(err).Warn("Failed to record login failure")
		}
		return "", ErrBadCredentials
	}

	if err := s.guard.Reset(ctx, email); err != nil {
		s.logger.WithError(err).Warn("Failed to reset login failures")
	}

	accessToken, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", err
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in successfully")
	return accessToken, nil
}

// TokenTTL is how long an issued token stays valid.
func (s *UserService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Authenticate resolves a bearer token to its user.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	subject, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID returns the user with their discussions and follow counts.
func (s *UserService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetWithDiscussions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FollowersCount = &followers
	user.FollowingCount = &following

	if err := s.fillLikeCounts(ctx, []*models.User{user}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return users, s.fillLikeCounts(ctx, users)
}

func (s *UserService) SearchByName(ctx context.Context, name string, offset, limit int) ([]*models.User, error) {
	users, err := s.userRepo.SearchByName(ctx, strings.TrimSpace(name), offset, limit)
	if err != nil {
		return nil, err
	}
	return users, s.fillLikeCounts(ctx, users)
}

// Follow makes followerID follow followedID and returns the follower.
// Following someone twice is a no-op.
func (s *UserService) Follow(ctx context.Context, actor *models.User, followerID, followedID uint) (*models.User, error) {
	if err := RequireSelf(actor, followerID); err != nil {
		return nil, err
	}
	if followerID == followedID {
		return nil, ErrSelfFollow
	}

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		target, err := s.userRepo.WithTx(tx).GetByID(ctx, followedID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrUserNotFound
		}
		return s.followRepo.WithTx(tx).Create(ctx, &models.Follow{
			FollowerID: followerID,
			FollowedID: followedID,
		})
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.producer, s.logger, followerID, queue.NewEvent(queue.EventFollowCreated, queue.FollowEventData{
		FollowerID: followerID,
		FollowedID: followedID,
	}))

	s.logger.WithFields(map[string]interface{}{
		"follower_id": followerID,
		"followed_id": followedID,
	}).Info("User followed successfully")

	return s.GetByID(ctx, followerID)
}

// Unfollow removes the follow edge if present and returns the follower.
func (s *UserService) Unfollow(ctx context.Context, actor *models.User, followerID, followedID uint) (*models.User, error) {
	if err := RequireSelf(actor, followerID); err != nil {
		return nil, err
	}

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		target, err := s.userRepo.WithTx(tx).GetByID(ctx, followedID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrUserNotFound
		}
		return s.followRepo.WithTx(tx).Delete(ctx, followerID, followedID)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.producer, s.logger, followerID, queue.NewEvent(queue.EventFollowDeleted, queue.FollowEventData{
		FollowerID: followerID,
		FollowedID: followedID,
	}))

	s.logger.WithFields(map[string]interface{}{
		"follower_id": followerID,
		"followed_id": followedID,
	}).Info("User unfollowed successfully")

	return s.GetByID(ctx, followerID)
}

func (s *UserService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followedID)
}

func (s *UserService) GetFollowers(ctx context.Context, userID uint, offset, limit int) ([]*models.User, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.GetFollowers(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return users, s.fillLikeCounts(ctx, users)
}

func (s *UserService) GetFollowing(ctx context.Context, userID uint, offset, limit int) ([]*models.User, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.GetFollowing(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return users, s.fillLikeCounts(ctx, users)
}

func (s *UserService) ensureUser(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}

// fillLikeCounts sets like_count on the discussions preloaded with each user.
func (s *UserService) fillLikeCounts(ctx context.Context, users []*models.User) error {
	var ids []uint
	for _, u := range users {
		for i := range u.Discussions {
			ids = append(ids, u.Discussions[i].ID)
		}
	}
	counts, err := s.likeRepo.CountByDiscussionIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, u := range users {
		for i := range u.Discussions {
			u.Discussions[i].LikeCount = counts[u.Discussions[i].ID]
		}
	}
	return nil
}
