package handlers

import (
	"errors"
	"net/http"

	"github.com/discussion-system/discussion-system/internal/middleware"
	"github.com/discussion-system/discussion-system/internal/services"
	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/discussion-system/discussion-system/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewUserHandler(userService *services.UserService, metrics *metrics.Metrics, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		metrics:     metrics,
		logger:      logger,
	}
}

func (h *UserHandler) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	r.POST("/token", h.Token)

	users := r.Group("/users")
	{
		users.POST("/", h.Register)
		users.GET("/", h.List)
		users.GET("/search/", h.Search)
		users.GET("/:id", h.Get)
		users.GET("/:id/followers", h.GetFollowers)
		users.GET("/:id/following", h.GetFollowing)
		users.POST("/:id/follow/:target", auth, h.Follow)
		users.POST("/:id/unfollow/:target", auth, h.Unfollow)
	}
}

type tokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Token exchanges form credentials for a bearer token. The username field
// carries the user's email.
func (h *UserHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTooManyAttempts):
			h.metrics.LoginFailure.WithLabelValues("locked").Inc()
		case errors.Is(err, services.ErrUnauthenticated):
			h.metrics.LoginFailure.WithLabelValues("bad_credentials").Inc()
		}
		respondError(c, h.logger, err)
		return
	}

	h.metrics.LoginSuccess.Inc()
	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
		"expires_in":   int64(h.userService.TokenTTL().Seconds()),
	})
}

func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.metrics.RegisterSuccess.Inc()
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) List(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	users, err := h.userService.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Search(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	users, err := h.userService.SearchByName(c.Request.Context(), c.Query("name"), offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	followers, err := h.userService.GetFollowers(c.Request.Context(), userID, offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, followers)
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	following, err := h.userService.GetFollowing(c.Request.Context(), userID, offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, following)
}

func (h *UserHandler) Follow(c *gin.Context) {
	followerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "target")
	if !ok {
		return
	}

	follower, err := h.userService.Follow(c.Request.Context(), middleware.GetCurrentUser(c), followerID, targetID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, follower)
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	followerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "target")
	if !ok {
		return
	}

	follower, err := h.userService.Unfollow(c.Request.Context(), middleware.GetCurrentUser(c), followerID, targetID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, follower)
}
