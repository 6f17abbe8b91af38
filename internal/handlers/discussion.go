package handlers

import (
	"net/http"

	"github.com/discussion-system/discussion-system/internal/middleware"
	"github.com/discussion-system/discussion-system/internal/services"
	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/discussion-system/discussion-system/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type DiscussionHandler struct {
	discussionService *services.DiscussionService
	commentService    *services.CommentService
	likeService       *services.LikeService
	metrics           *metrics.Metrics
	logger            *logger.Logger
}

func NewDiscussionHandler(discussionService *services.DiscussionService, commentService *services.CommentService, likeService *services.LikeService, metrics *metrics.Metrics, logger *logger.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		discussionService: discussionService,
		commentService:    commentService,
		likeService:       likeService,
		metrics:           metrics,
		logger:            logger,
	}
}

func (h *DiscussionHandler) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	discussions := r.Group("/discussions")
	{
		discussions.POST("/", auth, h.Create)
		discussions.GET("/", h.List)
		discussions.GET("/hashtag/:name", h.ListByHashtag)
		discussions.GET("/:id", h.Get)
		discussions.PUT("/:id", auth, h.Update)
		discussions.DELETE("/:id", auth, h.Delete)
		discussions.POST("/:id/comments/", auth, h.CreateComment)
		discussions.GET("/:id/comments/", h.ListComments)
		discussions.POST("/:id/like", auth, h.Like)
		discussions.DELETE("/:id/like", auth, h.Unlike)
		discussions.POST("/:id/view", h.View)
	}
}

func (h *DiscussionHandler) Create(c *gin.Context) {
	var req services.CreateDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	discussion, err := h.discussionService.Create(c.Request.Context(), middleware.GetCurrentUser(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.metrics.DiscussionsCreated.Inc()
	c.JSON(http.StatusCreated, discussion)
}

func (h *DiscussionHandler) List(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	discussions, err := h.discussionService.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, discussions)
}

func (h *DiscussionHandler) ListByHashtag(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	discussions, err := h.discussionService.ListByHashtag(c.Request.Context(), c.Param("name"), offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, discussions)
}

func (h *DiscussionHandler) Get(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	discussion, err := h.discussionService.Get(c.Request.Context(), discussionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, discussion)
}

func (h *DiscussionHandler) Update(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	discussion, err := h.discussionService.Update(c.Request.Context(), middleware.GetCurrentUser(c), discussionID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, discussion)
}

func (h *DiscussionHandler) Delete(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.discussionService.Delete(c.Request.Context(), middleware.GetCurrentUser(c), discussionID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, true)
}

func (h *DiscussionHandler) View(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	discussion, err := h.discussionService.IncrementViewCount(c.Request.Context(), discussionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, discussion)
}

func (h *DiscussionHandler) CreateComment(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), middleware.GetCurrentUser(c), discussionID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.metrics.CommentsCreated.Inc()
	c.JSON(http.StatusCreated, comment)
}

func (h *DiscussionHandler) ListComments(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	comments, err := h.commentService.List(c.Request.Context(), discussionID, offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *DiscussionHandler) Like(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.likeService.LikeDiscussion(c.Request.Context(), middleware.GetCurrentUser(c), discussionID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Discussion liked successfully"})
}

func (h *DiscussionHandler) Unlike(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.likeService.UnlikeDiscussion(c.Request.Context(), middleware.GetCurrentUser(c), discussionID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Discussion unliked successfully"})
}
