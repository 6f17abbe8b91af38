package handlers

import (
	"net/http"

	"github.com/discussion-system/discussion-system/internal/middleware"
	"github.com/discussion-system/discussion-system/internal/services"
	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/discussion-system/discussion-system/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService *services.CommentService
	likeService    *services.LikeService
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

func NewCommentHandler(commentService *services.CommentService, likeService *services.LikeService, metrics *metrics.Metrics, logger *logger.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		likeService:    likeService,
		metrics:        metrics,
		logger:         logger,
	}
}

// RegisterRoutes mounts the comment routes; all of them need auth.
func (h *CommentHandler) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	comments := r.Group("/comments", auth)
	{
		comments.POST("/:id/reply", h.Reply)
		comments.PUT("/:id", h.Update)
		comments.DELETE("/:id", h.Delete)
		comments.POST("/:id/like", h.Like)
		comments.DELETE("/:id/like", h.Unlike)
	}
}

func (h *CommentHandler) Reply(c *gin.Context) {
	parentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Reply(c.Request.Context(), middleware.GetCurrentUser(c), parentID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.metrics.CommentsCreated.Inc()
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), middleware.GetCurrentUser(c), commentID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), middleware.GetCurrentUser(c), commentID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, true)
}

func (h *CommentHandler) Like(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.likeService.LikeComment(c.Request.Context(), middleware.GetCurrentUser(c), commentID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment liked successfully"})
}

func (h *CommentHandler) Unlike(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.likeService.UnlikeComment(c.Request.Context(), middleware.GetCurrentUser(c), commentID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment unliked successfully"})
}
