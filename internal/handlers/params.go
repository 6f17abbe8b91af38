package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 100
	maxLimit     = 100
)

type pageQuery struct {
	Skip  int  `form:"skip"`
	Limit *int `form:"limit"`
}

// pagination reads skip and limit. Skip below zero becomes zero and limit is
// clamped to [1, 100], defaulting to 100.
func pagination(c *gin.Context) (offset, limit int, ok bool) {
	var query pageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skip and limit must be integers"})
		return 0, 0, false
	}

	offset = query.Skip
	if offset < 0 {
		offset = 0
	}

	limit = defaultLimit
	if query.Limit != nil {
		limit = *query.Limit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if limit < 1 {
		limit = 1
	}
	return offset, limit, true
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
