package services

import (
	"github.com/discussion-system/discussion-system/internal/models"
)

// buildCommentTree nests comments under their parents and returns the roots.
// Input must be ordered by id; sibling order follows it. Comments whose
// parent is not in the input are treated as roots.
func buildCommentTree(comments []*models.Comment) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(comments))
	for _, c := range comments {
		c.Replies = []*models.Comment{}
		if c.Likes == nil {
			c.Likes = []models.CommentLike{}
		}
		byID[c.ID] = c
	}

	roots := []*models.Comment{}
	for _, c := range comments {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots
}

func paginate(roots []*models.Comment, offset, limit int) []*models.Comment {
	if offset >= len(roots) {
		return []*models.Comment{}
	}
	end := offset + limit
	if end > len(roots) {
		end = len(roots)
	}
	return roots[offset:end]
}
