package models

import (
	"time"
)

type Discussion struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"size:1000;not null"`
	Image     *string   `json:"image" gorm:"size:255"`
	CreatedOn time.Time `json:"created_on" gorm:"not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ViewCount int64     `json:"view_count" gorm:"not null;default:0"`
	Hashtags  []Hashtag `json:"hashtags" gorm:"many2many:discussion_hashtags"`

	LikeCount int64      `json:"like_count" gorm:"-"`
	Comments  []*Comment `json:"comments,omitempty" gorm:"-"`
}

type Hashtag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:50;uniqueIndex;not null"`
}

// DiscussionHashtag is the join row behind Discussion.Hashtags.
type DiscussionHashtag struct {
	DiscussionID uint `gorm:"primaryKey;autoIncrement:false"`
	HashtagID    uint `gorm:"primaryKey;autoIncrement:false;index"`
}

type Comment struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	Text         string        `json:"text" gorm:"size:500;not null"`
	CreatedOn    time.Time     `json:"created_on" gorm:"not null"`
	UserID       uint          `json:"user_id" gorm:"not null;index"`
	DiscussionID uint          `json:"discussion_id" gorm:"not null;index"`
	ParentID     *uint         `json:"parent_id" gorm:"index"`
	Likes        []CommentLike `json:"likes" gorm:"foreignKey:CommentID"`

	User       *User       `json:"-" gorm:"foreignKey:UserID"`
	Discussion *Discussion `json:"-" gorm:"foreignKey:DiscussionID"`
	Parent     *Comment    `json:"-" gorm:"foreignKey:ParentID"`

	Replies []*Comment `json:"replies" gorm:"-"`
}

type Like struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_like_user_discussion"`
	DiscussionID uint      `json:"discussion_id" gorm:"not null;uniqueIndex:idx_like_user_discussion;index"`
	CreatedAt    time.Time `json:"-"`

	User       *User       `json:"-" gorm:"foreignKey:UserID"`
	Discussion *Discussion `json:"-" gorm:"foreignKey:DiscussionID"`
}

type CommentLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_comment_like_user_comment"`
	CommentID uint      `json:"comment_id" gorm:"not null;uniqueIndex:idx_comment_like_user_comment;index"`
	CreatedAt time.Time `json:"-"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

func (d *Discussion) OwnerID() uint {
	return d.UserID
}

func (c *Comment) OwnerID() uint {
	return c.UserID
}

func (Discussion) TableName() string {
	return "discussions"
}

func (Hashtag) TableName() string {
	return "hashtags"
}

func (DiscussionHashtag) TableName() string {
	return "discussion_hashtags"
}

func (Comment) TableName() string {
	return "comments"
}

func (Like) TableName() string {
	return "likes"
}

func (CommentLike) TableName() string {
	return "comment_likes"
}
