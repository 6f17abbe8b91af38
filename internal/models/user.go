package models

import (
	"time"
)

type User struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	Name           string       `json:"name" gorm:"size:255;index;not null"`
	Email          string       `json:"email" gorm:"size:255;uniqueIndex;not null"`
	MobileNo       string       `json:"mobile_no" gorm:"size:15;uniqueIndex;not null"`
	HashedPassword string       `json:"-" gorm:"size:255;not null"`
	CreatedAt      time.Time    `json:"-"`
	Discussions    []Discussion `json:"discussions" gorm:"foreignKey:UserID"`

	// Filled on the detail endpoint only.
	FollowersCount *int64 `json:"followers_count,omitempty" gorm:"-"`
	FollowingCount *int64 `json:"following_count,omitempty" gorm:"-"`
}

// Follow is a directed edge: FollowerID follows FollowedID.
type Follow struct {
	FollowerID uint      `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint      `json:"followed_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time `json:"created_at"`

	Follower *User `json:"-" gorm:"foreignKey:FollowerID"`
	Followed *User `json:"-" gorm:"foreignKey:FollowedID"`
}

func (User) TableName() string {
	return "users"
}

func (Follow) TableName() string {
	return "followers"
}
