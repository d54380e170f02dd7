package models

import "time"

// Follow represents a directed follow relationship (follower receives followee's activity)
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_followee"`
	FolloweeID uint      `json:"followee_id" gorm:"index;uniqueIndex:idx_follower_followee"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowActionRequest is the body of the follow toggle endpoint
type FollowActionRequest struct {
	ID     uint   `json:"id" validate:"required"`
	Action string `json:"action" validate:"required,oneof=follow unfollow"`
}
