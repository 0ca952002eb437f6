package models

import "time"

// Like marks a post as liked by a user. A user likes a post at most once.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user,priority:1" json:"postId"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:RESTRICT" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user,priority:2;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
