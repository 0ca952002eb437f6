package models

import "time"

// Post is a short text entry in the feed.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Content  string `gorm:"type:text;not null" json:"content"`
	AuthorID uint   `gorm:"not null;index" json:"authorId"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"author"`
	// Counts and IsLikedByUser are computed at query time, never persisted.
	CommentsCount int64     `gorm:"->;-:migration" json:"commentsCount"`
	LikesCount    int64     `gorm:"->;-:migration" json:"likesCount"`
	IsLikedByUser bool      `gorm:"->;-:migration" json:"isLikedByUser"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
