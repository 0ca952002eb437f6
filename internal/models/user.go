// Package models contains data structures for the application's domain models.
package models

import "time"

// User is a locally provisioned account bound to an identity provider subject.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"column:auth0_id;size:255;not null;uniqueIndex:idx_users_auth0_id" json:"auth0Id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255;not null" json:"email"`
	Picture    string    `gorm:"type:text;not null" json:"picture"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
