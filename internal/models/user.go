// Package models contains data structures for the application's domain models.
package models

import "time"

const (
	// DefaultImageURL is used when a user has no profile image.
	DefaultImageURL = "/static/images/default-pic.png"
	// DefaultHeaderImageURL is used when a user has no header image.
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a registered account.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null;size:30" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	ImageURL       string    `gorm:"default:'/static/images/default-pic.png'" json:"image_url"`
	HeaderImageURL string    `gorm:"default:'/static/images/warbler-hero.jpg'" json:"header_image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:UserID" json:"messages,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
