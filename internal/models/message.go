package models

import "time"

// MaxMessageLength is the longest message text accepted, in characters.
const MaxMessageLength = 140

// Message is a short post owned by its author.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:140;not null" json:"text"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Liked reports whether the requesting user liked this message (computed)
	Liked bool `gorm:"-" json:"liked"`
}

// TableName specifies the table name for GORM
func (Message) TableName() string {
	return "messages"
}
