package models

import "time"

// Follow is a directed edge: FollowerID follows FollowedID.
// The pair is the primary key, so an edge can exist at most once.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false;check:chk_follows_not_self,follower_id <> followed_id" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followed *User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
