package models

import "time"

// User represents a registered author or reader.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Bio       string    `json:"bio" gorm:"type:text"`
	Image     string    `json:"image" gorm:"type:varchar(500)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	FollowerID  string    `gorm:"primaryKey;type:varchar(36)"`
	FollowingID string    `gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt   time.Time
}

// Favorite marks that UserID favorited ArticleID.
type Favorite struct {
	UserID    string    `gorm:"primaryKey;type:varchar(36)"`
	ArticleID string    `gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt time.Time
}
