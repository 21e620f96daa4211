package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TagList is an ordered list of tags stored as a comma separated text column.
type TagList []string

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	return strings.Join(t, ","), nil
}

// Scan implements sql.Scanner.
func (t *TagList) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case nil:
		*t = TagList{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into TagList", src)
	}
	if s == "" {
		*t = TagList{}
		return nil
	}
	*t = strings.Split(s, ",")
	return nil
}

// Article represents a published article.
type Article struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Slug           string    `json:"slug" gorm:"uniqueIndex;type:varchar(255);not null"`
	Title          string    `json:"title" gorm:"type:varchar(255);not null"`
	Description    string    `json:"description" gorm:"type:text"`
	Body           string    `json:"body" gorm:"type:text"`
	TagList        TagList   `json:"tagList" gorm:"type:text"`
	FavoritesCount int       `json:"favoritesCount" gorm:"not null;default:0"`
	AuthorID       string    `json:"-" gorm:"type:varchar(36);index;not null"`
	Author         User      `json:"author" gorm:"foreignKey:AuthorID"`
	CreatedAt      time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Favorited bool `json:"favorited" gorm:"-"` // derived per caller
}

// Tag is a known tag name.
type Tag struct {
	Name      string `gorm:"primaryKey;type:varchar(100)"`
	CreatedAt time.Time
}
