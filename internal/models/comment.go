package models

import "time"

// Comment is a reader comment attached to an article.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	AuthorID  string    `json:"-" gorm:"type:varchar(36);index;not null"`
	Author    User      `json:"author" gorm:"foreignKey:AuthorID"`
	ArticleID string    `json:"articleId" gorm:"type:varchar(36);index;not null"`
	Article   *Article  `json:"-" gorm:"foreignKey:ArticleID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
