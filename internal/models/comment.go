package models

import "time"

// Comment is immutable once created; there is no update or delete path.
type Comment struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	PostID   int    `gorm:"not null;index" json:"post_id"`
	AuthorID int    `gorm:"not null" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`

	CreatedAt time.Time `json:"created_at"`
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}
