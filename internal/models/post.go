package models

import "time"

type Post struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	AuthorID int    `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`
	GroupID  *int   `gorm:"index" json:"group_id,omitempty"`
	Group    *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Image    string `json:"image,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Text    string `json:"text" binding:"required"`
	GroupID *int   `json:"group_id"`
}

type UpdatePostRequest struct {
	Text    string `json:"text"`
	GroupID *int   `json:"group_id"`
}
