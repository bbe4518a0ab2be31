package models

import "time"

// Follow is a directed edge: UserID follows AuthorID. The composite unique
// index is what makes follow idempotent under concurrent requests; the
// application never does a check-then-insert.
type Follow struct {
	ID       int  `gorm:"primaryKey" json:"id"`
	UserID   int  `gorm:"not null;uniqueIndex:uidx_follow_pair" json:"user_id"`
	AuthorID int  `gorm:"not null;uniqueIndex:uidx_follow_pair" json:"author_id"`
	User     User `gorm:"foreignKey:UserID" json:"user"`
	Author   User `gorm:"foreignKey:AuthorID" json:"author"`

	CreatedAt time.Time `json:"created_at"`
}
