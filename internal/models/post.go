package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:250;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Post) TableName() string {
	return "blog_posts"
}

func (p Post) RecordID() uint { return p.ID }
func (p Post) OwnerID() uint  { return p.AuthorID }
