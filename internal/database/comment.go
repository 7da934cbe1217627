package database

import "gorm.io/gorm"

// ForPost restricts a comment query to one post.
func ForPost(postID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("post_id = ?", postID)
	}
}
