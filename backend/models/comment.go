package models

import "time"

// Comment rows are hard-deleted together with their replies and likes.
type Comment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ArticleID uint           `gorm:"index;not null" json:"articleId"`
	UserID    uint           `gorm:"index;not null" json:"-"`
	User      *User          `json:"user,omitempty"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Replies   []CommentReply `gorm:"constraint:OnDelete:CASCADE" json:"replies"`
	Likes     []CommentLike  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type CommentReply struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CommentID uint      `gorm:"index;not null" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	User      *User     `json:"user,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentLike struct {
	ID        uint `gorm:"primarykey"`
	CommentID uint `gorm:"uniqueIndex:idx_comment_like;not null"`
	UserID    uint `gorm:"uniqueIndex:idx_comment_like;not null"`
	CreatedAt time.Time
}
