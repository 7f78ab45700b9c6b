package models

import (
	"time"

	"gorm.io/gorm"
)

var ArticleCategories = []string{
	"Constitutional Law",
	"Criminal Law",
	"Civil Rights",
	"Family Law",
	"Property Law",
	"Labor Law",
	"Consumer Rights",
	"Environmental Law",
	"Other",
}

const (
	DefaultArticleAuthor = "Legal Team"
	DefaultArticleImage  = "https://images.unsplash.com/photo-1589829545856-d10d557cf95f?w=800"
)

type Article struct {
	Model
	Title         string    `gorm:"size:200;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Summary       string    `gorm:"size:500;not null" json:"summary"`
	Category      string    `gorm:"index;not null" json:"category"`
	Tags          []string  `gorm:"type:text;serializer:json" json:"tags"`
	Author        string    `json:"author"`
	ImageURL      string    `json:"imageUrl"`
	ReadTime      int       `gorm:"default:5" json:"readTime"` // minutes
	Views         int       `gorm:"default:0" json:"views"`
	Likes         int       `gorm:"default:0" json:"likes"`
	Published     bool      `gorm:"index" json:"published"`
	PublishedDate time.Time `gorm:"index" json:"publishedDate"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.Author == "" {
		a.Author = DefaultArticleAuthor
	}
	if a.ImageURL == "" {
		a.ImageURL = DefaultArticleImage
	}
	if a.ReadTime == 0 {
		a.ReadTime = 5
	}
	if a.PublishedDate.IsZero() {
		a.PublishedDate = time.Now()
	}
	return nil
}
