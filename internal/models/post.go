package models

import (
	"time"
)

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:250;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Category    string    `gorm:"size:100;not null;index" json:"category"`
	Image       Image     `gorm:"embedded;embeddedPrefix:image_" json:"image"`
	Likes       []User    `gorm:"many2many:post_likes;constraint:OnDelete:CASCADE;" json:"likes"`
	Comments    []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// 非数据库字段，读取详情时由 Markdown 渲染
	DescriptionHTML string `gorm:"-" json:"descriptionHtml,omitempty"`
}
