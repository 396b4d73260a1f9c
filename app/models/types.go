package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Post represents a blog post. A nil PublishedAt marks a draft.
type Post struct {
	ID          int        `json:"id" gorm:"primaryKey" validate:"gte=0"`
	Title       string     `json:"title" gorm:"size:200;not null" validate:"required,max=200"`
	Text        string     `json:"text" gorm:"type:text;not null" validate:"required"`
	AuthorID    int        `json:"author_id" gorm:"index;not null" validate:"required,gt=0"`
	Author      string     `json:"author" gorm:"size:50"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;index"`
	PublishedAt *time.Time `json:"published_at" gorm:"index"`
	Comments    []*Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE;" validate:"-"`
}

// Comment represents visitor feedback on a post. It is hidden from anonymous
// readers until a moderator approves it.
type Comment struct {
	ID        int       `json:"id" gorm:"primaryKey" validate:"gte=0"`
	PostID    int       `json:"post_id" gorm:"index;not null" validate:"required,gt=0"`
	Author    string    `json:"author" gorm:"size:100;not null" validate:"required,max=100"`
	Text      string    `json:"text" gorm:"type:text;not null" validate:"required"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	Approved  bool      `json:"approved" gorm:"not null;default:false"`
}

// User is an author account allowed to write posts and moderate comments.
type User struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null" validate:"required,min=3,max=50,alphanum"`
	PasswordHash string    `json:"-" gorm:"size:100;not null" validate:"required"`
	Email        string    `json:"email,omitempty" gorm:"size:255" validate:"omitempty,email"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}
