package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
}

// IsPublished reports whether the post is visible in the published list at now.
func (p *Post) IsPublished(now time.Time) bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(now)
}

// IsDraft reports whether the post has never been published.
func (p *Post) IsDraft() bool {
	return p.PublishedAt == nil
}

// Publish stamps the post as published at now. Publishing again re-stamps it.
func (p *Post) Publish(now time.Time) {
	p.PublishedAt = &now
}

// AddComment attaches a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	p.Comments = append(p.Comments, comment)
	return nil
}

// ApprovedComments returns only the comments a moderator has approved.
func (p *Post) ApprovedComments() []*Comment {
	var approved []*Comment
	for _, c := range p.Comments {
		if c.Approved {
			approved = append(approved, c)
		}
	}
	return approved
}
