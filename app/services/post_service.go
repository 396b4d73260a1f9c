package services

import (
	"fmt"
	"time"

	"inkwell/app/models"
	"inkwell/app/repositories"
)

// PostService handles business logic for blog posts
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	now         func() time.Time
}

// NewPostService creates a new PostService. now may be nil to use the wall clock.
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, now func() time.Time) *PostService {
	if now == nil {
		now = time.Now
	}
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		now:         now,
	}
}

// ListPublished returns the posts visible to readers, oldest publication first
func (s *PostService) ListPublished() ([]*models.Post, error) {
	posts, err := s.postRepo.ListPublished(s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}
	return posts, nil
}

// ListDrafts returns unpublished posts, oldest first
func (s *PostService) ListDrafts() ([]*models.Post, error) {
	posts, err := s.postRepo.ListDrafts()
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return posts, nil
}

// GetPost retrieves a post by ID with its comments. Unless withPending is set
// only approved comments are attached.
func (s *PostService) GetPost(id int, withPending bool) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	post.Comments = comments
	if !withPending {
		post.Comments = post.ApprovedComments()
	}
	return post, nil
}

// CreatePost stores a new draft written by actor
func (s *PostService) CreatePost(in PostInput, actor *models.User) (*models.Post, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	in.sanitize()
	if in.Text == "" {
		return nil, fieldError("text", "is required")
	}

	post := &models.Post{
		Title:     in.Title,
		Text:      in.Text,
		AuthorID:  actor.ID,
		Author:    actor.Username,
		CreatedAt: s.now(),
	}
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("invalid post: %w", err)
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// UpdatePost replaces title and text. The editing actor becomes the author;
// creation and publication times are kept.
func (s *PostService) UpdatePost(id int, in PostInput, actor *models.User) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	in.normalize()
	if err := validateInput(in); err != nil {
		return post, err
	}
	in.sanitize()
	if in.Text == "" {
		return post, fieldError("text", "is required")
	}

	post.Title = in.Title
	post.Text = in.Text
	post.AuthorID = actor.ID
	post.Author = actor.Username

	if err := s.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return post, nil
}

// PublishPost stamps the post as published now. Publishing again re-stamps it.
func (s *PostService) PublishPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	post.Publish(s.now())
	if err := s.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("failed to publish post %d: %w", id, err)
	}
	return post, nil
}

// DeletePost deletes a post and all its comments
func (s *PostService) DeletePost(id int) error {
	return s.postRepo.Delete(id)
}
