package services

import (
	"fmt"
	"sync"
	"time"

	"inkwell/app/models"
	"inkwell/app/notify"
	"inkwell/app/repositories"

	"go.uber.org/zap"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	userRepo    repositories.UserRepository
	notifier    notify.Notifier
	log         *zap.Logger
	now         func() time.Time

	// notices in flight
	pending sync.WaitGroup
}

// NewCommentService creates a new CommentService
func NewCommentService(store *repositories.Store, notifier notify.Notifier, log *zap.Logger, now func() time.Time) *CommentService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &CommentService{
		commentRepo: store.Comments,
		postRepo:    store.Posts,
		userRepo:    store.Users,
		notifier:    notifier,
		log:         log,
		now:         now,
	}
}

// CreateComment stores a visitor comment on a post. New comments always
// start unapproved.
func (s *CommentService) CreateComment(postID int, in CommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}

	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	in.sanitize()
	if in.Text == "" {
		return nil, fieldError("text", "is required")
	}

	comment := &models.Comment{
		PostID:    post.ID,
		Author:    in.Author,
		Text:      in.Text,
		CreatedAt: s.now(),
		Approved:  false,
	}
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid comment: %w", err)
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.notify(post, comment)
	return comment, nil
}

// notify tells the post author about the pending comment. Delivery runs in
// the background so a slow mail server never holds up the visitor; failures
// are only logged.
func (s *CommentService) notify(post *models.Post, comment *models.Comment) {
	author, err := s.userRepo.GetByID(post.AuthorID)
	if err != nil {
		s.log.Warn("comment notice skipped", zap.Int("post_id", post.ID), zap.Error(err))
		return
	}
	if author.Email == "" {
		return
	}
	notice := notify.CommentNotice{
		To:        author.Email,
		PostID:    post.ID,
		PostTitle: post.Title,
		Author:    comment.Author,
		Text:      comment.Text,
	}
	commentID := comment.ID

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.notifier.CommentPosted(notice); err != nil {
			s.log.Warn("comment notice failed",
				zap.Int("post_id", notice.PostID),
				zap.Int("comment_id", commentID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every notice started so far has been handed to the notifier.
func (s *CommentService) Wait() {
	s.pending.Wait()
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(id int) (*models.Comment, error) {
	return s.commentRepo.GetByID(id)
}

// ApproveComment makes a comment visible to readers. Approving twice is harmless.
func (s *CommentService) ApproveComment(id int) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if comment.Approved {
		return comment, nil
	}

	comment.Approve()
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to approve comment %d: %w", id, err)
	}
	return comment, nil
}

// DeleteComment removes a comment and returns it so callers know its post
func (s *CommentService) DeleteComment(id int) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.commentRepo.Delete(id); err != nil {
		return nil, fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	return comment, nil
}
