package mock

import (
	"slices"
	"strings"
	"sync"
	"time"

	"inkwell/app/models"
	"inkwell/app/repositories"
)

// data is the shared in-memory state behind the mock repositories, so a post
// delete can cascade to its comments the way the real stores do.
type data struct {
	mutex         sync.RWMutex
	posts         map[int]models.Post
	comments      map[int]models.Comment
	users         map[int]models.User
	nextPostID    int
	nextCommentID int
	nextUserID    int
}

type PostRepository struct{ d *data }

type CommentRepository struct{ d *data }

type UserRepository struct{ d *data }

// NewStore returns a repositories.Store backed entirely by memory.
func NewStore() *repositories.Store {
	d := &data{
		posts:         make(map[int]models.Post),
		comments:      make(map[int]models.Comment),
		users:         make(map[int]models.User),
		nextPostID:    1,
		nextCommentID: 1,
		nextUserID:    1,
	}
	return &repositories.Store{
		Posts:    &PostRepository{d: d},
		Comments: &CommentRepository{d: d},
		Users:    &UserRepository{d: d},
	}
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()

	post.ID = m.d.nextPostID
	m.d.nextPostID++
	stored := *post
	stored.Comments = nil
	m.d.posts[post.ID] = stored
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()

	post, exists := m.d.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &post, nil
}

func (m *PostRepository) ListPublished(now time.Time) ([]*models.Post, error) {
	posts := m.filter(func(p *models.Post) bool { return p.IsPublished(now) })
	slices.SortStableFunc(posts, func(a, b *models.Post) int {
		if c := a.PublishedAt.Compare(*b.PublishedAt); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	return posts, nil
}

func (m *PostRepository) ListDrafts() ([]*models.Post, error) {
	posts := m.filter(func(p *models.Post) bool { return p.IsDraft() })
	slices.SortStableFunc(posts, func(a, b *models.Post) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	return posts, nil
}

func (m *PostRepository) filter(keep func(*models.Post) bool) []*models.Post {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()

	posts := []*models.Post{}
	for _, post := range m.d.posts {
		post := post
		if keep(&post) {
			posts = append(posts, &post)
		}
	}
	return posts
}

func (m *PostRepository) Update(post *models.Post) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()

	if _, exists := m.d.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	stored := *post
	stored.Comments = nil
	m.d.posts[post.ID] = stored
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()

	if _, exists := m.d.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	for commentID, comment := range m.d.comments {
		if comment.PostID == id {
			delete(m.d.comments, commentID)
		}
	}
	delete(m.d.posts, id)
	return nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()

	if _, exists := m.d.posts[comment.PostID]; !exists {
		return repositories.ErrNotFound
	}
	comment.ID = m.d.nextCommentID
	m.d.nextCommentID++
	m.d.comments[comment.ID] = *comment
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()

	comment, exists := m.d.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &comment, nil
}

func (m *CommentRepository) Update(comment *models.Comment) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()

	existing, exists := m.d.comments[comment.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	comment.PostID = existing.PostID
	m.d.comments[comment.ID] = *comment
	return nil
}

func (m *CommentRepository) Delete(id int) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()

	if _, exists := m.d.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.d.comments, id)
	return nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()

	comments := []*models.Comment{}
	for _, comment := range m.d.comments {
		comment := comment
		if comment.PostID == postID {
			comments = append(comments, &comment)
		}
	}
	slices.SortFunc(comments, func(a, b *models.Comment) int { return a.ID - b.ID })
	return comments, nil
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()

	for _, existing := range m.d.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return repositories.ErrConflict
		}
	}
	user.ID = m.d.nextUserID
	m.d.nextUserID++
	m.d.users[user.ID] = *user
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()

	user, exists := m.d.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (m *UserRepository) GetByUsername(username string) (*models.User, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()

	for _, user := range m.d.users {
		if strings.EqualFold(user.Username, username) {
			return &user, nil
		}
	}
	return nil, repositories.ErrNotFound
}
