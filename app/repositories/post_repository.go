package repositories

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"inkwell/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id
		return setPost(txn, post)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPublished retrieves posts published at or before now, oldest publication first
func (r *BadgerPostRepository) ListPublished(now time.Time) ([]*models.Post, error) {
	posts, err := r.scan(func(p *models.Post) bool { return p.IsPublished(now) })
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(posts, func(a, b *models.Post) int {
		if c := a.PublishedAt.Compare(*b.PublishedAt); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	return posts, nil
}

// ListDrafts retrieves unpublished posts, oldest first
func (r *BadgerPostRepository) ListDrafts() ([]*models.Post, error) {
	posts, err := r.scan(func(p *models.Post) bool { return p.IsDraft() })
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(posts, func(a, b *models.Post) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	return posts, nil
}

func (r *BadgerPostRepository) scan(keep func(*models.Post) bool) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if keep(&post) {
				posts = append(posts, &post)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(postKey(post.ID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return setPost(txn, post)
	})
}

// Delete deletes a post and every comment filed under it in one transaction
func (r *BadgerPostRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		var commentIDs []int
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		prefix := commentPostPrefix(id)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var postID, commentID int
			if _, err := fmt.Sscanf(string(it.Item().Key()), CommentKeyPrefix+"%d:%d", &postID, &commentID); err == nil {
				commentIDs = append(commentIDs, commentID)
			}
		}
		it.Close()

		for _, commentID := range commentIDs {
			if err := txn.Delete(commentKey(id, commentID)); err != nil {
				return err
			}
			if err := txn.Delete(commentIndexKey(commentID)); err != nil {
				return err
			}
		}

		return txn.Delete(key)
	})
}

// setPost stores the post without its comments, which live under their own keys.
func setPost(txn *badger.Txn, post *models.Post) error {
	stored := *post
	stored.Comments = nil
	data, err := marshalEntity(&stored)
	if err != nil {
		return err
	}
	return txn.Set(postKey(post.ID), data)
}
