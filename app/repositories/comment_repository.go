package repositories

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"inkwell/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(postKey(comment.PostID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}

		// Save comment with post ID in key for efficient listing
		if err := txn.Set(commentKey(comment.PostID, comment.ID), data); err != nil {
			return err
		}
		return txn.Set(commentIndexKey(comment.ID), []byte(strconv.Itoa(comment.PostID)))
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		postID, err := getIntValue(txn, commentIndexKey(id))
		if err != nil {
			return err
		}
		return getEntity(txn, commentKey(postID, id), &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post in creation order
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := commentPostPrefix(postID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var comment models.Comment
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal comment: %w", err)
			}
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(comments, func(a, b *models.Comment) int { return a.ID - b.ID })
	return comments, nil
}

// Update updates an existing comment. The owning post cannot change.
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		postID, err := getIntValue(txn, commentIndexKey(comment.ID))
		if err != nil {
			return err
		}
		comment.PostID = postID

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		return txn.Set(commentKey(postID, comment.ID), data)
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		postID, err := getIntValue(txn, commentIndexKey(id))
		if err != nil {
			return err
		}
		if err := txn.Delete(commentKey(postID, id)); err != nil {
			return err
		}
		return txn.Delete(commentIndexKey(id))
	})
}
