package repositories

import (
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Store bundles the repositories backed by one storage engine.
type Store struct {
	Posts    PostRepository
	Comments CommentRepository
	Users    UserRepository

	close func() error
}

// Close releases the underlying storage engine.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// BadgerStore owns a Badger database and the repositories built on it.
type BadgerStore struct {
	DB       *badger.DB
	dbPath   string
	isTestDB bool
}

// OpenBadger opens the database at path. An empty path opens a throwaway
// database in a fresh temporary directory that is removed on Close.
func OpenBadger(path string) (*BadgerStore, error) {
	isTest := false
	if path == "" {
		tempPath, err := os.MkdirTemp("", "inkwell_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %w", err)
		}
		path = tempPath
		isTest = true
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if isTest {
		opts = opts.WithSyncWrites(false).WithNumVersionsToKeep(1)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	return &BadgerStore{DB: db, dbPath: path, isTestDB: isTest}, nil
}

// NewBadgerStore wraps an already open database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{DB: db}
}

// Store exposes the Badger repositories behind the common interfaces.
func (b *BadgerStore) Store() *Store {
	return &Store{
		Posts:    NewBadgerPostRepository(b.DB),
		Comments: NewBadgerCommentRepository(b.DB),
		Users:    NewBadgerUserRepository(b.DB),
		close:    b.Close,
	}
}

// Close closes the database and removes it if it was a throwaway one.
func (b *BadgerStore) Close() error {
	if err := b.DB.Close(); err != nil {
		return err
	}
	if b.isTestDB {
		if err := os.RemoveAll(b.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}

// Clear drops every key.
func (b *BadgerStore) Clear() error {
	return b.DB.DropAll()
}

// Backup writes a full backup of the database to w.
func (b *BadgerStore) Backup(w io.Writer) error {
	_, err := b.DB.Backup(w, 0)
	return err
}

// Load restores a backup produced by Backup.
func (b *BadgerStore) Load(r io.Reader) error {
	return b.DB.Load(r, 4)
}
