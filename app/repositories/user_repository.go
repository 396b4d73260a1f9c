package repositories

import (
	"errors"
	"strconv"
	"strings"

	"inkwell/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// storedUser keeps the password hash, which the public JSON form omits.
type storedUser struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

func (s *storedUser) toModel() *models.User {
	user := s.User
	user.PasswordHash = s.PasswordHash
	return &user
}

// Create stores a new account. Usernames are unique case-insensitively.
func (r *BadgerUserRepository) Create(user *models.User) error {
	return r.db.Update(func(txn *badger.Txn) error {
		nameKey := usernameKey(strings.ToLower(user.Username))
		_, err := txn.Get(nameKey)
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		data, err := marshalEntity(&storedUser{User: *user, PasswordHash: user.PasswordHash})
		if err != nil {
			return err
		}
		if err := txn.Set(userKey(id), data); err != nil {
			return err
		}
		return txn.Set(nameKey, []byte(strconv.Itoa(id)))
	})
}

// GetByID retrieves an account by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var user storedUser
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, userKey(id), &user)
	})
	if err != nil {
		return nil, err
	}
	return user.toModel(), nil
}

// GetByUsername retrieves an account by its login name
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	var user storedUser
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getIntValue(txn, usernameKey(strings.ToLower(username)))
		if err != nil {
			return err
		}
		return getEntity(txn, userKey(id), &user)
	})
	if err != nil {
		return nil, err
	}
	return user.toModel(), nil
}
