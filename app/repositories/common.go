package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

var (
	// ErrNotFound is returned when an identifier does not resolve to a record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique attribute is already taken.
	ErrConflict = errors.New("record already exists")
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix         = "post:"
	CommentKeyPrefix      = "comment:"
	CommentIndexKeyPrefix = "commentidx:"
	UserKeyPrefix         = "user:"
	UsernameKeyPrefix     = "username:"

	// Sequence keys for auto-incrementing IDs
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
	UserSeqKey    = "seq:user"
)

func postKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", PostKeyPrefix, id))
}

// commentKey groups comments under their post so a prefix scan lists them.
func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", CommentKeyPrefix, postID, id))
}

func commentPostPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%d:", CommentKeyPrefix, postID))
}

func commentIndexKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", CommentIndexKeyPrefix, id))
}

func userKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", UserKeyPrefix, id))
}

func usernameKey(username string) []byte {
	return []byte(UsernameKeyPrefix + username)
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id uint32
	item, err := txn.Get([]byte(seqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		id = 1
	case err != nil:
		return 0, fmt.Errorf("failed to get sequence %s: %w", seqKey, err)
	default:
		err = item.Value(func(val []byte) error {
			if len(val) != 4 {
				return fmt.Errorf("corrupt sequence %s", seqKey)
			}
			id = binary.BigEndian.Uint32(val) + 1
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	idBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(idBytes, id)
	if err := txn.Set([]byte(seqKey), idBytes); err != nil {
		return 0, fmt.Errorf("failed to update sequence %s: %w", seqKey, err)
	}

	return int(id), nil
}

// getEntity loads key into entity, mapping a missing key to ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// getIntValue reads an index entry holding a decimal id.
func getIntValue(txn *badger.Txn, key []byte) (int, error) {
	var id int
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	err = item.Value(func(val []byte) error {
		id, err = strconv.Atoi(string(val))
		return err
	})
	return id, err
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
