// Package cache stores serialized conversions in a bbolt database so batch
// runs over unchanged submissions skip lexing, parsing and conversion.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("conversions")

// ErrNotFound is returned by Get when no entry exists for a key.
var ErrNotFound = errors.New("cache: entry not found")

// Store is the read/write surface the pipeline needs.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
}

// Cache is a Store backed by a single bbolt file. It is safe for concurrent
// use; bbolt serializes writers.
type Cache struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

// FormatVersion identifies the shape of the stored general AST. Bump it
// whenever a converter change alters the output for the same source, so
// stale entries stop matching.
const FormatVersion = "pyast-ast/2"

// Key derives the entry key of a conversion from the output format, the
// language version and the source text.
func Key(version, source string) string {
	return keyFor(FormatVersion, version, source)
}

func keyFor(format, version, source string) string {
	h := sha256.New()
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write([]byte(version))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a copy of the stored bytes for key.
func (c *Cache) Get(key string) ([]byte, error) {
	var data []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid for the life of the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

// Put stores data under key, replacing any previous entry.
func (c *Cache) Put(key string, data []byte) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), data)
	})
}

// Len reports the number of stored entries.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n, err
}

// Close releases the database file lock.
func (c *Cache) Close() error {
	return c.db.Close()
}
