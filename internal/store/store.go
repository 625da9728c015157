package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketLikes = []byte("likes")
	bucketPrefs = []byte("prefs")
)

var keyTheme = []byte("theme")

// likedMarker is the stored value for a liked memo. Presence of the key
// is what matters; unliking deletes the key so the persisted mapping
// stays sparse.
var likedMarker = []byte("1")

// Store persists the anonymous visitor's like ledger and UI preferences
// using BoltDB. Entries are scoped to the local device; the server never
// sees this state. With an empty directory the store is memory-only,
// which tests rely on.
type Store struct {
	db *bolt.DB

	mu    sync.RWMutex
	likes map[string]bool // In-memory mirror for hot-path reads
	prefs map[string]string
}

// Open opens (or creates) the store under dir.
func Open(dir string) (*Store, error) {
	s := &Store{
		likes: make(map[string]bool),
		prefs: make(map[string]string),
	}
	if dir == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "shuzhai.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketLikes, bucketPrefs} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	s.warm()
	return s, nil
}

// warm loads the persisted ledger and prefs into the memory mirror.
func (s *Store) warm() {
	s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketLikes); b != nil {
			b.ForEach(func(k, _ []byte) error {
				s.likes[string(k)] = true
				return nil
			})
		}
		if b := tx.Bucket(bucketPrefs); b != nil {
			b.ForEach(func(k, v []byte) error {
				s.prefs[string(k)] = string(v)
				return nil
			})
		}
		return nil
	})
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Like ledger ===

// IsLiked reports whether the visitor has liked the memo. A missing
// entry means not liked.
func (s *Store) IsLiked(memoID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likes[memoID]
}

// SetLiked records or removes a like. Writes are last-write-wins; only
// one viewer session is active per device.
func (s *Store) SetLiked(memoID string, liked bool) error {
	s.mu.Lock()
	if liked {
		s.likes[memoID] = true
	} else {
		delete(s.likes, memoID)
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLikes)
		if liked {
			return b.Put([]byte(memoID), likedMarker)
		}
		return b.Delete([]byte(memoID))
	})
}

// LikedIDs returns the ids of all liked memos.
func (s *Store) LikedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.likes))
	for id := range s.likes {
		ids = append(ids, id)
	}
	return ids
}

// === Preferences ===

// Theme returns the persisted theme name, or "" if none was saved.
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs[string(keyTheme)]
}

// SaveTheme persists the theme preference.
func (s *Store) SaveTheme(theme string) error {
	s.mu.Lock()
	s.prefs[string(keyTheme)] = theme
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPrefs).Put(keyTheme, []byte(theme))
	})
}
