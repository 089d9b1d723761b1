// Package store persists session data (token, device choice) across runs so
// startup can skip the full authorization flow.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketSession = []byte("session")

const (
	keyToken    = "token"
	keyDeviceID = "device_id"
)

// CachedToken is the on-disk form of a credential grant.
type CachedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// SessionStore persists session data in BoltDB, with a small in-memory cache
// for repeated reads. An empty directory selects memory-only mode.
type SessionStore struct {
	db *bolt.DB

	mu    sync.RWMutex
	cache map[string][]byte
}

// Open creates or opens the session database under dir.
func Open(dir string) (*SessionStore, error) {
	if dir == "" {
		// Memory-only mode (no persistence)
		return &SessionStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "spotify-tui.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SessionStore) get(key string, dest any) bool {
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *SessionStore) set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		return b.Put([]byte(key), data)
	})
}

func (s *SessionStore) delete(key string) {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// === Token ===

func (s *SessionStore) GetToken() (*CachedToken, bool) {
	var token CachedToken
	if !s.get(keyToken, &token) {
		return nil, false
	}
	return &token, true
}

func (s *SessionStore) SaveToken(token *CachedToken) error {
	return s.set(keyToken, token)
}

func (s *SessionStore) ClearToken() {
	s.delete(keyToken)
}

// === Device ===

func (s *SessionStore) GetDeviceID() (string, bool) {
	var id string
	if !s.get(keyDeviceID, &id) || id == "" {
		return "", false
	}
	return id, true
}

func (s *SessionStore) SaveDeviceID(id string) error {
	return s.set(keyDeviceID, id)
}
