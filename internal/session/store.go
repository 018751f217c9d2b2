// Package session persists the authentication token and user record and
// answers the "is there an authenticated user" question every protected
// screen asks before rendering.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/picnichood/picnic-cli/internal/api"
	"github.com/picnichood/picnic-cli/internal/state"
)

const (
	keyToken = "authToken"
	keyUser  = "userData"
)

type Store struct {
	db *gorm.DB

	mu    sync.RWMutex
	token string
	user  *api.User
}

// New loads any persisted session. A row for one key without the other is
// treated as no session at all.
func New(db *gorm.DB) (*Store, error) {
	s := &Store{db: db}

	var tokenRow, userRow state.KV
	tokenErr := db.First(&tokenRow, "key = ?", keyToken).Error
	userErr := db.First(&userRow, "key = ?", keyUser).Error
	if errors.Is(tokenErr, gorm.ErrRecordNotFound) || errors.Is(userErr, gorm.ErrRecordNotFound) {
		return s, nil
	}
	if tokenErr != nil {
		return nil, fmt.Errorf("read session token: %w", tokenErr)
	}
	if userErr != nil {
		return nil, fmt.Errorf("read session user: %w", userErr)
	}

	var user api.User
	if err := json.Unmarshal([]byte(userRow.Value), &user); err != nil {
		// Corrupt user record: a token without an identity must never
		// surface, so start unauthenticated.
		return s, nil
	}
	s.token = tokenRow.Value
	s.user = &user
	return s, nil
}

// Token returns the current token, "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, nil when unauthenticated.
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Set persists token and user in one transaction and only then swaps the
// in-memory view, so readers never observe a token without a user.
func (s *Store) Set(token string, user api.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&state.KV{Key: keyToken, Value: token}).Error; err != nil {
			return err
		}
		return tx.Save(&state.KV{Key: keyUser, Value: string(raw)}).Error
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Clear removes both values; used on logout and on any 401 from the API.
func (s *Store) Clear() error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&state.KV{}, "key IN ?", []string{keyToken, keyUser}).Error
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return nil
}
