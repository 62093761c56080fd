package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/common"
)

// Store is the credential store. Get returns (nil, nil) for a missing key;
// metadata.Repository satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Session reads and writes the credential and the cached profile.
type Session struct {
	store Store
}

func New(store Store) *Session {
	return &Session{store: store}
}

// Save stores the token and the profile returned by login or register.
func (s *Session) Save(ctx context.Context, token string, user models.User) error {
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, common.StoreKeyToken, []byte(token)); err != nil {
		return err
	}
	return s.store.Set(ctx, common.StoreKeyUser, profile)
}

// Token returns the stored token, or "" when there is none. It implements
// client.TokenSource.
func (s *Session) Token(ctx context.Context) (string, error) {
	b, err := s.store.Get(ctx, common.StoreKeyToken)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// User returns the cached profile, or nil when none is stored.
func (s *Session) User(ctx context.Context) (*models.User, error) {
	b, err := s.store.Get(ctx, common.StoreKeyUser)
	if err != nil || len(b) == 0 {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// Clear removes the token and the profile.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, common.StoreKeyToken); err != nil {
		return err
	}
	return s.store.Delete(ctx, common.StoreKeyUser)
}
