// Package auth issues and validates session tokens. Credentials live in
// the backend ERP; this layer only checks that the configured API key
// resolves to a real user and hands out an opaque session token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thiop/delivery/internal/domain"
	"github.com/thiop/delivery/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("backend rejected the configured credentials")
	ErrInvalidSession     = errors.New("unknown or expired session token")
)

// UserVerifier is the slice of the JSON-RPC gateway auth needs.
type UserVerifier interface {
	VerifyAPIKey(ctx context.Context) (*domain.User, error)
}

type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"userId"`
	Name      string    `json:"name"`
	Login     string    `json:"login"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	verifier UserVerifier
	store    storage.Store
}

func NewService(verifier UserVerifier, store storage.Store) *Service {
	return &Service{verifier: verifier, store: store}
}

// Login verifies the configured API key against the backend and issues a
// fresh session token.
func (s *Service) Login(ctx context.Context) (*Session, error) {
	user, err := s.verifier.VerifyAPIKey(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	session := &Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Name:      user.Name,
		Login:     user.Login,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := s.store.Set(ctx, sessionKey(session.Token), data); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// Validate resolves a token back to its session.
func (s *Service) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	data, err := s.store.Get(ctx, sessionKey(token))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Logout discards the session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.store.Delete(ctx, sessionKey(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
