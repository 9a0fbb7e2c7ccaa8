// Package session tracks the single signed-in user. Any email is trusted;
// there is no credential check.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"financeflow/internal/core"
	"financeflow/internal/storage"
)

var ErrEmptyEmail = errors.New("email is required")

const bcryptCost = bcrypt.DefaultCost

type userRecord struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type Manager struct {
	store storage.Store
}

func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// Login records email as the current user.
func (m *Manager) Login(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrEmptyEmail
	}
	if err := m.store.Set(ctx, storage.KeyCurrentUser, email); err != nil {
		return "", fmt.Errorf("store current user: %w", err)
	}
	return email, nil
}

// Signup appends the user to the signup log and logs them in. The log is
// never consulted on login.
func (m *Manager) Signup(ctx context.Context, u core.User) (string, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return "", ErrEmptyEmail
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	users, err := m.users(ctx)
	if err != nil {
		return "", err
	}
	users = append(users, userRecord{Email: u.Email, Name: strings.TrimSpace(u.Name), Password: string(hash)})
	raw, err := json.Marshal(users)
	if err != nil {
		return "", fmt.Errorf("encode users: %w", err)
	}
	if err := m.store.Set(ctx, storage.KeyUsers, string(raw)); err != nil {
		return "", fmt.Errorf("store users: %w", err)
	}
	return m.Login(ctx, u.Email)
}

func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Remove(ctx, storage.KeyCurrentUser); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	return nil
}

// CurrentUser reports the signed-in email, if any.
func (m *Manager) CurrentUser(ctx context.Context) (string, bool, error) {
	email, ok, err := m.store.Get(ctx, storage.KeyCurrentUser)
	if err != nil {
		return "", false, fmt.Errorf("read current user: %w", err)
	}
	if !ok || email == "" {
		return "", false, nil
	}
	return email, true, nil
}

func (m *Manager) users(ctx context.Context) ([]userRecord, error) {
	raw, ok, err := m.store.Get(ctx, storage.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var users []userRecord
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}
