package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resurate/internal/shared/telemetry"
)

var errNotConfigured = errors.New("users service not configured")

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth records a sign-in for the identity resolved by an auth
// provider and returns the stored account.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errNotConfigured
	}
	user.ID = strings.TrimSpace(user.ID)
	user.Username = strings.TrimSpace(user.Username)
	user.Provider = ProviderOf(user.ID)
	if user.Provider == "" || user.Username == "" {
		return User{}, fmt.Errorf("user id %q must be <provider>:<subject> and username is required", user.ID)
	}
	stored, err := s.Repo.Upsert(ctx, user)
	if err != nil {
		return User{}, fmt.Errorf("upsert user: %w", err)
	}
	telemetry.Info("users.signed_in", map[string]any{
		"user_id":   stored.ID,
		"provider":  stored.Provider,
		"returning": stored.LastSignInAt.After(stored.CreatedAt),
	})
	return stored, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errNotConfigured
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}
