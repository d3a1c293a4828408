package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pairsync/pairsync/internal/dependencies/clock"
	"github.com/pairsync/pairsync/internal/model"
	"github.com/pairsync/pairsync/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Registry is the static credential set mapping participant id to the
// expected password. The set of valid profile ids is exactly its key set.
type Registry map[model.ProfileID]string

// ParseRegistry parses a registry from its textual form:
// "id:password[,id:password...]".
func ParseRegistry(s string) (Registry, error) {
	registry := make(Registry)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, password, ok := strings.Cut(pair, ":")
		if !ok || id == "" || password == "" {
			return nil, fmt.Errorf("invalid registry entry %q", pair)
		}
		registry[model.ProfileID(id)] = password
	}
	if len(registry) == 0 {
		return nil, errors.New("registry is empty")
	}
	return registry, nil
}

// Service authenticates connecting participants against the static registry
// and resolves their durable profile.
type Service struct {
	registry Registry
	storage  storage.Storage
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a new auth Service. The registry is injected at construction;
// there is no global credential state.
func New(registry Registry, storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		registry: registry,
		storage:  storage,
		clock:    clock,
		logger:   logger.With(slog.String("component", "auth")),
	}
}

// Authenticate validates the claimed identity and credential against the
// registry and resolves the participant's profile, creating it with empty
// collections on first login. The password is compared byte-for-byte; the
// registry is a small trusted set, so no hashing or rate limiting applies.
func (s *Service) Authenticate(ctx context.Context, id model.ProfileID, password string) (*model.Profile, error) {
	expected, ok := s.registry[id]
	if !ok || expected != password {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.storage.GetProfile(ctx, id)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, model.ErrProfileNotFound) {
		return nil, err
	}

	// First login: create the profile with a default display name
	profile = &model.Profile{
		ID:          id,
		DisplayName: string(id),
		Password:    expected,
		Dares:       []model.Item{},
		Truths:      []model.Item{},
		CreatedAt:   s.clock.Now(),
	}

	if err := s.storage.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("profile created", slog.String("profile_id", string(id)))
	return profile, nil
}
