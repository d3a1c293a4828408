package reveal

import (
	"context"
	"log/slog"

	"github.com/pairsync/pairsync/internal/dependencies/random"
	"github.com/pairsync/pairsync/internal/model"
	"github.com/pairsync/pairsync/internal/storage"
)

// NoItemsSentinel is returned to the requester when no other participant
// has any items yet. This is a normal response, not an error.
const NoItemsSentinel = "No dares or truths available yet!"

// Result is the outcome of a reveal draw.
type Result struct {
	// Text is the revealed item's text, or NoItemsSentinel when Empty.
	Text string
	// OwnerUsername is the display name of the item's owner. Empty when
	// Empty is true.
	OwnerUsername string
	// Empty reports that the candidate pool held no items.
	Empty bool
}

type pooledItem struct {
	text  string
	owner string
}

// Service samples one item from the private collections of every
// participant other than the requester.
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
}

// New creates a new reveal Service
func New(storage storage.Storage, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  random,
		logger:  logger.With(slog.String("component", "reveal")),
	}
}

// Reveal draws uniformly across all items of all other participants, both
// kinds pooled together, so every item has probability 1/M regardless of
// which participant or collection it came from. Draws are independent and
// with replacement; items are never marked as revealed.
func (s *Service) Reveal(ctx context.Context, requester model.ProfileID) (*Result, error) {
	profiles, err := s.storage.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	var pool []pooledItem
	for _, profile := range profiles {
		if profile.ID == requester {
			continue
		}
		for _, item := range profile.Dares {
			pool = append(pool, pooledItem{text: item.Text, owner: profile.DisplayName})
		}
		for _, item := range profile.Truths {
			pool = append(pool, pooledItem{text: item.Text, owner: profile.DisplayName})
		}
	}

	if len(pool) == 0 {
		return &Result{Text: NoItemsSentinel, Empty: true}, nil
	}

	picked := pool[s.random.Intn(len(pool))]

	s.logger.Info("item revealed",
		slog.String("requester", string(requester)),
		slog.String("owner", picked.owner))

	return &Result{
		Text:          picked.text,
		OwnerUsername: picked.owner,
	}, nil
}
