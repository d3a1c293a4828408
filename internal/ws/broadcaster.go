package ws

import (
	"context"
	"log/slog"

	"github.com/pairsync/pairsync/internal/model"
	"github.com/pairsync/pairsync/internal/storage"
)

// Broadcaster pushes shared state to connected sessions. The roster is
// always the full list of known profiles, never an incremental diff.
type Broadcaster struct {
	hub     *Hub
	storage storage.Storage
	logger  *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, storage storage.Storage, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:     hub,
		storage: storage,
		logger:  logger.With(slog.String("component", "broadcaster")),
	}
}

// BroadcastRoster reads all profiles and emits the full roster to every
// connected session. Called on connect, disconnect, item mutations and
// renames; the roster converges within one round trip.
func (b *Broadcaster) BroadcastRoster(ctx context.Context) {
	profiles, err := b.storage.ListProfiles(ctx)
	if err != nil {
		b.logger.Error("roster broadcast failed", slog.Any("error", err))
		return
	}

	roster := make([]model.RosterEntry, 0, len(profiles))
	for _, profile := range profiles {
		roster = append(roster, model.RosterEntry{
			ID:       profile.ID,
			Username: profile.DisplayName,
		})
	}

	b.hub.Broadcast(model.EventUserList, roster)
}
