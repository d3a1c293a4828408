package storage

import (
	"context"

	"github.com/pairsync/pairsync/internal/model"
)

// Storage defines the interface for data persistence. Individual operations
// are atomic at the single-entity level; there are no cross-entity
// transactions.
type Storage interface {
	// Profile operations
	SaveProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, id model.ProfileID) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]*model.Profile, error)

	// Message operations. ListMessages returns the log ordered by timestamp
	// ascending; ReplaceMessages rewrites the whole log (username renames).
	AppendMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context) ([]*model.Message, error)
	ReplaceMessages(ctx context.Context, msgs []*model.Message) error
	DeleteAllMessages(ctx context.Context) error
}
