package collection

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pairsync/pairsync/internal/dependencies/clock"
	"github.com/pairsync/pairsync/internal/model"
	"github.com/pairsync/pairsync/internal/storage"
)

// Service applies mutations to a participant's private dare/truth lists and
// to the shared message log. Every mutation re-fetches the profile by id and
// persists the result; the store is the single source of truth, sessions
// never hold a cached profile.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new collection Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "collection")),
	}
}

// AddItem appends a new item with a fresh id to the owner's collection of
// the given kind and returns the full updated collection.
func (s *Service) AddItem(ctx context.Context, owner model.ProfileID, kind model.ItemKind, text string) ([]model.Item, error) {
	profile, err := s.storage.GetProfile(ctx, owner)
	if err != nil {
		return nil, err
	}

	items := profile.Collection(kind)
	item := model.Item{
		ID:   nextItemID(items, s.clock.Now().UnixMilli()),
		Text: text,
	}
	profile.SetCollection(kind, append(items, item))

	if err := s.storage.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}

	return profile.Collection(kind), nil
}

// EditItem replaces the text of the item with the given id in place. A
// missing id is a no-op, not an error; the (unchanged) collection is still
// returned so the caller's view converges either way.
func (s *Service) EditItem(ctx context.Context, owner model.ProfileID, kind model.ItemKind, id int64, newText string) ([]model.Item, error) {
	profile, err := s.storage.GetProfile(ctx, owner)
	if err != nil {
		return nil, err
	}

	items := profile.Collection(kind)
	changed := false
	for i := range items {
		if items[i].ID == id {
			items[i].Text = newText
			changed = true
			break
		}
	}

	if changed {
		if err := s.storage.SaveProfile(ctx, profile); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// DeleteItem removes the item with the given id, preserving the relative
// order of the remainder. A missing id is a no-op.
func (s *Service) DeleteItem(ctx context.Context, owner model.ProfileID, kind model.ItemKind, id int64) ([]model.Item, error) {
	profile, err := s.storage.GetProfile(ctx, owner)
	if err != nil {
		return nil, err
	}

	items := profile.Collection(kind)
	remaining := items[:0:0]
	for _, item := range items {
		if item.ID != id {
			remaining = append(remaining, item)
		}
	}

	if len(remaining) != len(items) {
		profile.SetCollection(kind, remaining)
		if err := s.storage.SaveProfile(ctx, profile); err != nil {
			return nil, err
		}
	}

	return remaining, nil
}

// AppendMessage appends a message to the shared log. The stored username is
// a snapshot of the sender's display name at send time.
func (s *Service) AppendMessage(ctx context.Context, sender model.ProfileID, text string) (*model.Message, error) {
	profile, err := s.storage.GetProfile(ctx, sender)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		Username:  profile.DisplayName,
		Body:      text,
		Timestamp: s.clock.Now(),
	}

	if err := s.storage.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// RenameProfile changes the owner's display name and rewrites every
// historical message stored under the old name. Blank or whitespace-only
// names are silently ignored (changed=false, no error). The profile update
// and the log rewrite are two separate store writes; a crash between them
// leaves stale names in history until the next rename.
func (s *Service) RenameProfile(ctx context.Context, owner model.ProfileID, newName string) (profile *model.Profile, msgs []*model.Message, changed bool, err error) {
	if strings.TrimSpace(newName) == "" {
		return nil, nil, false, nil
	}

	profile, err = s.storage.GetProfile(ctx, owner)
	if err != nil {
		return nil, nil, false, err
	}

	oldName := profile.DisplayName
	profile.DisplayName = newName
	if err = s.storage.SaveProfile(ctx, profile); err != nil {
		return nil, nil, false, err
	}

	msgs, err = s.storage.ListMessages(ctx)
	if err != nil {
		return nil, nil, false, err
	}

	rewritten := false
	for _, msg := range msgs {
		if msg.Username == oldName {
			msg.Username = newName
			rewritten = true
		}
	}

	if rewritten {
		if err = s.storage.ReplaceMessages(ctx, msgs); err != nil {
			return nil, nil, false, err
		}
	}

	s.logger.Info("profile renamed",
		slog.String("profile_id", string(owner)),
		slog.String("old_name", oldName),
		slog.String("new_name", newName))

	return profile, msgs, true, nil
}

// ClearMessages deletes the entire shared message log. No confirmation, no
// undo.
func (s *Service) ClearMessages(ctx context.Context) error {
	return s.storage.DeleteAllMessages(ctx)
}

// Snapshot returns the owner's profile and the full message log ordered by
// timestamp ascending, for the init/refresh payload.
func (s *Service) Snapshot(ctx context.Context, owner model.ProfileID) (*model.Profile, []*model.Message, error) {
	profile, err := s.storage.GetProfile(ctx, owner)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := s.storage.ListMessages(ctx)
	if err != nil {
		return nil, nil, err
	}

	return profile, msgs, nil
}

// nextItemID derives an item id from the creation time in milliseconds,
// bumping past ids already present so the id stays unique within the
// owner's list (two adds can land in the same millisecond).
func nextItemID(items []model.Item, now int64) int64 {
	id := now
	for {
		taken := false
		for _, item := range items {
			if item.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		id++
	}
}
