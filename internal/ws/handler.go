package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pairsync/pairsync/internal/model"
	"github.com/pairsync/pairsync/internal/services/auth"
	"github.com/pairsync/pairsync/internal/services/collection"
	"github.com/pairsync/pairsync/internal/services/reveal"
	"github.com/pairsync/pairsync/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler owns the per-connection lifecycle: the auth handshake, the initial
// snapshot, event dispatch while active, and presence rebroadcast on
// disconnect.
type Handler struct {
	hub         *Hub
	broadcaster *Broadcaster
	auth        *auth.Service
	collections *collection.Service
	reveal      *reveal.Service
	storage     storage.Storage
	logger      *slog.Logger
}

// HandlerConfig holds the Handler's dependencies
type HandlerConfig struct {
	Hub         *Hub
	Broadcaster *Broadcaster
	AuthService *auth.Service
	Collections *collection.Service
	Reveal      *reveal.Service
	Storage     storage.Storage
	Logger      *slog.Logger
}

// NewHandler creates a new websocket Handler
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		hub:         cfg.Hub,
		broadcaster: cfg.Broadcaster,
		auth:        cfg.AuthService,
		collections: cfg.Collections,
		reveal:      cfg.Reveal,
		storage:     cfg.Storage,
		logger:      cfg.Logger.With(slog.String("component", "ws")),
	}
}

// ServeWS upgrades the connection and runs its lifecycle to completion.
// A connection that fails the handshake is refused before any other event
// is processed.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	ctx := r.Context()

	profile, err := h.handshake(ctx, conn)
	if err != nil {
		h.refuse(conn, err)
		return
	}

	client := newClient(h.hub, conn, profile.ID, h.logger)
	h.hub.Register(client)
	go client.writePump()

	defer func() {
		h.hub.Unregister(client)
		// Presence changed; connected peers learn about the departure.
		h.broadcaster.BroadcastRoster(context.Background())
	}()

	h.sendSnapshot(ctx, client)
	h.broadcaster.BroadcastRoster(ctx)

	client.readPump(func(env Envelope) {
		h.dispatch(ctx, client, env)
	})
}

// handshake reads the first frame, which must be an auth event carrying
// credentials, and resolves it to a profile.
func (h *Handler) handshake(ctx context.Context, conn *websocket.Conn) (*model.Profile, error) {
	_ = conn.SetReadDeadline(time.Now().Add(authWait))

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading handshake: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing handshake: %w", err)
	}
	if env.Event != model.EventAuth {
		return nil, fmt.Errorf("expected %s event, got %q", model.EventAuth, env.Event)
	}

	var creds model.Credentials
	if err := json.Unmarshal(env.Data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	return h.auth.Authenticate(ctx, creds.ID, creds.Password)
}

// refuse notifies the peer and closes the connection without ever creating
// a session.
func (h *Handler) refuse(conn *websocket.Conn, err error) {
	h.logger.Warn("connection refused", slog.Any("error", err))

	reason := "authentication failed"
	if errors.Is(err, auth.ErrInvalidCredentials) {
		reason = "invalid credentials"
	}

	if msg, encErr := encodeEvent(model.EventAuthError, reason); encErr == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, msg)
	}
	_ = conn.Close()
}

// sendSnapshot sends the full-state init payload to one client. Also used
// for the client-requested refresh, which is an idempotent re-send.
func (h *Handler) sendSnapshot(ctx context.Context, c *Client) {
	profile, msgs, err := h.collections.Snapshot(ctx, c.profileID)
	if err != nil {
		h.logger.Error("snapshot failed",
			slog.String("profile_id", string(c.profileID)),
			slog.Any("error", err))
		return
	}

	c.Send(model.EventInit, model.InitPayload{
		CurrentUser: model.RosterEntry{ID: profile.ID, Username: profile.DisplayName},
		Dares:       profile.Dares,
		Truths:      profile.Truths,
		Messages:    msgs,
	})
}

// dispatch routes one inbound event to its handler. Store failures are
// logged and swallowed here; the client's last-known state stays stale until
// its next successful operation or refresh request.
func (h *Handler) dispatch(ctx context.Context, c *Client, env Envelope) {
	var err error

	switch env.Event {
	case model.EventAddDare:
		err = h.handleAdd(ctx, c, model.KindDare, env.Data)
	case model.EventAddTruth:
		err = h.handleAdd(ctx, c, model.KindTruth, env.Data)
	case model.EventDeleteItem:
		err = h.handleDelete(ctx, c, env.Data)
	case model.EventEditItem:
		err = h.handleEdit(ctx, c, env.Data)
	case model.EventSendMessage:
		err = h.handleSendMessage(ctx, c, env.Data)
	case model.EventRevealItem:
		err = h.handleReveal(ctx, c)
	case model.EventClearChat:
		err = h.handleClearChat(ctx)
	case model.EventEditUsername:
		err = h.handleEditUsername(ctx, c, env.Data)
	case model.EventGetFreshData:
		h.sendSnapshot(ctx, c)
	case model.EventAuth:
		// Already authenticated; repeated handshakes are ignored.
	default:
		h.logger.Debug("unknown event", slog.String("event", env.Event))
	}

	if err != nil {
		h.logger.Error("event handler failed",
			slog.String("event", env.Event),
			slog.String("profile_id", string(c.profileID)),
			slog.Any("error", err))
	}
}

func (h *Handler) handleAdd(ctx context.Context, c *Client, kind model.ItemKind, data json.RawMessage) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("parsing add payload: %w", err)
	}

	items, err := h.collections.AddItem(ctx, c.profileID, kind, text)
	if err != nil {
		return err
	}

	c.Send(updateEventFor(kind), items)
	h.broadcaster.BroadcastRoster(ctx)
	return nil
}

func (h *Handler) handleDelete(ctx context.Context, c *Client, data json.RawMessage) error {
	var ref model.ItemRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return fmt.Errorf("parsing delete payload: %w", err)
	}

	kind, ok := model.ParseItemKind(ref.Type)
	if !ok {
		return nil // unknown collection kind, no-op
	}

	items, err := h.collections.DeleteItem(ctx, c.profileID, kind, ref.ID)
	if err != nil {
		return err
	}

	c.Send(updateEventFor(kind), items)
	h.broadcaster.BroadcastRoster(ctx)
	return nil
}

func (h *Handler) handleEdit(ctx context.Context, c *Client, data json.RawMessage) error {
	var payload model.EditItemPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing edit payload: %w", err)
	}

	kind, ok := model.ParseItemKind(payload.Type)
	if !ok {
		return nil // unknown collection kind, no-op
	}

	items, err := h.collections.EditItem(ctx, c.profileID, kind, payload.ID, payload.NewText)
	if err != nil {
		return err
	}

	c.Send(updateEventFor(kind), items)
	h.broadcaster.BroadcastRoster(ctx)
	return nil
}

func (h *Handler) handleSendMessage(ctx context.Context, c *Client, data json.RawMessage) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("parsing message payload: %w", err)
	}

	msg, err := h.collections.AppendMessage(ctx, c.profileID, text)
	if err != nil {
		return err
	}

	h.hub.Broadcast(model.EventNewMessage, msg)
	return nil
}

func (h *Handler) handleReveal(ctx context.Context, c *Client) error {
	result, err := h.reveal.Reveal(ctx, c.profileID)
	if err != nil {
		return err
	}

	c.Send(model.EventRevealResult, result.Text)

	if result.Empty {
		return nil
	}

	// Other sessions learn who revealed and what, but the requester is not
	// named as the recipient to itself.
	profile, err := h.storage.GetProfile(ctx, c.profileID)
	if err != nil {
		return err
	}

	h.hub.BroadcastExcept(c, model.EventRevealNotification, model.RevealNotification{
		Username: profile.DisplayName,
		Item:     result.Text,
	})
	return nil
}

func (h *Handler) handleClearChat(ctx context.Context) error {
	if err := h.collections.ClearMessages(ctx); err != nil {
		return err
	}

	h.hub.Broadcast(model.EventClearChat, nil)
	return nil
}

func (h *Handler) handleEditUsername(ctx context.Context, c *Client, data json.RawMessage) error {
	var newName string
	if err := json.Unmarshal(data, &newName); err != nil {
		return fmt.Errorf("parsing username payload: %w", err)
	}

	profile, msgs, changed, err := h.collections.RenameProfile(ctx, c.profileID, newName)
	if err != nil {
		return err
	}
	if !changed {
		return nil // blank name, silently ignored
	}

	c.Send(model.EventUsernameUpdated, profile.DisplayName)
	h.hub.Broadcast(model.EventMessagesUpdated, msgs)
	h.broadcaster.BroadcastRoster(ctx)
	return nil
}

// updateEventFor maps a collection kind to its own-collection reply event.
func updateEventFor(kind model.ItemKind) string {
	if kind == model.KindDare {
		return model.EventUpdateOwnDares
	}
	return model.EventUpdateOwnTruths
}
