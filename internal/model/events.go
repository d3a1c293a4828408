package model

// Event names on the wire. Each frame is a JSON envelope carrying one of
// these names plus an event-specific payload.
const (
	// Client -> server
	EventAuth         = "auth" // must be the first frame on a connection
	EventAddDare      = "addDare"
	EventAddTruth     = "addTruth"
	EventDeleteItem   = "deleteItem"
	EventEditItem     = "editItem"
	EventSendMessage  = "sendMessage"
	EventRevealItem   = "revealItem"
	EventEditUsername = "editUsername"
	EventGetFreshData = "getFreshData"

	// Server -> one session
	EventAuthError       = "authError"
	EventInit            = "init"
	EventUpdateOwnDares  = "updateOwnDares"
	EventUpdateOwnTruths = "updateOwnTruths"
	EventRevealResult    = "revealResult"
	EventUsernameUpdated = "usernameUpdated"

	// Server -> all sessions (or all but one, for reveal notifications)
	EventUserList           = "userList"
	EventNewMessage         = "newMessage"
	EventMessagesUpdated    = "messagesUpdated"
	EventRevealNotification = "revealNotification"

	// Bidirectional: client requests the wipe, server confirms it to all
	EventClearChat = "clearChat"
)

// Credentials is the auth handshake payload.
type Credentials struct {
	ID       ProfileID `json:"id"`
	Password string    `json:"password"`
}

// RosterEntry is one profile's public identity in the userList broadcast.
type RosterEntry struct {
	ID       ProfileID `json:"id"`
	Username string    `json:"username"`
}

// InitPayload is the full-state snapshot sent on connect and on refresh.
type InitPayload struct {
	CurrentUser RosterEntry `json:"currentUser"`
	Dares       []Item      `json:"dares"`
	Truths      []Item      `json:"truths"`
	Messages    []*Message  `json:"messages"`
}

// ItemRef addresses an item in one of the caller's own collections.
type ItemRef struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

// EditItemPayload carries an in-place text replacement for an item.
type EditItemPayload struct {
	Type    string `json:"type"`
	ID      int64  `json:"id"`
	NewText string `json:"newText"`
}

// RevealNotification tells other sessions that a reveal occurred. Username
// is the requesting participant's display name, not the item owner's.
type RevealNotification struct {
	Username string `json:"username"`
	Item     string `json:"item"`
}
