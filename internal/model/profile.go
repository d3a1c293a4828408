package model

import "time"

// ProfileID uniquely identifies a registered participant. It doubles as the
// login identifier and is immutable after creation.
type ProfileID string

// ItemKind distinguishes the two private collections a profile owns.
type ItemKind string

const (
	KindDare  ItemKind = "dare"
	KindTruth ItemKind = "truth"
)

// ParseItemKind converts a wire-level type string to an ItemKind.
func ParseItemKind(s string) (ItemKind, bool) {
	switch ItemKind(s) {
	case KindDare:
		return KindDare, true
	case KindTruth:
		return KindTruth, true
	}
	return "", false
}

// Item is a single dare or truth entry. IDs are creation timestamps in
// milliseconds and are only required to be unique within the owning list.
type Item struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// Profile represents one registered participant and their private lists.
type Profile struct {
	ID          ProfileID `json:"id"`
	DisplayName string    `json:"username"`
	// Password mirrors the registry entry at creation time. Authentication
	// always checks the registry, never this field.
	Password  string    `json:"password,omitempty"`
	Dares     []Item    `json:"dares"`
	Truths    []Item    `json:"truths"`
	CreatedAt time.Time `json:"createdAt"`
}

// Collection returns the item list for the given kind.
func (p *Profile) Collection(kind ItemKind) []Item {
	if kind == KindDare {
		return p.Dares
	}
	return p.Truths
}

// SetCollection replaces the item list for the given kind.
func (p *Profile) SetCollection(kind ItemKind, items []Item) {
	if kind == KindDare {
		p.Dares = items
	} else {
		p.Truths = items
	}
}

// Clone returns a deep copy of the profile. Stored profiles are cloned at
// the storage boundary so callers never alias persisted state.
func (p *Profile) Clone() *Profile {
	clone := *p
	clone.Dares = append([]Item(nil), p.Dares...)
	clone.Truths = append([]Item(nil), p.Truths...)
	return &clone
}
