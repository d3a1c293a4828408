package model

import "time"

// Message is one entry in the shared chronological log. Username is a
// snapshot of the sender's display name at send time, not a live reference
// to a profile; renaming a profile rewrites historical messages instead.
type Message struct {
	Username  string    `json:"username"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
