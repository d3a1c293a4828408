package redis

import (
	"fmt"

	"github.com/pairsync/pairsync/internal/model"
)

// Key prefix for all persisted data
const keyPrefix = "pairsync"

// profileKey returns the Redis key for a Profile
func profileKey(id model.ProfileID) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, id)
}

// profileIndexKey returns the Redis key for the SET of all profile keys
func profileIndexKey() string {
	return fmt.Sprintf("%s:idx:profiles", keyPrefix)
}

// messagesKey returns the Redis key for the shared message log (a LIST in
// append order)
func messagesKey() string {
	return fmt.Sprintf("%s:messages", keyPrefix)
}
