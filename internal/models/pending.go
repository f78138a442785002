package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Local cache key layout.
const (
	// TokenKey holds the session token and is skipped by item scans.
	TokenKey = "token"
	// ItemKeyPrefix prefixes writes to records that already have an ID.
	ItemKeyPrefix = "item_"
	// NewItemKeyPrefix prefixes records created while offline.
	NewItemKeyPrefix = "new_"
)

// PendingWrite is the snapshot of a record queued while offline. Position
// and photo are not part of it.
type PendingWrite struct {
	Title       string    `json:"title" msgpack:"title"`
	ReleaseDate time.Time `json:"releaseDate" msgpack:"releaseDate"`
	Rented      bool      `json:"rented" msgpack:"rented"`
	RentalCount int       `json:"noOfRentals" msgpack:"noOfRentals"`
}

// NewPendingWrite takes the queued fields from m.
func NewPendingWrite(m Movie) PendingWrite {
	return PendingWrite{
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate,
		Rented:      m.Rented,
		RentalCount: m.RentalCount,
	}
}

// Movie rebuilds a record from the snapshot and the identifier carried by
// the cache key ("" for records created offline).
func (p PendingWrite) Movie(id string) Movie {
	return Movie{
		ID:          id,
		Title:       p.Title,
		ReleaseDate: p.ReleaseDate,
		Rented:      p.Rented,
		RentalCount: p.RentalCount,
	}
}

// PendingKey returns the cache key for m: item_<id> when persisted,
// new_<uuid> otherwise.
func PendingKey(m Movie) string {
	if m.Persisted() {
		return ItemKeyPrefix + m.ID
	}
	return NewItemKeyPrefix + uuid.NewString()
}

// ParsePendingKey extracts the record identifier from a cache key. ok is
// false for keys that are not pending writes (the token, foreign keys).
func ParsePendingKey(key string) (id string, ok bool) {
	if id, found := strings.CutPrefix(key, ItemKeyPrefix); found && id != "" {
		return id, true
	}
	if strings.HasPrefix(key, NewItemKeyPrefix) {
		return "", true
	}
	return "", false
}
