// Package models defines the catalog record shared by the server, the wire
// protocol and the client sync engine.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
)

// Movie is a catalog record. ID is empty until the server persists it and
// never changes afterwards; OwnerID is assigned by the server only.
type Movie struct {
	ID          string    `json:"_id,omitempty"`
	Title       string    `json:"title"`
	ReleaseDate time.Time `json:"releaseDate"`
	Rented      bool      `json:"rented"`
	RentalCount int       `json:"noOfRentals"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	PhotoPath   string    `json:"photoPath"`
	OwnerID     string    `json:"userId,omitempty"`
}

// Persisted reports whether the record already has a server identifier.
func (m Movie) Persisted() bool {
	return m.ID != ""
}

// Validate rejects writes the store must never accept.
func (m Movie) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if m.RentalCount < 0 {
		return fmt.Errorf("%w: noOfRentals must not be negative", common.ErrValidation)
	}
	return nil
}

// Event is a change notification delivered over the push channel.
type Event struct {
	Type    string `json:"type"`
	Payload Movie  `json:"payload"`
}

// Mergeable reports whether the client should fold the event into its state.
func (e Event) Mergeable() bool {
	return e.Type == common.EventCreated || e.Type == common.EventUpdated
}
