package state

import (
	"slices"

	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

// State is the in-memory view the UI renders.
type State struct {
	Items         []models.Movie
	Fetching      bool
	FetchingError error
	Saving        bool
	SavingError   error
}

// Merge returns items with m folded in: a record with the same ID is
// replaced in place, anything else (including a record without ID) is
// inserted at the front. items is not modified.
func Merge(items []models.Movie, m models.Movie) []models.Movie {
	if m.Persisted() {
		if i := slices.IndexFunc(items, func(it models.Movie) bool { return it.ID == m.ID }); i >= 0 {
			out := slices.Clone(items)
			out[i] = m
			return out
		}
	}

	out := make([]models.Movie, 0, len(items)+1)
	out = append(out, m)
	return append(out, items...)
}

// Reduce applies ev to s. It is pure: s is never modified.
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case FetchStarted:
		s.Fetching = true
		s.FetchingError = nil
	case FetchSucceeded:
		s.Items = slices.Clone(ev.Items)
		if s.Items == nil {
			s.Items = []models.Movie{}
		}
		s.Fetching = false
	case FetchFailed:
		s.FetchingError = ev.Err
		s.Fetching = false
	case SaveStarted:
		s.Saving = true
		s.SavingError = nil
	case SaveSucceeded:
		s.Items = Merge(s.Items, ev.Item)
		s.Saving = false
	case SaveFailed:
		s.SavingError = ev.Err
		s.Saving = false
	}
	return s
}
