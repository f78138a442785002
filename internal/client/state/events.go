// Package state is the client's Collection State: a pure reducer over
// fetch/save events plus a Store that serializes dispatches and lets
// sessions be canceled atomically with respect to state changes.
package state

import "github.com/dmitrijs2005/moviekeeper/internal/models"

// Event is a state transition. The concrete types below are the only
// implementations.
type Event interface {
	isEvent()
}

type FetchStarted struct{}

type FetchSucceeded struct {
	Items []models.Movie
}

type FetchFailed struct {
	Err error
}

type SaveStarted struct{}

// SaveSucceeded carries a record to merge; also used for push events.
type SaveSucceeded struct {
	Item models.Movie
}

type SaveFailed struct {
	Err error
}

func (FetchStarted) isEvent()   {}
func (FetchSucceeded) isEvent() {}
func (FetchFailed) isEvent()    {}
func (SaveStarted) isEvent()    {}
func (SaveSucceeded) isEvent()  {}
func (SaveFailed) isEvent()     {}
