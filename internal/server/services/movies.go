// Package services contains server-side business logic: owner-scoped access
// to the Remote Store with push broadcasts, and account registration/login.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/dmitrijs2005/moviekeeper/internal/server/repositories/repomanager"
)

// Broadcaster delivers push events to an owner's live subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, ownerID string, ev models.Event)
}

// MovieService enforces ownership on top of the Remote Store.
type MovieService struct {
	repomanager repomanager.RepositoryManager
	broadcaster Broadcaster
	logger      logging.Logger
}

func NewMovieService(m repomanager.RepositoryManager, b Broadcaster, l logging.Logger) *MovieService {
	return &MovieService{
		repomanager: m,
		broadcaster: b,
		logger:      l.With("module", "movie_service"),
	}
}

// List returns ownerID's records.
func (s *MovieService) List(ctx context.Context, ownerID string) ([]*models.Movie, error) {
	return s.repomanager.Movies().Find(ctx, ownerID)
}

// Get returns a record if it belongs to ownerID.
func (s *MovieService) Get(ctx context.Context, ownerID, id string) (*models.Movie, error) {
	m, err := s.repomanager.Movies().FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != ownerID {
		return nil, common.ErrAuthorization
	}
	return m, nil
}

// Create validates movie, stamps ownerID on it and stores it under a new ID.
// Any ID in the input is ignored.
func (s *MovieService) Create(ctx context.Context, ownerID string, movie models.Movie) (*models.Movie, error) {
	if err := movie.Validate(); err != nil {
		return nil, err
	}

	movie.ID = ""
	movie.OwnerID = ownerID

	created, err := s.repomanager.Movies().Insert(ctx, &movie)
	if err != nil {
		return nil, fmt.Errorf("insert movie: %w", err)
	}

	s.broadcaster.Broadcast(ctx, ownerID, models.Event{Type: common.EventCreated, Payload: *created})
	s.logger.Debug(ctx, "movie created", "owner", ownerID, "id", created.ID)

	return created, nil
}

// Update replaces the record at pathID. A body without ID is created
// instead (created reports which path ran). A body ID different from pathID
// is rejected before the store is touched.
func (s *MovieService) Update(ctx context.Context, ownerID, pathID string, movie models.Movie) (result *models.Movie, created bool, err error) {
	if movie.ID != "" && movie.ID != pathID {
		return nil, false, fmt.Errorf("%w: param id and body _id should be the same", common.ErrValidation)
	}

	if movie.ID == "" {
		m, err := s.Create(ctx, ownerID, movie)
		return m, true, err
	}

	if err := movie.Validate(); err != nil {
		return nil, false, err
	}
	movie.OwnerID = ownerID

	err = s.repomanager.InTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		existing, err := r.Movies.FindOne(ctx, pathID)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrConflict
		}
		if err != nil {
			return err
		}
		if existing.OwnerID != ownerID {
			return common.ErrAuthorization
		}

		n, err := r.Movies.Update(ctx, pathID, &movie)
		if err != nil {
			return fmt.Errorf("update movie: %w", err)
		}
		if n != 1 {
			return common.ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.broadcaster.Broadcast(ctx, ownerID, models.Event{Type: common.EventUpdated, Payload: movie})
	s.logger.Debug(ctx, "movie updated", "owner", ownerID, "id", movie.ID)

	return &movie, false, nil
}

// Delete removes a record owned by ownerID. A missing record is not an error.
func (s *MovieService) Delete(ctx context.Context, ownerID, id string) error {
	return s.repomanager.InTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		existing, err := r.Movies.FindOne(ctx, id)
		switch {
		case errors.Is(err, common.ErrNotFound):
			return nil
		case err != nil:
			return err
		case existing.OwnerID != ownerID:
			return common.ErrAuthorization
		}
		return r.Movies.Remove(ctx, id)
	})
}
