package rest

import (
	"net/http"

	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listMovies(w http.ResponseWriter, r *http.Request) {
	list, err := s.movies.List(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	m, err := s.movies.Get(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) createMovie(w http.ResponseWriter, r *http.Request) {
	var in models.Movie
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	m, err := s.movies.Create(r.Context(), ownerFrom(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) updateMovie(w http.ResponseWriter, r *http.Request) {
	var in models.Movie
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	m, created, err := s.movies.Update(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, m)
}

func (s *Server) deleteMovie(w http.ResponseWriter, r *http.Request) {
	if err := s.movies.Delete(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
