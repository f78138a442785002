// Package rest exposes the movie collection over HTTP: the /api routes and
// the /ws push channel.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/dmitrijs2005/moviekeeper/internal/server/hub"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MovieService is the owner-scoped movie boundary the handlers call.
type MovieService interface {
	List(ctx context.Context, ownerID string) ([]*models.Movie, error)
	Get(ctx context.Context, ownerID, id string) (*models.Movie, error)
	Create(ctx context.Context, ownerID string, movie models.Movie) (*models.Movie, error)
	Update(ctx context.Context, ownerID, pathID string, movie models.Movie) (*models.Movie, bool, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// UserService registers accounts and checks tokens.
type UserService interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(token string) (string, error)
}

// PhotoSigner issues upload URLs for photos.
type PhotoSigner interface {
	UploadURL(ctx context.Context, ownerID string) (key, url string, err error)
}

// Subscriber opens push subscriptions.
type Subscriber interface {
	Subscribe(ownerID string) *hub.Subscription
}

// Server serves the REST API and the push channel.
type Server struct {
	address string
	movies  MovieService
	users   UserService
	photos  PhotoSigner
	hub     Subscriber
	logger  logging.Logger
}

func NewServer(address string, ms MovieService, us UserService, ps PhotoSigner, h Subscriber, l logging.Logger) *Server {
	return &Server{
		address: address,
		movies:  ms,
		users:   us,
		photos:  ps,
		hub:     h,
		logger:  l.With("module", "rest_server"),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.signup)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireOwner)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", s.listMovies)
				r.Post("/", s.createMovie)
				r.Get("/{id}", s.getMovie)
				r.Put("/{id}", s.updateMovie)
				r.Delete("/{id}", s.deleteMovie)
			})

			r.Get("/photos/upload-url", s.photoUploadURL)
		})
	})

	r.Get("/ws", s.push)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting REST server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
