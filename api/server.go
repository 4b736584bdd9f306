package api

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"time"

	"inventory-system/config"
	"inventory-system/core/backups"
	"inventory-system/core/schema"
	"inventory-system/core/store"
	"inventory-system/core/utils"

	"github.com/go-chi/chi/v5"
)

// Server is the local JSON API the desktop shell talks to. It must only be
// constructed after the schema has been synchronized.
type Server struct {
	cfg        *config.AppConfig
	db         *sql.DB
	descriptor schema.Descriptor
	report     *store.SyncReport

	ingredients store.IngredientsStore
	products    store.ProductsStore
	groups      store.GroupsStore
	events      store.EventsStore
	backups     *backups.Service

	logger *utils.Logger
	http   *http.Server
}

type ServerDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	Descriptor  schema.Descriptor
	Report      *store.SyncReport
	Ingredients store.IngredientsStore
	Products    store.ProductsStore
	Groups      store.GroupsStore
	Events      store.EventsStore
	Backups     *backups.Service
	Logger      *utils.Logger
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		cfg:         deps.Config,
		db:          deps.DB,
		descriptor:  deps.Descriptor,
		report:      deps.Report,
		ingredients: deps.Ingredients,
		products:    deps.Products,
		groups:      deps.Groups,
		events:      deps.Events,
		backups:     deps.Backups,
		logger:      deps.Logger,
	}
	s.http = &http.Server{
		Addr:              deps.Config.ListenAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.loggingMiddleware)

	h := s.newRouteHandlers()
	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(s.jsonMiddleware)
		apiRouter.MethodFunc("GET", "/health", h.health.Health)
		s.registerInventoryRoutes(apiRouter, h)
		s.registerSchemaRoutes(apiRouter, h)
	})
	return r
}

// Serve listens on the configured address until ctx is done, then shuts the
// server down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	s.logger.Printf("api listening on http://%s", ln.Addr())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Printf("api stopped")
	return nil
}
