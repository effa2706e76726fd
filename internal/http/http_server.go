package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
	"gitlab.com/testsys2pcms.net/internal/core/services/convert"
	"gitlab.com/testsys2pcms.net/internal/handlers"
	"gitlab.com/testsys2pcms.net/internal/handlers/conversions"
)

type ServiceProvider struct {
	convertService convert.IConvertService
	middleware     *handlers.MiddlewareProvider
}

func NewServiceProvider(
	convertService convert.IConvertService,
	middleware *handlers.MiddlewareProvider,
) *ServiceProvider {
	return &ServiceProvider{
		convertService: convertService,
		middleware:     middleware,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", handlers.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.ServiceProvider.middleware.JWTMiddleware)
	conversions.
		NewConversionHandler(s.ServiceProvider.convertService, s.logger).
		RegisterRoutes(api)

	s.router = r
	return nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) {
	// Set up server
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr, "service", s.ServiceName)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		return err
	}
	return nil
}
