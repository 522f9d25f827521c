package server

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/handler"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/workers"
)

type server struct {
	httpServer *httpServer
	workers    *workers.Workers

	cancelWorkers context.CancelFunc
	workersDone   sync.WaitGroup

	logger *logger.Logger
}

func NewServer(handlers *handler.Handlers, w *workers.Workers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := new(server)

	if handlers == nil || handlers.HTTP == nil {
		return nil, errNoHTTPHandler
	}
	if cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}
	servers.httpServer = newHTTPServer(handlers.HTTP.Init(), cfg, logger)

	if w == nil {
		w = workers.NewWorkers()
	}
	servers.workers = w
	servers.cancelWorkers = func() {}
	servers.logger = logger

	return servers, nil
}

func (s *server) RunServer() {
	if err := s.run(); err != nil {
		s.logger.Info().Msgf("Error running server: %v \n", err)
	}
}

// Shutdown stops accepting requests, drains the in-flight ones and then stops
// the background workers.
func (s *server) Shutdown() {
	if s.httpServer != nil {
		s.httpServer.Shutdown()
	}

	s.cancelWorkers()
	s.workersDone.Wait()
}

func (s *server) run() error {
	if s.httpServer == nil {
		return errors.New("no servers to run")
	}

	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	workersCtx, cancelWorkers := context.WithCancel(context.Background())
	s.cancelWorkers = cancelWorkers
	s.workersDone.Add(1)
	go func() {
		defer s.workersDone.Done()
		s.workers.Run(workersCtx)
	}()

	go func() {
		<-ctx.Done()

		s.Shutdown()

		close(idleConnectionsClosed)
	}()

	s.logger.Info().Msg("Launching HTTP server")
	go func() {
		if err := s.httpServer.RunServer(); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server ListenAndServe")
			stop()
		}
	}()

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")

	return nil
}
