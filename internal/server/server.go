// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PedroDanesvara/api-regador/api"
	"github.com/PedroDanesvara/api-regador/internal/config"
	"github.com/PedroDanesvara/api-regador/internal/database"
	"github.com/PedroDanesvara/api-regador/internal/monitoring"
	"github.com/PedroDanesvara/api-regador/internal/repository/postgres"
	"github.com/PedroDanesvara/api-regador/internal/service"
	"github.com/PedroDanesvara/api-regador/internal/statuscache"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	db         database.DB
	cache      *statuscache.Cache
	service    *service.Service
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
	}
}

// Start connects the dependencies and begins listening for requests
func (s *Server) Start() error {
	db, err := initDB(s.config.Database.Postgres)
	if err != nil {
		return err
	}
	s.db = db

	if s.config.Redis.Enabled {
		cache, err := statuscache.New(s.config.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.cache = cache
	}

	s.service = initService(db, s.cache)
	s.monitoring = monitoring.NewService(monitoring.Config{
		LogLevel: s.config.Monitoring.LogLevel,
	})

	s.setupEventHandlers()

	router := api.NewRouter(s.service, s.config.CORS.AllowedOrigins)
	router.SetHealthCheck(s.handleHealth())

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			nuts.L.Warnf("[Server] Error closing redis connection: %v", err)
		}
	}
	if err := s.db.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing database connection: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := `{"status":"ok","version":"` + nuts.GetVersion() + `"}`
		if err := s.db.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = `{"status":"degraded","detail":"database unreachable"}`
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func (s *Server) setupEventHandlers() {
	s.service.Cleanup.OnCleanup("device.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] Device %s and all associated data deleted", id)
		s.monitoring.RecordEvent("device_deletion", map[string]string{
			"device_id": id,
		})
	})

	s.service.OnEvent("pump.activated", func(id string) {
		s.monitoring.RecordEvent("pump_activated", map[string]string{
			"device_id": id,
		})
	})

	s.service.OnEvent("pump.deactivated", func(id string) {
		s.monitoring.RecordEvent("pump_deactivated", map[string]string{
			"device_id": id,
		})
	})
}

// initService creates and configures the core service
func initService(db database.DB, cache *statuscache.Cache) *service.Service {
	devices := postgres.NewDeviceRepository(db)
	sensorData := postgres.NewSensorDataRepository(db)
	pump := postgres.NewPumpRepository(db)

	return service.New(devices, sensorData, pump, cache)
}

func initDB(cfg config.PostgresConfig) (database.DB, error) {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.InitSchema(db); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
