package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/emberops/wildfire/api/allocation"
	"github.com/emberops/wildfire/config"
	"github.com/emberops/wildfire/core/catalog"
	"github.com/emberops/wildfire/core/dispatch"
	"github.com/emberops/wildfire/core/dispatch/logging"
	coremetrics "github.com/emberops/wildfire/core/metrics"
	"github.com/emberops/wildfire/core/model"
	"github.com/emberops/wildfire/infra/ingest"
	"github.com/emberops/wildfire/infra/logger"
	"github.com/emberops/wildfire/infra/metrics"
	"github.com/emberops/wildfire/internal/eventbus"
)

// Service wires the allocation engine behind the HTTP API.
type Service struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	sink    coremetrics.MetricsSink
	bus     eventbus.EventBus
	store   logging.RunStore
	log     logger.Logger

	mu       sync.Mutex
	managers map[string]*dispatch.Manager
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	cat, err := cfg.Catalog.Build()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := metrics.RegisterBuiltins(); err != nil {
		return nil, fmt.Errorf("metrics factories: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}

	var store logging.RunStore
	switch cfg.RunLog.Backend {
	case "sqlite":
		store, err = logging.NewSQLiteStore(cfg.RunLog.Path)
	default:
		store, err = logging.NewJSONLStore(cfg.RunLog.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("run store: %w", err)
	}

	return &Service{
		cfg:      cfg,
		catalog:  cat,
		sink:     sink,
		bus:      eventbus.New(),
		store:    store,
		log:      logg,
		managers: make(map[string]*dispatch.Manager),
	}, nil
}

// Process reads the batch file at path and runs one allocation with the given
// strategy, falling back to the configured default when strategy is empty.
func (s *Service) Process(ctx context.Context, path, strategy string) (model.Report, error) {
	records, err := ingest.ReadFile(path)
	if err != nil {
		return model.Report{}, err
	}
	m, err := s.manager(strategy)
	if err != nil {
		return model.Report{}, err
	}
	return m.Run(ctx, records)
}

// manager returns the lazily built manager for the strategy name. Managers
// share the catalog, sink, bus and run store.
func (s *Service) manager(strategy string) (*dispatch.Manager, error) {
	if strategy == "" {
		strategy = s.cfg.Dispatch.Strategy
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.managers[strategy]; ok {
		return m, nil
	}
	cfg := s.cfg.Dispatch
	cfg.Strategy = strategy
	strat, err := dispatch.NewStrategy(s.catalog, cfg)
	if err != nil {
		return nil, err
	}
	m := dispatch.NewManager(strat, s.catalog, s.log, s.sink, s.bus)
	m.SetRunStore(s.store)
	s.managers[strategy] = m
	return m, nil
}

// Run serves the HTTP API and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", allocation.NewHealthHandler())
	mux.Handle("/upload", allocation.NewUploadHandler(s.cfg.Server.UploadDir))
	mux.Handle("/process", allocation.NewProcessHandler(s))
	mux.Handle("/api/runs", allocation.NewRunsHandler(s.store, s.cfg.Server.APIToken))

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go s.logEvents(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// logEvents drains the bus into the structured log until the context ends.
func (s *Service) logEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case e, ok := <-sub:
			if !ok {
				return
			}
			s.log.Debugw("allocation event", map[string]any{"event": fmt.Sprintf("%T", e), "detail": e})
		case <-ctx.Done():
			return
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return s.store.Close()
}
