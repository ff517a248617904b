package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/airquality-advisor/internal/infra/config"
)

const defaultShutdownTimeout = 10 * time.Second

// App owns the HTTP server and the backend clients opened for it.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	backends Backends
}

// Backends reports which optional stores were connected at startup.
type Backends struct {
	HistoryPostgres bool
	TrendingValkey  bool
	ArchiveBucket   bool
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, backends Backends) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, backends: backends}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
// Open chat streams count as in-flight, so the drain is bounded by the shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting",
			"address", a.cfg.HTTP.Address,
			"model", a.cfg.LLM.Model,
			"history_postgres", a.backends.HistoryPostgres,
			"trending_valkey", a.backends.TrendingValkey,
			"archive_bucket", a.backends.ArchiveBucket,
		)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) shutdown() error {
	timeout := a.cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	a.logger.Info("shutdown signal received", "timeout", timeout)
	if err := a.server.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warn("graceful shutdown timed out, closing connections")
			return a.server.Close()
		}
		return err
	}
	return nil
}
