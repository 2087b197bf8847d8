package sidekick

import (
	"io"
	"log/slog"
	"net/http"

	cfg "github.com/loykin/sidekick/internal/config"
	"github.com/loykin/sidekick/internal/instance"
	"github.com/loykin/sidekick/internal/logger"
	"github.com/loykin/sidekick/internal/metrics"
	"github.com/loykin/sidekick/internal/platform"
	iapi "github.com/loykin/sidekick/internal/server"
	"github.com/loykin/sidekick/internal/store"
	"github.com/loykin/sidekick/internal/store/factory"
	"github.com/loykin/sidekick/internal/supervisor"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Spec = supervisor.Spec

type Status = supervisor.Status

type State = supervisor.State

type Config = cfg.Config

// Supervisor is a thin facade over internal/supervisor.Supervisor.
// It provides a stable public API for embedding.

type Supervisor struct{ inner *supervisor.Supervisor }

func New(s Spec) *Supervisor { return &Supervisor{inner: supervisor.New(s)} }

func (s *Supervisor) Status() Status      { return s.inner.Status() }
func (s *Supervisor) Ready() bool         { return s.inner.Ready() }
func (s *Supervisor) BaseURL() string     { return s.inner.BaseURL() }
func (s *Supervisor) Autostart()          { s.inner.Autostart() }
func (s *Supervisor) Retry() error        { return s.inner.Retry() }
func (s *Supervisor) KillAndRetry() error { return s.inner.KillAndRetry() }

func (s *Supervisor) SetFlowLog(path string) { s.inner.SetFlowLog(logger.NewChannel(path)) }

func (s *Supervisor) SetHistory(dsn string) (store.Store, error) {
	st, err := factory.NewFromDSN(dsn)
	if err != nil {
		return nil, err
	}
	if err := s.inner.SetStore(st); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// ErrAlreadyRunning is returned by Lock.Acquire while another live instance
// holds the lock.
var ErrAlreadyRunning = instance.ErrAlreadyRunning

func LoadConfig(path string) (Config, error) { return cfg.Load(path) }

// SetupConsole installs the colorized slog handler as the default logger.
func SetupConsole(w io.Writer, level slog.Level) { logger.SetupConsole(w, level) }

// AutostartEnabled reports whether the build variant and environment allow
// the backend to start automatically at launch.
func AutostartEnabled(buildVariant string) bool { return cfg.AutostartEnabled(buildVariant) }

func NewLock(path string) *instance.Lock { return instance.New(path) }

func NewHTTPServer(addr, basePath string, deps iapi.Deps) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, deps)
}

// NewRouterDeps wires the command surface dependencies from a config.
// History is optional; callers attach a store when one is configured.
func NewRouterDeps(s *Supervisor, c Config) iapi.Deps {
	return iapi.Deps{
		Super:            s.inner,
		AppLog:           logger.NewChannel(c.AppLogPath()),
		AutostartLogPath: c.AutostartLogPath(),
		LogsDir:          c.LogsDir(),
		Platform:         platform.Native(),
	}
}

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }
