package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/config"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/health"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/metric"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/natsclient"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/pkg/retry"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// LoadConfig reads the configuration at path. A missing file is only an
// error when the path was given explicitly; otherwise the defaults apply.
func LoadConfig(path string, explicit bool, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if explicit || !errors.Is(err, errors.ErrConfigNotFound) {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger.Warn("No configuration file found, using defaults", "path", path)
	l := config.NewLoader()
	l.EnableValidation(true)
	cfg, err = l.Load()
	if err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}
	return cfg, nil
}

// Runtime owns the NATS session and the metrics endpoint of a process.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	NATS     *natsclient.Client
	Registry *metric.MetricsRegistry
	Health   *health.Monitor

	server      *metric.Server
	metricsPort int
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithDefaultMetricsPort sets the metrics port used when the configuration
// leaves it at 0. Without it such a process serves no metrics.
func WithDefaultMetricsPort(port int) RuntimeOption {
	return func(r *Runtime) {
		r.metricsPort = port
	}
}

// NewRuntime prepares the NATS client, metrics registry and health monitor
// without connecting.
func NewRuntime(name string, cfg *config.Config, logger *slog.Logger, opts ...RuntimeOption) (*Runtime, error) {
	registry := metric.NewMetricsRegistry()

	opts := append(cfg.ClientOptions(),
		natsclient.WithLogger(logger),
		natsclient.WithMetrics(registry.CoreMetrics()),
	)
	nc, err := natsclient.NewClient(cfg.ServerURLs(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	monitor := health.NewMonitor(name)
	monitor.Register("nats", natsCheck(nc))

	r := &Runtime{
		Config:   cfg,
		Logger:   logger,
		NATS:     nc,
		Registry: registry,
		Health:   monitor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func natsCheck(nc *natsclient.Client) health.Check {
	return func() health.Status {
		switch st := nc.Status(); st {
		case natsclient.StatusConnected:
			return health.NewHealthy("nats", "connected")
		case natsclient.StatusConnecting, natsclient.StatusReconnecting:
			return health.NewDegraded("nats", st.String())
		default:
			return health.NewUnhealthy("nats", st.String())
		}
	}
}

// Metrics returns the core metrics shared by the components.
func (r *Runtime) Metrics() *metric.Metrics {
	return r.Registry.CoreMetrics()
}

// MetricsPort is the port the metrics server binds, 0 when disabled.
func (r *Runtime) MetricsPort() int {
	switch port := r.Config.Metrics.Port; {
	case port < 0:
		return 0
	case port == 0:
		return max(r.metricsPort, 0)
	default:
		return port
	}
}

// Start serves metrics when a port is configured and connects to NATS,
// retrying transient failures.
func (r *Runtime) Start(ctx context.Context) error {
	if err := r.startMetrics(); err != nil {
		return err
	}

	r.Logger.Info("Connecting to NATS", "urls", r.Config.NATS.URLs)
	policy := retry.Startup()
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		r.Logger.Warn("NATS connection attempt failed", "attempt", attempt, "retry_in", delay, "error", err)
	}
	err := retry.Do(ctx, policy, func() error {
		err := r.NATS.Connect(ctx)
		if errors.IsFatal(err) {
			return retry.NonRetryable(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := r.NATS.WaitForConnection(connCtx); err != nil {
		return fmt.Errorf("NATS connection timeout: %w", err)
	}
	return nil
}

func (r *Runtime) startMetrics() error {
	port := r.MetricsPort()
	if port == 0 {
		return nil
	}
	r.server = metric.NewServer(":"+strconv.Itoa(port), r.Config.Metrics.Path, r.Registry, r.Health)
	if err := r.server.Start(); err != nil {
		r.server = nil
		return fmt.Errorf("start metrics server: %w", err)
	}
	r.Logger.Info("Metrics server started", "address", r.server.Address())
	return nil
}

// Task is a long-running part of a process.
type Task func(ctx context.Context) error

// Run runs tasks until all return. The first failure cancels the others and
// is returned.
func (r *Runtime) Run(ctx context.Context, tasks ...Task) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error {
			return task(gctx)
		})
	}
	return g.Wait()
}

// Close drains the NATS session and stops the metrics server.
func (r *Runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := r.NATS.Close(ctx); err != nil {
		r.Logger.Warn("Failed to close NATS connection", "error", err)
	}
	if r.server != nil {
		if err := r.server.Stop(ctx); err != nil {
			r.Logger.Warn("Failed to stop metrics server", "error", err)
		}
	}
}
