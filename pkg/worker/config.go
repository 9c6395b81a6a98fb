package worker

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jzx17/dpool/pkg/types"
)

// DefaultIdleTimeout is how long an idle worker waits for work before it
// considers retiring
const DefaultIdleTimeout = 2 * time.Second

// PoolConfig contains configuration for the pool
type PoolConfig struct {
	// MaxThreads is the ceiling on live workers. Zero, negative, or a value
	// above runtime.NumCPU() is clamped to runtime.NumCPU().
	MaxThreads int

	// InitThreads is the number of workers spawned up front, and the floor
	// below which idle workers never retire
	InitThreads int

	// IdleTimeout is the worker wait window (defaults to DefaultIdleTimeout)
	IdleTimeout time.Duration

	// AllowOversubscribe keeps MaxThreads above runtime.NumCPU() instead of
	// clamping it, for pools running blocking work
	AllowOversubscribe bool

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Logger receives pool lifecycle logs (optional, defaults to discard)
	Logger logrus.FieldLogger

	// Metrics receives pool metrics (optional)
	Metrics *Metrics

	// RateLimiter throttles task starts across all workers (optional)
	RateLimiter *rate.Limiter

	// ErrorHandler handles task failures (optional)
	ErrorHandler types.ErrorHandler
}

// DefaultPoolConfig returns default configuration
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxThreads:  runtime.NumCPU(),
		InitThreads: 0,
		IdleTimeout: DefaultIdleTimeout,
		Clock:       types.NewRealClock(),
	}
}

// normalize returns a validated copy of the config with defaults applied
func (c *PoolConfig) normalize() (*PoolConfig, error) {
	cfg := *c

	cpus := runtime.NumCPU()
	if cfg.MaxThreads <= 0 || (cfg.MaxThreads > cpus && !cfg.AllowOversubscribe) {
		cfg.MaxThreads = cpus
	}

	if cfg.InitThreads < 0 {
		return nil, fmt.Errorf("%w: init threads must be non-negative, got %d",
			types.ErrInvalidConfig, cfg.InitThreads)
	}
	if cfg.InitThreads > cfg.MaxThreads {
		return nil, fmt.Errorf("%w: init threads (%d) must be <= max threads (%d)",
			types.ErrInvalidConfig, cfg.InitThreads, cfg.MaxThreads)
	}

	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = types.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = newDiscardLogger()
	}

	return &cfg, nil
}

func newDiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}
