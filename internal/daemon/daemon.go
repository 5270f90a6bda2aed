package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DaemonFunc represents the work a daemon does. Returning nil ends the daemon;
// returning an error restarts it.
type DaemonFunc func(ctx context.Context, name string) error

// DaemonManager supervises multiple daemons.
type DaemonManager struct {
	logger       *slog.Logger
	daemons      map[string]DaemonFunc
	restartDelay time.Duration
	wg           sync.WaitGroup
}

func NewDaemonManager(logger *slog.Logger) *DaemonManager {
	return &DaemonManager{
		logger:       logger,
		daemons:      make(map[string]DaemonFunc),
		restartDelay: 2 * time.Second,
	}
}

// Add registers a daemon by name.
func (m *DaemonManager) Add(name string, fn DaemonFunc) {
	m.daemons[name] = fn
}

// SetRestartDelay changes the pause before a crashed daemon is restarted.
func (m *DaemonManager) SetRestartDelay(d time.Duration) {
	m.restartDelay = d
}

// Start runs all daemons and restarts them if they crash.
func (m *DaemonManager) Start(ctx context.Context) {
	for name, fn := range m.daemons {
		m.wg.Add(1)
		go m.runDaemon(ctx, name, fn)
	}
}

// Wait blocks until all daemons have stopped.
func (m *DaemonManager) Wait() {
	m.wg.Wait()
}

// runDaemon supervises a single daemon, restarting on error or panic.
func (m *DaemonManager) runDaemon(ctx context.Context, name string, fn DaemonFunc) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Daemon received shutdown signal", "daemon", name)
			return
		default:
		}

		err := m.runOnce(ctx, name, fn)
		if err == nil {
			m.logger.Info("Daemon exited cleanly", "daemon", name)
			return
		}

		m.logger.Error("Daemon crashed, restarting", "daemon", name, "error", err, "delay", m.restartDelay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.restartDelay):
		}
	}
}

func (m *DaemonManager) runOnce(ctx context.Context, name string, fn DaemonFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, name)
}

// Periodic runs task immediately and then on every tick until ctx ends. Task
// failures are logged and retried on the next tick.
func Periodic(logger *slog.Logger, interval time.Duration, task func(ctx context.Context) error) DaemonFunc {
	return func(ctx context.Context, name string) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := task(ctx); err != nil && ctx.Err() == nil {
				logger.ErrorContext(ctx, "Daemon task failed", "daemon", name, "error", err)
			}
			select {
			case <-ctx.Done():
				logger.Info("Daemon shutting down", "daemon", name)
				return nil
			case <-ticker.C:
			}
		}
	}
}
