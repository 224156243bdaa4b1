// Package daemon drives the lifecycle of the cookie daemon so the same
// wiring can run from a console or under the Windows service manager.
package daemon

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrAlreadyRunning is returned when Start is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when serving does not stop in time.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// Windows service registration.
const (
	DefaultServiceName = "CookieBridge"
	DefaultDisplayName = "CookieBridge Cookie Daemon"
	DefaultDescription = "Persistent cookie jar shared over JSON-RPC"
)

// DefaultShutdownTimeout bounds how long Shutdown waits for Serve to return.
const DefaultShutdownTimeout = 10 * time.Second

type Config struct {
	ServiceName string
	DisplayName string
	// ShutdownTimeout of zero waits forever.
	ShutdownTimeout time.Duration
}

type Dependencies struct {
	// Serve runs the daemon until ctx is canceled. If nil, the runner
	// just blocks on ctx.
	Serve func(ctx context.Context) error

	// ShutdownFunc releases resources once Serve has returned.
	ShutdownFunc func() error
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config *Config
	deps   *Dependencies

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a runner. Nil arguments select the defaults.
func New(config *Config, deps *Dependencies) *Runner {
	if config == nil {
		config = &Config{
			ServiceName:     DefaultServiceName,
			DisplayName:     DefaultDisplayName,
			ShutdownTimeout: DefaultShutdownTimeout,
		}
	}
	if deps == nil {
		deps = &Dependencies{}
	}
	if deps.Serve == nil {
		deps.Serve = func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}
	}
	return &Runner{config: config, deps: deps}
}

func (r *Runner) Config() *Config {
	return r.config
}

// Start serves until ctx is canceled, Shutdown is called or Serve fails.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel, r.done, r.running = cancel, done, true
	r.mu.Unlock()

	err := r.deps.Serve(ctx)

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	cancel()
	close(done)
	return err
}

// Run serves until ctx is canceled and then runs the shutdown func.
func (r *Runner) Run(ctx context.Context) error {
	err := r.Start(ctx)
	if errors.Is(err, ErrAlreadyRunning) {
		return err
	}
	if r.deps.ShutdownFunc != nil {
		if serr := r.deps.ShutdownFunc(); err == nil {
			err = serr
		}
	}
	return err
}

// Shutdown stops serving, waits for Serve to return and then runs the
// shutdown func.
func (r *Runner) Shutdown() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrNotRunning
	}
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	if err := r.wait(done); err != nil {
		return err
	}
	if r.deps.ShutdownFunc != nil {
		return r.deps.ShutdownFunc()
	}
	return nil
}

func (r *Runner) wait(done <-chan struct{}) error {
	if r.config.ShutdownTimeout <= 0 {
		<-done
		return nil
	}
	select {
	case <-done:
		return nil
	case <-time.After(r.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
