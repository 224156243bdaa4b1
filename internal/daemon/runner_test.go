package daemon

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitRunning(t *testing.T, r *Runner) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !r.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("runner did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNew_Defaults(t *testing.T) {
	r := New(nil, nil)
	cfg := r.Config()
	if cfg.ServiceName != DefaultServiceName || cfg.DisplayName != DefaultDisplayName {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Fatalf("timeout = %v", cfg.ShutdownTimeout)
	}
	if r.IsRunning() {
		t.Fatal("new runner should not be running")
	}
}

func TestRunner_StopsOnContextCancel(t *testing.T) {
	r := New(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(ctx) }()
	waitRunning(t, r)
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
	}
	if r.IsRunning() {
		t.Fatal("runner still running")
	}
}

func TestRunner_AlreadyRunning(t *testing.T) {
	r := New(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)
	waitRunning(t, r)
	if err := r.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("err = %v, want ErrAlreadyRunning", err)
	}
}

func TestRunner_ShutdownNotRunning(t *testing.T) {
	if err := New(nil, nil).Shutdown(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("err = %v, want ErrNotRunning", err)
	}
}

func TestRunner_ShutdownRunsCleanupAfterServe(t *testing.T) {
	served := make(chan struct{})
	var order []string
	r := New(nil, &Dependencies{
		Serve: func(ctx context.Context) error {
			<-ctx.Done()
			order = append(order, "serve")
			close(served)
			return nil
		},
		ShutdownFunc: func() error {
			order = append(order, "cleanup")
			return nil
		},
	})
	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(context.Background()) }()
	waitRunning(t, r)

	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(order) != 2 || order[0] != "serve" || order[1] != "cleanup" {
		t.Fatalf("order = %v", order)
	}
}

func TestRunner_ShutdownTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	cleaned := false
	r := New(&Config{ShutdownTimeout: 20 * time.Millisecond}, &Dependencies{
		Serve: func(ctx context.Context) error {
			<-release
			return nil
		},
		ShutdownFunc: func() error {
			cleaned = true
			return nil
		},
	})
	go r.Start(context.Background())
	waitRunning(t, r)

	if err := r.Shutdown(); !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("err = %v, want ErrShutdownTimeout", err)
	}
	if cleaned {
		t.Fatal("cleanup ran before Serve returned")
	}
}

func TestRunner_ServeError(t *testing.T) {
	boom := errors.New("listen failed")
	r := New(nil, &Dependencies{
		Serve: func(context.Context) error { return boom },
	})
	if err := r.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if r.IsRunning() {
		t.Fatal("runner still running after Serve failed")
	}
}

func TestRunner_RunCleansUpOnCancel(t *testing.T) {
	cleaned := make(chan struct{})
	r := New(nil, &Dependencies{
		ShutdownFunc: func() error {
			close(cleaned)
			return nil
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()
	waitRunning(t, r)
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}
	select {
	case <-cleaned:
	default:
		t.Fatal("shutdown func not called")
	}
}

func TestRunner_RunReportsCleanupError(t *testing.T) {
	boom := errors.New("flush failed")
	r := New(nil, &Dependencies{
		Serve:        func(context.Context) error { return nil },
		ShutdownFunc: func() error { return boom },
	})
	if err := r.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
