package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/realty-promo/internal/config"
)

type fakeService struct {
	name     string
	startErr error
	stopped  atomic.Bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	healthy := &fakeService{name: "http"}
	failing := &fakeService{name: "worker", startErr: errors.New("boom")}
	var closed atomic.Bool
	runner := NewRunner(healthy, failing)
	runner.onClose = func() { closed.Store(true) }

	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("want boom error, got %v", err)
	}
	if !healthy.stopped.Load() || !failing.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
	if !closed.Load() {
		t.Fatalf("onClose should run after services stop")
	}
}

func TestRunnerCanceledContextIsClean(t *testing.T) {
	svc := &fakeService{name: "scheduler"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("canceled run should return nil, got %v", err)
	}
	if !svc.stopped.Load() {
		t.Fatalf("service should be stopped")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) want %s got %s err=%v", in, want, got, err)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	if _, err := BuildRunner(&config.Config{}, "cron"); err == nil {
		t.Fatalf("build runner with unknown mode should fail")
	}
}

func TestNormalizeOptionsShutdownTimeout(t *testing.T) {
	opts := normalizeOptions(Options{Config: &config.Config{Server: config.ServerConfig{ShutdownTimeoutSeconds: 3}}})
	if opts.ShutdownTimeout != 3*time.Second || opts.Mode != ModeAll || opts.Logger == nil {
		t.Fatalf("unexpected options: timeout=%s mode=%s", opts.ShutdownTimeout, opts.Mode)
	}
	if got := normalizeOptions(Options{}).ShutdownTimeout; got != defaultShutdownTimeout {
		t.Fatalf("default timeout want %s got %s", defaultShutdownTimeout, got)
	}
}
