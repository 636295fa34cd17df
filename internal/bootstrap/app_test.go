package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/healthcalc/internal/domain/calculator"
	"github.com/yanqian/healthcalc/internal/domain/history"
	"github.com/yanqian/healthcalc/internal/domain/session"
	"github.com/yanqian/healthcalc/internal/infra/config"
)

func TestRunShutsDownAndClosesSessions(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "127.0.0.1:0"}}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	sessions := &stubSessions{}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, sessions)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	require.True(t, sessions.closed)
}

func TestRunReportsListenError(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "bad-address"}}
	server := &http.Server{Addr: cfg.HTTP.Address}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, &stubSessions{})

	require.Error(t, app.Run(context.Background()))
}

type stubSessions struct {
	closed bool
}

func (s *stubSessions) Create(context.Context) (session.State, error) { return session.State{}, nil }

func (s *stubSessions) Get(context.Context, string) (session.State, error) {
	return session.State{}, nil
}

func (s *stubSessions) Submit(context.Context, string, string, calculator.RawInput) (session.State, error) {
	return session.State{}, nil
}

func (s *stubSessions) History(context.Context, string, int) ([]history.Record, error) {
	return nil, nil
}

func (s *stubSessions) Close() { s.closed = true }
