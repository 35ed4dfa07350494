package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/productcatalog/internal/app"
	"github.com/abgdnv/productcatalog/internal/events"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ctlYAML = `
grpc:
  timeout: 2s
  resilience:
    retry:
      maxattempts: 2
      initialbackoff: 10ms
    circuitbreaker:
      consecutivefailures: 5
      errorratepercent: 60
      opentimeout: 1s
`

// startCatalog serves a seeded in-memory catalog on a local port and returns its address.
func startCatalog(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := store.NewMemoryStore()
	_, err := store.Seed(context.Background(), repo.Insert, []store.Product{
		{ID: 1, Name: "Keyboard", Price: decimal.RequireFromString("49.90"), Quantity: 10},
		{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("19.5"), Quantity: 3},
	})
	require.NoError(t, err)

	srv := app.SetupGrpcServer(app.SetupDependencies(repo, logger), false)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return lis.Addr().String()
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ctlYAML), 0o600))
	return path
}

func TestRun(t *testing.T) {
	addr := startCatalog(t)
	cfgFile := writeConfig(t)
	t.Setenv("CATALOGCTL_GRPC_ADDR", "")

	testCases := []struct {
		name      string
		args      []string
		wantOut   []string
		wantError string
	}{
		{
			name:    "list",
			args:    []string{"list"},
			wantOut: []string{"ID", "Keyboard", "49.9", "Mouse"},
		},
		{
			name:    "get",
			args:    []string{"get", "2"},
			wantOut: []string{`"name": "Mouse"`, `"price": "19.5"`},
		},
		{
			name:      "get absent",
			args:      []string{"get", "9999"},
			wantError: "product 9999 not found",
		},
		{
			name:      "get invalid id",
			args:      []string{"get", "abc"},
			wantError: `invalid id "abc"`,
		},
		{
			name:    "health",
			args:    []string{"health"},
			wantOut: []string{"SERVING"},
		},
		{
			name:      "health with extra args",
			args:      []string{"health", "now"},
			wantError: "usage:",
		},
		{
			name:      "watch without nats",
			args:      []string{"watch"},
			wantError: "watch requires nats.enabled",
		},
		{
			name:      "unknown command",
			args:      []string{"delete", "1"},
			wantError: "usage:",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var out bytes.Buffer
			args := append([]string{"-config", cfgFile, "-addr", addr}, tc.args...)

			// when
			err := run(context.Background(), args, &out)

			// then
			if tc.wantError != "" {
				assert.ErrorContains(t, err, tc.wantError)
				return
			}
			require.NoError(t, err)
			for _, s := range tc.wantOut {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestRun_HealthUnreachable(t *testing.T) {
	// given an address nobody listens on
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	t.Setenv("CATALOGCTL_GRPC_ADDR", "")
	var out bytes.Buffer

	// when
	err = run(context.Background(), []string{"-config", writeConfig(t), "-addr", addr, "health"}, &out)

	// then
	assert.ErrorContains(t, err, "health check failed")
	assert.Empty(t, out.String())
}

func TestFormatEvent(t *testing.T) {
	at := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	product := store.Product{ID: 3, Name: "Desk", Price: decimal.RequireFromString("120.00"), Quantity: 2}

	assert.Equal(t, `2025-07-01T12:00:00Z created  id=3 name="Desk" price=120 quantity=2`,
		formatEvent(events.ProductCreatedEvent{Product: product, OccurredAt: at}))
	assert.Equal(t, `2025-07-01T12:00:00Z updated  id=3 name="Desk" price=120 quantity=2`,
		formatEvent(events.ProductUpdatedEvent{Product: product, OccurredAt: at}))
	assert.Equal(t, `2025-07-01T12:00:00Z removed  id=3`,
		formatEvent(events.ProductRemovedEvent{ProductID: 3, OccurredAt: at}))
}
