// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package main

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadside-game/broadside/internal/observability"
)

func TestStopServer_ShutsDownRunningServer(t *testing.T) {
	obs := observability.NewServer("127.0.0.1:0", nil, nil)
	errCh, err := obs.Start()
	require.NoError(t, err)
	addr := obs.Addr()
	require.NotEmpty(t, addr)

	stopServer(slog.New(slog.DiscardHandler), "observability", obs)

	// The listener is released and the serve goroutine has exited.
	_, err = http.Get("http://" + addr + "/healthz/liveness")
	assert.Error(t, err)
	_, open := <-errCh
	assert.False(t, open, "error channel must close on graceful shutdown")
}
