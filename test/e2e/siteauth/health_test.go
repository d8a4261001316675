package siteauth_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	env := startSiteauth(t, relaxedLimits)
	c := env.client()
	ctx := context.Background()

	live, err := c.Livez(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := c.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
}

func TestMetricsEndpoint(t *testing.T) {
	env := startSiteauth(t, relaxedLimits)
	setupOwner(t, env)

	resp, err := http.Get(env.baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `siteauth_flow_total{flow="setup",outcome="ok"} 1`)
}
