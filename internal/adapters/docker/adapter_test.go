package docker_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/melih/mapserver/internal/adapters/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEngine(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Api-Version", "1.43")
		switch {
		case strings.HasSuffix(r.URL.Path, "/_ping"):
			_, _ = w.Write([]byte("OK"))
		case strings.HasSuffix(r.URL.Path, "/version"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Version":"25.0.6","ApiVersion":"1.43","Os":"linux","Arch":"amd64"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAdapter_Version(t *testing.T) {
	server := fakeEngine(t)

	adapter, err := docker.NewAdapter("tcp://" + strings.TrimPrefix(server.URL, "http://"))
	require.NoError(t, err)
	defer adapter.Close()

	version, err := adapter.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Docker 25.0.6 (API 1.43, linux/amd64)", version)
}

func TestAdapter_VersionUnreachable(t *testing.T) {
	server := fakeEngine(t)
	host := "tcp://" + strings.TrimPrefix(server.URL, "http://")
	server.Close()

	adapter, err := docker.NewAdapter(host)
	require.NoError(t, err)
	defer adapter.Close()

	_, err = adapter.Version(context.Background())
	assert.ErrorContains(t, err, "failed to get docker version")
}
