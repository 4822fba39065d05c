package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeWithoutDatabase(t *testing.T) {
	t.Setenv("QUOTES_DISABLE_DB", "true")
	t.Setenv("TEMPLATES_DIRS", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	app := NewApp()
	require.NoError(t, app.Initialize(context.Background()))
	assert.Nil(t, app.DB)

	routes := map[string]bool{}
	for _, r := range app.Echo.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{"GET /health", "POST /export", "POST /export/xlsx", "POST /quote/next-number"} {
		assert.True(t, routes[want], "missing route %s", want)
	}

	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"templates":null`)
}

func TestInitializeBadLayoutsDir(t *testing.T) {
	t.Setenv("QUOTES_DISABLE_DB", "true")
	t.Setenv("LAYOUTS_DIR", "/nonexistent/layouts")

	err := NewApp().Initialize(context.Background())
	assert.ErrorContains(t, err, "failed to load layouts")
}
