package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/okrel/parley/internal/adapters/signal"
	"github.com/okrel/parley/internal/app"
	"github.com/okrel/parley/internal/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:       "release",
		StaticPath: t.TempDir(),
		Secret:     "test",
	}
	ctl := signal.NewSignalWSController(app.NewStore(), nil)
	return SetupRouter(context.Background(), cfg, ctl)
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRootRedirectsToIndex(t *testing.T) {
	r := newTestRouter(t)
	w := doGet(r, "/")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/index.html" {
		t.Fatalf("got %d -> %q", w.Code, w.Header().Get("Location"))
	}
}

func TestTrailingSlashCanonicalized(t *testing.T) {
	r := newTestRouter(t)
	w := doGet(r, "/join/lobby/?a=1")
	if w.Code != http.StatusMovedPermanently || w.Header().Get("Location") != "/join/lobby?a=1" {
		t.Fatalf("got %d -> %q", w.Code, w.Header().Get("Location"))
	}
}

func TestJoinWithoutRoomRedirectsHome(t *testing.T) {
	r := newTestRouter(t)
	w := doGet(r, "/join")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("got %d -> %q", w.Code, w.Header().Get("Location"))
	}
}

func TestJoinWithQueryRedirectsToBarePath(t *testing.T) {
	r := newTestRouter(t)
	w := doGet(r, "/join/lobby?name=alice")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/join/lobby" {
		t.Fatalf("got %d -> %q", w.Code, w.Header().Get("Location"))
	}
}

func TestStatsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	w := doGet(r, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("stats returned %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("stats content type %q", ct)
	}
}
