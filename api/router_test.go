package api

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/gamexport/cache"
	"github.com/use-agent/gamexport/config"
	"github.com/use-agent/gamexport/engine"
	"github.com/use-agent/gamexport/exporter"
	"github.com/use-agent/gamexport/models"
)

const testKey = "test-key"

// profileServer serves alice's library: two entries on every page, so
// page 2 repeats page 1 and the export stops there.
func profileServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/u/alice/games/":
			fmt.Fprint(w, `<html><body>
				<div class="rating-hover"><div class="game-text-centered">Outer Wilds</div><div class="stars-top" style="width:100%"></div></div>
				<div class="rating-hover"><div class="game-text-centered">Celeste, Deluxe</div><div class="stars-top" style="width:90%"></div></div>
			</body></html>`)
		case "/u/httpster/games/":
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, `<div class="rating-hover"><div class="game-text-centered">Hades</div><div class="stars-top" style="width:80%"></div></div>`)
				return
			}
			fmt.Fprint(w, `<html><body></body></html>`)
		case "/u/broken/games/":
			fmt.Fprint(w, `<div class="rating-hover"><div class="stars-top" style="width:abc%"></div></div>`)
		default:
			fmt.Fprint(w, `<html><body></body></html>`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, site string, mutate func(*config.Config)) (*gin.Engine, *cache.Cache) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Fetch.Site = site
	cfg.Server.Mode = gin.TestMode
	cfg.Auth.APIKeys = []string{testKey}
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100}
	if mutate != nil {
		mutate(&cfg)
	}

	eng := engine.NewHTTPEngine(engine.HTTPOptions{Timeout: 5 * time.Second})
	t.Cleanup(func() { eng.Close() })
	runner, err := exporter.NewRunner(&cfg, eng)
	require.NoError(t, err)

	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	t.Cleanup(cc.Close)
	return NewRouter(runner, &cfg, cc, time.Now()), cc
}

func get(r http.Handler, path string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authed {
		req.Header.Set("X-API-Key", testKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth_NoAuth(t *testing.T) {
	var hits int32
	r, _ := newTestRouter(t, profileServer(t, &hits).URL, nil)

	w := get(r, "/api/v1/health", false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "http", resp.Engine)
	assert.Equal(t, models.Version, resp.Version)
}

func TestGames_JSON(t *testing.T) {
	var hits int32
	r, _ := newTestRouter(t, profileServer(t, &hits).URL, nil)

	w := get(r, "/api/v1/users/alice/games", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, models.StopDuplicatePage, resp.StopReason)
	assert.Equal(t, 2, resp.LastPage)
	assert.Equal(t, "miss", resp.CacheStatus)
	assert.Equal(t, []models.GameRecord{
		{Title: "Outer Wilds", Rating: 5.0},
		{Title: "Celeste, Deluxe", Rating: 4.5},
	}, resp.Records)
}

func TestGames_UsernameStartingWithHTTP(t *testing.T) {
	var hits int32
	r, _ := newTestRouter(t, profileServer(t, &hits).URL, nil)

	w := get(r, "/api/v1/users/httpster/games", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "httpster", resp.Username)
	assert.Equal(t, []models.GameRecord{{Title: "Hades", Rating: 4.0}}, resp.Records)
	assert.Equal(t, models.StopEmptyPage, resp.StopReason)
}

func TestGames_CSV(t *testing.T) {
	var hits int32
	r, _ := newTestRouter(t, profileServer(t, &hits).URL, nil)

	w := get(r, "/api/v1/users/alice/games?format=csv", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="alice_games.csv"`)

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Title", "Rating"},
		{"Outer Wilds", "5.0"},
		{"Celeste, Deluxe", "4.5"},
	}, rows)
}

func TestGames_CacheHit(t *testing.T) {
	var hits int32
	r, cc := newTestRouter(t, profileServer(t, &hits).URL, nil)

	require.Equal(t, http.StatusOK, get(r, "/api/v1/users/alice/games", true).Code)
	first := atomic.LoadInt32(&hits)
	assert.Equal(t, 1, cc.Len())

	w := get(r, "/api/v1/users/alice/games", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, atomic.LoadInt32(&hits), "cached export should not refetch")

	var resp models.ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hit", resp.CacheStatus)
	assert.Equal(t, 2, resp.Count)
}

func TestGames_Errors(t *testing.T) {
	var hits int32
	site := profileServer(t, &hits).URL
	lenient, _ := newTestRouter(t, site, nil)
	strict, _ := newTestRouter(t, site, func(c *config.Config) { c.Fetch.Strict = true })

	tests := []struct {
		name   string
		router http.Handler
		path   string
		authed bool
		status int
		code   string
	}{
		{"missing key", lenient, "/api/v1/users/alice/games", false, http.StatusUnauthorized, models.ErrCodeUnauthorized},
		{"bad format", lenient, "/api/v1/users/alice/games?format=xml", true, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"strict violation", strict, "/api/v1/users/broken/games", true, http.StatusUnprocessableEntity, models.ErrCodeStrictViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(tt.router, tt.path, tt.authed)
			require.Equal(t, tt.status, w.Code, w.Body.String())

			var resp models.ExportResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestGames_LenientDefaults(t *testing.T) {
	var hits int32
	r, _ := newTestRouter(t, profileServer(t, &hits).URL, nil)

	w := get(r, "/api/v1/users/broken/games", true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []models.GameRecord{{Title: models.UnknownTitle, Rating: 0}}, resp.Records)
}
