package httpapi

import (
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/badminton-tournament/internal/domain/pairing"
	"github.com/riskibarqy/badminton-tournament/internal/domain/snapshot"
	"github.com/riskibarqy/badminton-tournament/internal/infrastructure/repository/memory"
	snapshotmock "github.com/riskibarqy/badminton-tournament/internal/mocks/domain/snapshot"
	"github.com/riskibarqy/badminton-tournament/internal/platform/id"
	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
	"github.com/riskibarqy/badminton-tournament/internal/usecase"
	"github.com/stretchr/testify/mock"
)

type envelope struct {
	APIVersion string         `json:"apiVersion"`
	Data       any            `json:"data"`
	Error      map[string]any `json:"error"`
}

func newTestRouter(repo snapshot.Repository) http.Handler {
	logger := logging.NewNop()
	ids := &id.Sequence{}
	engine := pairing.NewEngine(rand.New(rand.NewSource(11)), id.WithPrefix("match", ids), pairing.DefaultPolicy())
	storage := usecase.NewStorageService(repo, usecase.DefaultStorageConfig(), logger)
	tournaments := usecase.NewTournamentService(engine, storage, ids, usecase.TournamentServiceConfig{Autosave: true}, logger)
	return NewRouter(NewHandler(tournaments, logger), logger, RouterConfig{CORSAllowedOrigins: []string{"*"}})
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: unmarshal body %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func dataObject(t *testing.T, env envelope) map[string]any {
	t.Helper()
	obj, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", env.Data)
	}
	return obj
}

func dataList(t *testing.T, env envelope) []any {
	t.Helper()
	list, ok := env.Data.([]any)
	if !ok {
		t.Fatalf("expected data list, got %T", env.Data)
	}
	return list
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(memory.NewSnapshotRepository())

	rec, env := doRequest(t, router, http.MethodGet, "/healthz", "")
	expectStatus(t, rec, http.StatusOK)
	if got := dataObject(t, env)["status"]; got != "ok" {
		t.Fatalf("expected status ok, got %v", got)
	}
}

func TestRouter_TournamentFlow(t *testing.T) {
	router := newTestRouter(memory.NewSnapshotRepository())

	rec, env := doRequest(t, router, http.MethodGet, "/v1/tournament", "")
	expectStatus(t, rec, http.StatusNotFound)
	if got := env.Error["status"]; got != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", got)
	}

	rec, env = doRequest(t, router, http.MethodPost, "/v1/tournament", `{"name":"Club Night"}`)
	expectStatus(t, rec, http.StatusCreated)
	if got := dataObject(t, env)["name"]; got != "Club Night" {
		t.Fatalf("expected created tournament name, got %v", got)
	}

	for _, name := range []string{"Ana", "Budi", "Citra", "Dewi"} {
		rec, _ = doRequest(t, router, http.MethodPost, "/v1/players", `{"name":"`+name+`"}`)
		expectStatus(t, rec, http.StatusCreated)
	}

	badPlayers := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{}`},
		{name: "unknown field", body: `{"name":"Eko","rating":5}`},
		{name: "malformed json", body: `{"name":`},
		{name: "duplicate name", body: `{"name":"ana"}`},
	}
	for _, tc := range badPlayers {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := doRequest(t, router, http.MethodPost, "/v1/players", tc.body)
			expectStatus(t, rec, http.StatusBadRequest)
			if got := env.Error["status"]; got != "INVALID_ARGUMENT" {
				t.Fatalf("expected INVALID_ARGUMENT, got %v", got)
			}
		})
	}

	rec, env = doRequest(t, router, http.MethodGet, "/v1/tournament/status", "")
	expectStatus(t, rec, http.StatusOK)
	if status := dataObject(t, env); status["status"] != "setup" || status["can_start"] != true {
		t.Fatalf("unexpected status: %v", status)
	}

	rec, env = doRequest(t, router, http.MethodPost, "/v1/rounds", "")
	expectStatus(t, rec, http.StatusCreated)
	round := dataObject(t, env)["round"].(map[string]any)
	if round["number"] != float64(1) {
		t.Fatalf("expected round 1, got %v", round["number"])
	}
	matches := round["matches"].([]any)
	if len(matches) != 1 {
		t.Fatalf("expected one match, got %d", len(matches))
	}
	matchID := matches[0].(map[string]any)["id"].(string)

	rec, env = doRequest(t, router, http.MethodPost, "/v1/players", `{"name":"Eko"}`)
	expectStatus(t, rec, http.StatusConflict)
	if got := env.Error["status"]; got != "FAILED_PRECONDITION" {
		t.Fatalf("expected FAILED_PRECONDITION, got %v", got)
	}
	rec, _ = doRequest(t, router, http.MethodPost, "/v1/rounds", "")
	expectStatus(t, rec, http.StatusConflict)

	rec, _ = doRequest(t, router, http.MethodPost, "/v1/matches/"+matchID+"/result", `{"winner":3}`)
	expectStatus(t, rec, http.StatusBadRequest)
	rec, _ = doRequest(t, router, http.MethodPost, "/v1/matches/match_missing/result", `{"winner":1}`)
	expectStatus(t, rec, http.StatusNotFound)

	rec, env = doRequest(t, router, http.MethodPost, "/v1/matches/"+matchID+"/result", `{"winner":1}`)
	expectStatus(t, rec, http.StatusOK)
	if got := dataObject(t, env)["status"]; got != "completed" {
		t.Fatalf("expected completed match, got %v", got)
	}

	rec, env = doRequest(t, router, http.MethodGet, "/v1/rankings", "")
	expectStatus(t, rec, http.StatusOK)
	rankings := dataList(t, env)
	if len(rankings) != 4 {
		t.Fatalf("expected 4 rankings, got %d", len(rankings))
	}
	top := rankings[0].(map[string]any)
	if top["rank"] != float64(1) || top["score"] != float64(2) {
		t.Fatalf("unexpected leader: %v", top)
	}

	rec, env = doRequest(t, router, http.MethodGet, "/v1/players/"+top["player_id"].(string), "")
	expectStatus(t, rec, http.StatusOK)
	if got := dataObject(t, env)["score"]; got != float64(2) {
		t.Fatalf("expected leader score 2, got %v", got)
	}
	rec, _ = doRequest(t, router, http.MethodGet, "/v1/players/player_missing", "")
	expectStatus(t, rec, http.StatusNotFound)

	rec, env = doRequest(t, router, http.MethodGet, "/v1/rounds/current", "")
	expectStatus(t, rec, http.StatusOK)
	if got := dataObject(t, env)["status"]; got != "completed" {
		t.Fatalf("expected completed round, got %v", got)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/rounds/abc", "")
	expectStatus(t, rec, http.StatusBadRequest)
	rec, _ = doRequest(t, router, http.MethodGet, "/v1/rounds/9", "")
	expectStatus(t, rec, http.StatusNotFound)

	rec, env = doRequest(t, router, http.MethodDelete, "/v1/matches/"+matchID+"/result", "")
	expectStatus(t, rec, http.StatusOK)
	if got := dataObject(t, env)["status"]; got != "pending" {
		t.Fatalf("expected pending match after reset, got %v", got)
	}

	rec, env = doRequest(t, router, http.MethodGet, "/v1/matches?status=pending", "")
	expectStatus(t, rec, http.StatusOK)
	if got := len(dataList(t, env)); got != 1 {
		t.Fatalf("expected one pending match, got %d", got)
	}
	rec, _ = doRequest(t, router, http.MethodGet, "/v1/matches?status=later", "")
	expectStatus(t, rec, http.StatusBadRequest)

	rec, env = doRequest(t, router, http.MethodGet, "/v1/stats", "")
	expectStatus(t, rec, http.StatusOK)
	if got := dataObject(t, env)["pending_matches"]; got != float64(1) {
		t.Fatalf("expected 1 pending match in stats, got %v", got)
	}
}

func TestRouter_SettingsLockedWhileActive(t *testing.T) {
	router := newTestRouter(memory.NewSnapshotRepository())
	for _, name := range []string{"Ana", "Budi", "Citra", "Dewi"} {
		rec, _ := doRequest(t, router, http.MethodPost, "/v1/players", `{"name":"`+name+`"}`)
		expectStatus(t, rec, http.StatusCreated)
	}

	rec, _ := doRequest(t, router, http.MethodPut, "/v1/settings", `{"mode":"mixed"}`)
	expectStatus(t, rec, http.StatusBadRequest)
	rec, _ = doRequest(t, router, http.MethodPut, "/v1/settings", `{"winner_points":2,"loser_points":2}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec, env := doRequest(t, router, http.MethodPut, "/v1/settings", `{"mode":"doubles","winner_points":3}`)
	expectStatus(t, rec, http.StatusOK)
	if settings := dataObject(t, env); settings["mode"] != "doubles" || settings["winner_points"] != float64(3) {
		t.Fatalf("unexpected settings: %v", settings)
	}

	rec, _ = doRequest(t, router, http.MethodPost, "/v1/tournament/start", "")
	expectStatus(t, rec, http.StatusOK)
	rec, _ = doRequest(t, router, http.MethodPut, "/v1/settings", `{"winner_points":4}`)
	expectStatus(t, rec, http.StatusConflict)
}

func TestRouter_StorageEndpoints(t *testing.T) {
	router := newTestRouter(memory.NewSnapshotRepository())
	for _, name := range []string{"Ana", "Budi", "Citra", "Dewi"} {
		rec, _ := doRequest(t, router, http.MethodPost, "/v1/players", `{"name":"`+name+`"}`)
		expectStatus(t, rec, http.StatusCreated)
	}

	rec, _ := doRequest(t, router, http.MethodGet, "/v1/export", "")
	expectStatus(t, rec, http.StatusOK)
	exported := rec.Body.String()
	if !strings.Contains(exported, `"version": "1.0.0"`) || !strings.Contains(exported, `"players"`) {
		t.Fatalf("unexpected export document: %s", exported)
	}

	rec, env := doRequest(t, router, http.MethodPost, "/v1/backups", "")
	expectStatus(t, rec, http.StatusCreated)
	key, _ := dataObject(t, env)["key"].(string)
	if !strings.HasPrefix(key, "badminton_tournament_backup_") {
		t.Fatalf("unexpected backup key %q", key)
	}

	rec, env = doRequest(t, router, http.MethodGet, "/v1/backups", "")
	expectStatus(t, rec, http.StatusOK)
	if got := len(dataList(t, env)); got != 1 {
		t.Fatalf("expected 1 backup, got %d", got)
	}

	rec, _ = doRequest(t, router, http.MethodPost, "/v1/import", `{"id":"t1"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec, env = doRequest(t, router, http.MethodPost, "/v1/import", exported)
	expectStatus(t, rec, http.StatusOK)
	if got := len(dataObject(t, env)["players"].([]any)); got != 4 {
		t.Fatalf("expected 4 imported players, got %d", got)
	}

	rec, _ = doRequest(t, router, http.MethodPost, "/v1/backups/"+key+"/restore", "")
	expectStatus(t, rec, http.StatusOK)
	rec, _ = doRequest(t, router, http.MethodPost, "/v1/backups/badminton_tournament/restore", "")
	expectStatus(t, rec, http.StatusBadRequest)

	rec, env = doRequest(t, router, http.MethodPut, "/v1/storage/autosave", `{"enabled":false}`)
	expectStatus(t, rec, http.StatusOK)
	rec, env = doRequest(t, router, http.MethodGet, "/v1/storage/stats", "")
	expectStatus(t, rec, http.StatusOK)
	stats := dataObject(t, env)
	if stats["has_tournament"] != true || stats["backup_count"] != float64(1) || stats["autosave"] != false {
		t.Fatalf("unexpected storage stats: %v", stats)
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/v1/backups/"+key, "")
	expectStatus(t, rec, http.StatusOK)
	rec, _ = doRequest(t, router, http.MethodPost, "/v1/backups/"+key+"/restore", "")
	expectStatus(t, rec, http.StatusNotFound)
}

func TestRouter_StorageUnavailable(t *testing.T) {
	repo := snapshotmock.NewRepository(t)
	repo.On("ListByPrefix", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	router := newTestRouter(repo)

	rec, env := doRequest(t, router, http.MethodGet, "/v1/backups", "")
	expectStatus(t, rec, http.StatusServiceUnavailable)
	if got := env.Error["status"]; got != "UNAVAILABLE" {
		t.Fatalf("expected UNAVAILABLE, got %v", got)
	}
}
