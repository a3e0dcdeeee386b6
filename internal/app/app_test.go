package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/badminton-tournament/internal/config"
	"github.com/riskibarqy/badminton-tournament/internal/domain/pairing"
	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
	"github.com/riskibarqy/badminton-tournament/internal/platform/resilience"
)

func testConfig() config.Config {
	return config.Config{
		HTTPAddr:              ":0",
		ReadTimeout:           time.Second,
		WriteTimeout:          time.Second,
		CORSAllowedOrigins:    []string{"*"},
		StorageDriver:         config.StorageDriverMemory,
		CacheEnabled:          true,
		CacheTTL:              time.Minute,
		StorageCircuit:        resilience.DefaultCircuitBreakerConfig(),
		StorageKey:            "badminton_tournament",
		StorageBackupPrefix:   "badminton_tournament_backup_",
		StorageSizeWarnBytes:  4 << 20,
		AutosaveEnabled:       true,
		DefaultTournamentName: "Club Night",
		Pairing:               pairing.DefaultPolicy(),
		PairingSeed:           7,
	}
}

func TestNew_MemoryStorage(t *testing.T) {
	a, err := New(t.Context(), testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	for _, name := range []string{"Ana", "Bo", "Cy", "Di"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/players", strings.NewReader(`{"name":"`+name+`"}`))
		rec := httptest.NewRecorder()
		a.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("add player %s: status=%d body=%s", name, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/rounds", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate round: status=%d body=%s", rec.Code, rec.Body.String())
	}

	current, err := a.Tournaments.Tournament(t.Context())
	if err != nil {
		t.Fatalf("current tournament: %v", err)
	}
	if current.Name != "Club Night" {
		t.Fatalf("expected configured default name, got %q", current.Name)
	}
	if current.CurrentRound != 1 {
		t.Fatalf("expected round 1, got %d", current.CurrentRound)
	}
}

func TestNew_RequiresAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""
	if _, err := New(t.Context(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
