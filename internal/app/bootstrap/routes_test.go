package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/collabhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func TestBuildHandler_RoutesAndAuth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coreCfg := &config.CoreConfig{}
	appCfg := AppConfig{
		SessionKey:  "test-key-0123456789012345678901",
		SessionName: "collabhub-test",
	}
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}

	if err := Startup(ctx, coreCfg, appCfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("startup: %v", err)
	}
	handler, err := BuildHandler(coreCfg, appCfg, deps, zap.NewNop())
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}

	// Health is public.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health: %d, want 200", rec.Code)
	}

	// Everything behind the session gate answers 401 when signed out.
	for _, target := range []string{"/projects", "/invites"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s signed out: %d, want 401", target, rec.Code)
		}
	}

	// Without call provisioning configured the calls routes are absent.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/000000000000000000000000/calls/default/token", nil))
	if rec.Code == http.StatusOK {
		t.Errorf("calls route should not succeed without provisioning")
	}
}
