package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/seenimoa/regwacc/internal/beta"
	"github.com/seenimoa/regwacc/internal/capm"
	"github.com/seenimoa/regwacc/internal/config"
	"github.com/seenimoa/regwacc/internal/examples"
	"github.com/seenimoa/regwacc/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func testServer(t *testing.T) *Server {
	t.Helper()
	data := examples.Default()
	chain := beta.NewChain(nil, time.Second, beta.NewExamples(data))
	svc := capm.NewService(beta.NewResolver(chain), data, nil)
	return NewServer(&config.Config{}, svc, nil)
}

// failingResolver always errors with something that is not a client error.
type failingResolver struct{}

func (failingResolver) Resolve(context.Context, beta.Input) (beta.Estimate, error) {
	return beta.Estimate{}, errors.New("upstream down")
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// decodeData decodes the envelope's data field into v.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !env.Success {
		t.Fatalf("expected success, got error %q", env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ════════════════════════════════════════════════════════════════════
// Health
// ════════════════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	srv := testServer(t)
	srv.SetVersion("1.2.3")

	for _, path := range []string{"/health", "/api/v1/health"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", rec.Code)
			}
			var info HealthInfo
			decodeData(t, rec, &info)
			if info.Status != "ok" || info.Version != "1.2.3" {
				t.Errorf("health: got %+v", info)
			}
			if len(info.BetaSources) != 1 || info.BetaSources[0] != "examples" {
				t.Errorf("BetaSources: got %v", info.BetaSources)
			}
			if info.Examples != 3 {
				t.Errorf("Examples: got %d, want 3", info.Examples)
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// POST /api/v1/capm
// ════════════════════════════════════════════════════════════════════

func TestCAPMFromExample(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/capm", `{"ticker":"NG.L"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp models.CAPMResponse
	decodeData(t, rec, &resp)

	if resp.ID == "" {
		t.Error("ID should be set")
	}
	if !near(resp.Outputs.CostOfEquity, 0.03995) {
		t.Errorf("CostOfEquity: got %v, want 0.03995", resp.Outputs.CostOfEquity)
	}
	if resp.Outputs.VanillaWACC == nil || !near(*resp.Outputs.VanillaWACC, 0.02798) {
		t.Errorf("VanillaWACC: got %v, want 0.02798", resp.Outputs.VanillaWACC)
	}
	if resp.Inputs.BetaSource != "examples" {
		t.Errorf("BetaSource: got %q", resp.Inputs.BetaSource)
	}
}

func TestCAPMExplicitInputsWireNames(t *testing.T) {
	body := `{"riskFreeRate":0.012,"totalMarketReturn":0.055,"equityBeta":1,"gearing":0.6,"costOfDebt":0.02,"debtBeta":0.1,"inflationRate":0.02}`
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/capm", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	raw := rec.Body.String()
	for _, key := range []string{`"costOfEquity"`, `"vanillaWACC"`, `"equityRiskPremium"`, `"converted"`, `"debtBeta":0.1`} {
		if !strings.Contains(raw, key) {
			t.Errorf("response missing %s: %s", key, raw)
		}
	}
}

func TestCAPMErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"malformed body", `{"ticker":`, http.StatusBadRequest, "invalid request body"},
		{"misspelt field", `{"ticker":"NG.L","equitybeta":0.7}`, http.StatusBadRequest, `invalid request body: json: unknown field "equitybeta"`},
		{"trailing data", `{"ticker":"NG.L"} {"equityBeta":0.7}`, http.StatusBadRequest, "invalid request body: unexpected data after JSON object"},
		{
			"missing beta",
			`{"ticker":"XYZ","riskFreeRate":0.012,"totalMarketReturn":0.055}`,
			http.StatusBadRequest,
			capm.MissingBetaMessage,
		},
		{"missing rates", `{"equityBeta":0.7}`, http.StatusBadRequest, ""},
		{"full gearing", `{"ticker":"NG.L","gearing":1,"useNotionalGearing":true}`, http.StatusBadRequest, ""},
		{"bad basis", `{"ticker":"NG.L","basis":"cpih"}`, http.StatusBadRequest, ""},
		{"unknown preset", `{"equityBeta":0.7,"riskFreePreset":"nope","totalMarketReturn":0.05}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, testServer(t), http.MethodPost, "/api/v1/capm", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decodeResponse(t, rec)
			if resp.Success {
				t.Error("Success should be false")
			}
			if resp.Error == "" {
				t.Error("Error should be set")
			}
			if tt.message != "" && !strings.HasPrefix(resp.Error, tt.message) {
				t.Errorf("Error: got %q, want prefix %q", resp.Error, tt.message)
			}
		})
	}
}

func TestCAPMUnexpectedErrorIs500(t *testing.T) {
	svc := capm.NewService(failingResolver{}, examples.Default(), nil)
	srv := NewServer(&config.Config{}, svc, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/capm", `{"ticker":"NG.L"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error != internalErrorMessage {
		t.Errorf("Error: got %q, want %q", resp.Error, internalErrorMessage)
	}
	if strings.Contains(rec.Body.String(), "upstream down") {
		t.Errorf("500 body leaks the internal error: %s", rec.Body.String())
	}
}

// ════════════════════════════════════════════════════════════════════
// Lever / Basis
// ════════════════════════════════════════════════════════════════════

func TestLeverEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodPost, "/api/v1/lever", `{"mode":"delever","beta":0.65,"gearing":0.6,"taxRate":0.25}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var resp models.LeverResponse
	decodeData(t, rec, &resp)
	if !near(resp.Result, 0.65/2.125) {
		t.Errorf("Result: got %v, want %v", resp.Result, 0.65/2.125)
	}

	rec = do(t, srv, http.MethodPost, "/api/v1/lever", `{"mode":"delever","beta":0.65,"gearing":1,"taxRate":0.25}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("gearing 1: got %d, want 400", rec.Code)
	}
}

func TestBasisEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodPost, "/api/v1/basis", `{"rate":0.046,"inflationRate":0.03,"from":"nominal","to":"real"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var resp models.BasisResponse
	decodeData(t, rec, &resp)
	if math.Abs(resp.Result-0.01553) > 1e-5 {
		t.Errorf("Result: got %v, want ~0.01553", resp.Result)
	}

	rec = do(t, srv, http.MethodPost, "/api/v1/basis", `{"rate":0.046,"inflationRate":0.03,"from":"cpih"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad basis: got %d, want 400", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// Reference data
// ════════════════════════════════════════════════════════════════════

func TestExamplesEndpoints(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/examples", "")
	var list []examples.Example
	decodeData(t, rec, &list)
	if len(list) != 3 {
		t.Fatalf("examples: got %d, want 3", len(list))
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/examples/ng", "")
	var ex examples.Example
	decodeData(t, rec, &ex)
	if ex.Ticker != "NG.L" || ex.EquityBeta != 0.65 {
		t.Errorf("example: got %+v", ex)
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/examples/UU.L", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown example: got %d, want 404", rec.Code)
	}
}

func TestPresetsEndpoint(t *testing.T) {
	rec := do(t, testServer(t), http.MethodGet, "/api/v1/presets", "")
	var list []map[string]interface{}
	decodeData(t, rec, &list)
	if len(list) != 5 {
		t.Errorf("presets: got %d, want 5", len(list))
	}
}

func TestBetaEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/beta/svt", "")
	var est beta.Estimate
	decodeData(t, rec, &est)
	if est.Value != 0.72 || est.Source != "examples" || est.Ticker != "SVT.L" {
		t.Errorf("beta: got %+v", est)
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/beta/XYZ", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown beta: got %d, want 404", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// Config
// ════════════════════════════════════════════════════════════════════

func TestConfigHidesSecrets(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "")
	t.Setenv("REGWACC_BETA_FINNHUB_KEY", "")

	cfg := &config.Config{Beta: config.BetaConfig{FinnhubKey: "fh-secret-key-abcdef"}}
	srv := NewServer(cfg, nil, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "fh-secret-key-abcdef") {
		t.Error("config endpoint leaks the Finnhub key")
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/config/keys", "")
	var keys []config.KeyStatus
	decodeData(t, rec, &keys)
	if len(keys) != 1 || keys[0].Masked != "fh-...def" || keys[0].Source != config.KeySourceConfig {
		t.Errorf("keys: got %+v", keys)
	}
}

// ════════════════════════════════════════════════════════════════════
// Routing and middleware
// ════════════════════════════════════════════════════════════════════

func TestUnknownRouteAndMethod(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route: got %d, want 404", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Success || resp.Error == "" {
		t.Errorf("unknown route body: got %+v", resp)
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/capm", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /capm: got %d, want 405", rec.Code)
	}
}

func TestRecovererReturnsJSON(t *testing.T) {
	r := chi.NewRouter()
	r.Use(recoverer(zap.NewNop()))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Success || resp.Error != "unexpected error" {
		t.Errorf("body: got %+v", resp)
	}
}
