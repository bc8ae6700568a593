package scenariod

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
)

func newTestServer(t *testing.T) (*HTTPServer, *RunStore) {
	t.Helper()
	store, exec := newTestExecutor(t)
	return NewHTTPServer(store, exec, NewBroadcaster()), store
}

func postJSON(t *testing.T, srv *HTTPServer, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func getJSON(t *testing.T, srv *HTTPServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return body
}

func TestHTTPServerHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := getJSON(t, srv, "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
	if body["backend"] != "fallback" {
		t.Fatalf("expected backend fallback, got %v", body["backend"])
	}
}

func TestHTTPServerCreateRun(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := postJSON(t, srv, "/v1/runs", map[string]any{
		"parameters": testParams(),
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	run, ok := body["run"].(map[string]any)
	if !ok {
		t.Fatalf("expected run in response")
	}
	if run["id"] == "" {
		t.Fatalf("expected run ID to be assigned")
	}
	if run["status"] != string(models.RunStatusPending) {
		t.Fatalf("expected pending status, got %v", run["status"])
	}
}

func TestHTTPServerCreateRunMissingParameters(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := postJSON(t, srv, "/v1/runs", map[string]any{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHTTPServerCreateRunInvalidParameters(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := postJSON(t, srv, "/v1/runs", map[string]any{
		"parameters": map[string]any{
			"years":      0,
			"iterations": 10,
			"variables":  []string{"temperature"},
		},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHTTPServerCreateRunDuplicate(t *testing.T) {
	srv, _ := newTestServer(t)

	req := map[string]any{"run_id": "run-dup", "parameters": testParams()}
	if rr := postJSON(t, srv, "/v1/runs", req); rr.Code != http.StatusCreated {
		t.Fatalf("first create failed: %d", rr.Code)
	}
	if rr := postJSON(t, srv, "/v1/runs", req); rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestHTTPServerListRuns(t *testing.T) {
	srv, store := newTestServer(t)
	for _, id := range []string{"run-a", "run-b"} {
		if _, err := store.Create(id, testParams(), "", ""); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}

	rr := getJSON(t, srv, "/v1/runs")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	runs, ok := body["runs"].([]any)
	if !ok {
		t.Fatalf("expected runs array")
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
}

func TestHTTPServerGetRun(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.Create("run-1", testParams(), "", ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rr := getJSON(t, srv, "/v1/runs/run-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	rr = getJSON(t, srv, "/v1/runs/missing")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHTTPServerStartAndLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.Create("run-1", testParams(), "", ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rr := postJSON(t, srv, "/v1/runs/run-1:start", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	run, _ := body["run"].(map[string]any)
	if run["status"] != string(models.RunStatusRunning) {
		t.Fatalf("expected running, got %v", run["status"])
	}

	final := waitForTerminal(t, store, "run-1")
	if final.Run.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed, got %s", final.Run.Status)
	}
}

func TestHTTPServerStartUnknownRun(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := postJSON(t, srv, "/v1/runs/missing:start", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHTTPServerStartTerminalRunConflicts(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.Create("run-1", testParams(), "", ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := store.SetStatus("run-1", models.RunStatusCompleted, ""); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	rr := postJSON(t, srv, "/v1/runs/run-1:start", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestHTTPServerStopRun(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.Create("run-1", testParams(), "", ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rr := postJSON(t, srv, "/v1/runs/run-1:start", nil); rr.Code != http.StatusOK {
		t.Fatalf("start failed: %d", rr.Code)
	}

	rr := postJSON(t, srv, "/v1/runs/run-1:stop", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	run, _ := body["run"].(map[string]any)
	if run["status"] != string(models.RunStatusCancelled) {
		t.Fatalf("expected cancelled, got %v", run["status"])
	}
}

func TestHTTPServerScenarios(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.Create("run-1", testParams(), "", ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Before completion the scenario ensemble is unavailable.
	rr := getJSON(t, srv, "/v1/runs/run-1/scenarios")
	if rr.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected status 412, got %d", rr.Code)
	}

	if rr := postJSON(t, srv, "/v1/runs/run-1:start", nil); rr.Code != http.StatusOK {
		t.Fatalf("start failed: %d", rr.Code)
	}
	waitForTerminal(t, store, "run-1")

	rr = getJSON(t, srv, "/v1/runs/run-1/scenarios")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	scenarios, ok := body["scenarios"].([]any)
	if !ok {
		t.Fatalf("expected scenarios array")
	}
	if len(scenarios) != 4 {
		t.Fatalf("expected 4 scenarios, got %d", len(scenarios))
	}

	rr = getJSON(t, srv, "/v1/runs/run-1/scenarios?limit=2")
	body = decodeBody(t, rr)
	scenarios, _ = body["scenarios"].([]any)
	if len(scenarios) != 2 {
		t.Fatalf("expected limit 2, got %d", len(scenarios))
	}
}

func TestHTTPServerSelect(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.Create("run-1", testParams(), "", ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rr := postJSON(t, srv, "/v1/runs/run-1:start", nil); rr.Code != http.StatusOK {
		t.Fatalf("start failed: %d", rr.Code)
	}
	waitForTerminal(t, store, "run-1")

	rr := postJSON(t, srv, "/v1/runs/run-1/select", map[string]any{
		"criteria":       "extremeWeatherEvents",
		"max_iterations": 100,
		"seed":           42,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	selected, ok := body["selected"].([]any)
	if !ok {
		t.Fatalf("expected selected array")
	}
	if len(selected) > 5 {
		t.Fatalf("expected at most 5 selections, got %d", len(selected))
	}
}

func TestHTTPServerSelectInvalidCriteria(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.Create("run-1", testParams(), "", ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rr := postJSON(t, srv, "/v1/runs/run-1:start", nil); rr.Code != http.StatusOK {
		t.Fatalf("start failed: %d", rr.Code)
	}
	waitForTerminal(t, store, "run-1")

	rr := postJSON(t, srv, "/v1/runs/run-1/select", map[string]any{
		"criteria":       "extremeWeatherEvents",
		"max_iterations": 0,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHTTPServerPerf(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.Create("run-1", testParams(), "", ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rr := postJSON(t, srv, "/v1/runs/run-1:start", nil); rr.Code != http.StatusOK {
		t.Fatalf("start failed: %d", rr.Code)
	}
	waitForTerminal(t, store, "run-1")

	rr := getJSON(t, srv, "/v1/runs/run-1/perf")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	metrics, ok := body["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("expected metrics object")
	}
	if metrics["total_operations"].(float64) < 1 {
		t.Fatalf("expected at least one recorded operation")
	}
	if _, ok := body["recommendations"]; !ok {
		t.Fatalf("expected recommendations field")
	}
}

func TestHTTPServerMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/runs", nil)
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/runs/run-1:start", nil)
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}
