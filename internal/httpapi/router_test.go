package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"canteenadmin/internal/bus"
	"canteenadmin/pkg/config"

	"go.uber.org/zap"
)

// The pool stays nil; none of the exercised routes reach the database.
func testRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Dependencies{
		Cfg: config.Config{
			JWTSecret:      "test-secret",
			AllowedOrigins: []string{"http://localhost:5173"},
			UploadDir:      t.TempDir(),
		},
		Bus:    bus.New(),
		Logger: zap.NewNop(),
	})
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	testRouter(t).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestUnknownRouteReturnsErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/nope", nil)

	testRouter(t).ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("error code = %q, want NOT_FOUND", body.Error.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	paths := []string{"/v1/accounts", "/v1/topups", "/v1/badges", "/v1/restrictions", "/v1/audit"}
	router := testRouter(t)

	for _, p := range paths {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, p, nil)

		router.ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s status = %d, want %d", p, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/v1/register", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)

	testRouter(t).ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin = %q", got)
	}
}
