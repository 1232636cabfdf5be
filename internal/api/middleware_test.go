package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAdminAuthWithoutToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)

	AdminAuth("secret")(next).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAdminAuthRejectsStandardRole(t *testing.T) {
	tok, err := IssueSessionToken("secret", "acc-1", "kid@example.edu", "standard", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	r.Header.Set("Authorization", "Bearer "+tok)

	AdminAuth("secret")(next).ServeHTTP(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAdminAuthAttachesIdentity(t *testing.T) {
	tok, err := IssueSessionToken("secret", "acc-1", "admin@example.edu", "admin", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		id := IdentityFromContext(r.Context())
		if id == nil {
			t.Fatalf("identity not in context")
		}
		if id.AccountID != "acc-1" || id.Role != "admin" {
			t.Fatalf("identity = %+v", id)
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	r.Header.Set("Authorization", "Bearer "+tok)

	AdminAuth("secret")(next).ServeHTTP(w, r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestUserAuthAcceptsStandardRole(t *testing.T) {
	tok, err := IssueSessionToken("secret", "acc-2", "kid@example.edu", "standard", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/reservations/mine", nil)
	r.Header.Set("Authorization", "Bearer "+tok)

	UserAuth("secret")(next).ServeHTTP(w, r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestBearerTokenParsing(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer  abc ", "abc"},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(r); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
