package api

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tok, err := IssueSessionToken("secret", "acc-1", "admin@example.edu", "admin", time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := VerifySessionToken(tok, "secret", now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.AccountID != "acc-1" {
		t.Fatalf("account id = %q, want acc-1", id.AccountID)
	}
	if id.Email != "admin@example.edu" {
		t.Fatalf("email = %q", id.Email)
	}
	if id.Role != "admin" {
		t.Fatalf("role = %q, want admin", id.Role)
	}
}

func TestSessionTokenExpired(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tok, err := IssueSessionToken("secret", "acc-1", "a@b.c", "admin", time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := VerifySessionToken(tok, "secret", now.Add(2*time.Hour)); err == nil {
		t.Fatalf("expected expired token to fail verification")
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	now := time.Now()

	tok, err := IssueSessionToken("secret", "acc-1", "a@b.c", "admin", time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := VerifySessionToken(tok, "other-secret", now); err == nil {
		t.Fatalf("expected wrong secret to fail verification")
	}
}

func TestSessionTokenMissingSecret(t *testing.T) {
	if _, err := IssueSessionToken("", "acc-1", "a@b.c", "admin", time.Hour, time.Now()); err == nil {
		t.Fatalf("expected issue with empty secret to fail")
	}
}
