package security_test

import (
	"testing"
	"time"

	"github.com/tazhibayda/tasks-service/internal/security"
)

func TestSession_RoundTrip(t *testing.T) {
	tok, err := security.MakeSession("secret", "u1", "u@example.com", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	c, err := security.ParseSession("secret", tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UID != "u1" || c.Email != "u@example.com" || c.Subject != "u1" {
		t.Fatalf("claims mismatch: %#v", c)
	}
}

func TestSession_WrongSecret(t *testing.T) {
	tok, err := security.MakeSession("secret", "u1", "u@example.com", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.ParseSession("other", tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestSession_Expired(t *testing.T) {
	tok, err := security.MakeSession("secret", "u1", "u@example.com", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.ParseSession("secret", tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestSession_Garbage(t *testing.T) {
	if _, err := security.ParseSession("secret", "not.a.jwt"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}
