package http_test

import (
	"net/http"
	"testing"
	"time"

	api "github.com/tazhibayda/tasks-service/internal/http"
)

func TestRateLimiter_Window(t *testing.T) {
	rl := api.NewRateLimiter(2, 50*time.Millisecond)

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests must pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("third request within the window must be limited")
	}
	// другой IP — отдельное окно
	if !rl.Allow("5.6.7.8") {
		t.Fatal("separate ip must have its own bucket")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("window expiry must reset the bucket")
	}
}

func TestRequestID_Propagates(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/healthz", "", map[string]string{"X-Request-ID": "req-42"})
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("request id not echoed: %q", got)
	}

	w = env.do("GET", "/healthz", "", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("request id not generated")
	}
}
