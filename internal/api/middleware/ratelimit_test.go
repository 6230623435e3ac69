package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

func TestLoginRateLimit_ExhaustsBurst(t *testing.T) {
	e := echo.New()
	mw := LoginRateLimit(rate.Limit(0), 2) // no refill: only the burst is available

	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := h(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("burst requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the burst is spent, got %v", codes)
	}
}

func TestLoginRateLimit_PerIP(t *testing.T) {
	e := echo.New()
	mw := LoginRateLimit(rate.Limit(0), 1)

	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := h(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec.Code
	}

	if code := send("10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first request from A should pass, got %d", code)
	}
	if code := send("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("second request from A should be limited, got %d", code)
	}
	// A different caller keeps its own bucket.
	if code := send("10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("first request from B should pass, got %d", code)
	}
}
