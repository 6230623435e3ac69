package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/danapixels/stampboard/internal/api/middleware"
	"github.com/danapixels/stampboard/internal/core/domain"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, password string) (string, error)
	verifyFn func(ctx context.Context, token string) error
}

func (s *stubAuthService) Login(ctx context.Context, password string) (string, error) {
	return s.loginFn(ctx, password)
}

func (s *stubAuthService) Verify(ctx context.Context, token string) error {
	return s.verifyFn(ctx, token)
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	res := rec.Result()
	for _, cookie := range res.Cookies() {
		if cookie.Name == middleware.SessionCookie {
			return cookie
		}
	}
	return nil
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, password string) (string, error) {
			if password != "letmein" {
				t.Fatalf("unexpected password: %s", password)
			}
			return "signed-token", nil
		},
	}
	h := NewAuthHandler(stub, time.Hour, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"letmein"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookie := sessionCookieFrom(rec)
	if cookie == nil {
		t.Fatal("expected a session cookie")
	}
	if cookie.Value != "signed-token" {
		t.Fatalf("unexpected cookie value: %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be http-only")
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, password string) (string, error) {
			return "", domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, time.Hour, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"guess"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if cookie := sessionCookieFrom(rec); cookie != nil {
		t.Fatal("failed login must not set a session cookie")
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	e := echo.New()
	h := NewAuthHandler(&stubAuthService{}, time.Hour, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookie := sessionCookieFrom(rec)
	if cookie == nil {
		t.Fatal("expected an expiring session cookie")
	}
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Fatalf("cookie not cleared: value=%q maxage=%d", cookie.Value, cookie.MaxAge)
	}

	// Idempotent: a second logout without any session still succeeds.
	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), rec2)
	if err := h.Logout(c2); err != nil {
		t.Fatalf("second logout error: %v", err)
	}
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat logout, got %d", rec2.Code)
	}
}

func TestAuthHandler_Verify(t *testing.T) {
	e := echo.New()
	h := NewAuthHandler(&stubAuthService{}, time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Verify(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["authenticated"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
