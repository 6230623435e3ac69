// Package stampclient is a small SDK for the stamp board API. It keeps a
// session cookie across calls, derives the caller's remaining quota from the
// last fetched board snapshot, and reconciles after every successful
// placement by re-fetching the board.
package stampclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Stamp mirrors the board's wire format.
type Stamp struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	X            string  `json:"x"`
	Y            string  `json:"y"`
	Rotation     float64 `json:"rotation"`
	User         string  `json:"user"`
	UserIdentity string  `json:"userIdentity,omitempty"`
	Timestamp    string  `json:"timestamp,omitempty"`
}

// ClickPoint is a click position in page coordinates.
type ClickPoint struct {
	X float64
	Y float64
}

// CanvasRect is the board's bounding box in page coordinates.
type CanvasRect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// PlaceResult reports what the server did with a placement.
type PlaceResult struct {
	Stamp Stamp
	// Wiped is set when the placement tripped the global ceiling and the
	// server cleared the whole board instead of appending.
	Wiped bool
}

var (
	ErrNoTypeSelected     = errors.New("stampclient: no stamp type selected")
	ErrQuotaExhausted     = errors.New("stampclient: stamp quota exhausted")
	ErrOutsideCanvas      = errors.New("stampclient: click outside the canvas")
	ErrInvalidCredentials = errors.New("stampclient: invalid credentials")
	ErrUnauthenticated    = errors.New("stampclient: not authenticated")
)

// Placements are clamped into an interior region so stamps never straddle
// the canvas edge.
const (
	clampMin = 3.0
	clampMax = 95.0
)

const defaultPerUserCeiling = 10

// Options configures a Client. The zero value is usable.
type Options struct {
	// StatePath is where the per-client user ID is persisted. Empty means
	// a fresh ID per process.
	StatePath string
	// PerUserCeiling overrides the assumed per-user quota used for the
	// local pre-check. Zero means the server default.
	PerUserCeiling int
	// HTTPClient overrides the underlying client. A cookie jar is
	// installed if the client has none.
	HTTPClient *http.Client
	// Clock substitutes the wall clock in tests.
	Clock clockwork.Clock
}

// Client talks to one stamp board. Safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	userID  string
	clock   clockwork.Clock
	ceiling int

	mu       sync.Mutex
	snapshot []Stamp

	login *attemptTracker
}

// New returns a Client for the board at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts Options) (*Client, error) {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	if httpc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("stampclient: cookie jar: %w", err)
		}
		httpc.Jar = jar
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	userID, err := loadOrCreateUserID(opts.StatePath)
	if err != nil {
		return nil, err
	}

	ceiling := opts.PerUserCeiling
	if ceiling <= 0 {
		ceiling = defaultPerUserCeiling
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		userID:  userID,
		clock:   clock,
		ceiling: ceiling,
		login:   newAttemptTracker(clock),
	}, nil
}

// loadOrCreateUserID reads the persisted user ID, generating and saving a
// fresh one when the file is missing. An empty path skips persistence.
func loadOrCreateUserID(path string) (string, error) {
	if path == "" {
		return uuid.NewString(), nil
	}
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}
	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id), 0o600); err != nil {
		return "", fmt.Errorf("stampclient: persist user id: %w", err)
	}
	return id, nil
}

// UserID returns the per-client identifier used for quota accounting.
func (c *Client) UserID() string { return c.userID }

// Login exchanges the shared board password for a session cookie. After
// repeated failures it returns a RateLimitError until the backoff window has
// passed.
func (c *Client) Login(ctx context.Context, password string) error {
	if wait := c.login.Wait(); wait > 0 {
		return &RateLimitError{RetryAfter: wait}
	}

	resp, err := c.postJSON(ctx, "/api/auth/login", map[string]string{"password": password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		c.login.Reset()
		return nil
	case http.StatusUnauthorized:
		c.login.RecordFailure()
		return ErrInvalidCredentials
	case http.StatusTooManyRequests:
		c.login.RecordFailure()
		return &RateLimitError{RetryAfter: c.login.Wait()}
	default:
		return unexpectedStatus(resp)
	}
}

// Logout clears the session cookie server-side. Idempotent.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.postJSON(ctx, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return unexpectedStatus(resp)
	}
	return nil
}

// Verify reports whether the current session cookie is still valid.
func (c *Client) Verify(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/verify", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		return false, unexpectedStatus(resp)
	}
}

// Stamps fetches the full board and replaces the local snapshot.
func (c *Client) Stamps(ctx context.Context) ([]Stamp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/stamps", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp)
	}

	var stamps []Stamp
	if err := json.NewDecoder(resp.Body).Decode(&stamps); err != nil {
		return nil, fmt.Errorf("stampclient: decode board: %w", err)
	}

	c.mu.Lock()
	c.snapshot = stamps
	c.mu.Unlock()
	return stamps, nil
}

// Remaining derives the caller's remaining quota from the last fetched
// snapshot. The server stays authoritative; this is a local read.
func (c *Client) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	used := 0
	for _, s := range c.snapshot {
		if s.User == c.userID {
			used++
		}
	}
	if used >= c.ceiling {
		return 0
	}
	return c.ceiling - used
}

// PlaceStamp converts a click inside the canvas to percentage coordinates,
// posts the stamp, and re-fetches the board to reconcile. identity may be
// empty.
func (c *Client) PlaceStamp(ctx context.Context, stampType, identity string, click ClickPoint, canvas CanvasRect) (*PlaceResult, error) {
	if stampType == "" {
		return nil, ErrNoTypeSelected
	}
	if c.Remaining() == 0 {
		return nil, ErrQuotaExhausted
	}

	x, y, ok := normalize(click, canvas)
	if !ok {
		return nil, ErrOutsideCanvas
	}

	stamp := Stamp{
		ID:           uuid.NewString(),
		Type:         stampType,
		X:            percentString(x),
		Y:            percentString(y),
		Rotation:     rand.Float64()*30 - 15,
		User:         c.userID,
		UserIdentity: identity,
		Timestamp:    c.clock.Now().Format("Jan 2, 2006"),
	}

	resp, err := c.postJSON(ctx, "/api/stamps", stamp)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	case http.StatusForbidden:
		return nil, ErrQuotaExhausted
	default:
		return nil, unexpectedStatus(resp)
	}

	var body struct {
		Success bool `json:"success"`
		Wiped   bool `json:"wiped"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("stampclient: decode placement: %w", err)
	}

	// Reconcile against server truth rather than trusting the optimistic
	// local copy.
	if _, err := c.Stamps(ctx); err != nil {
		return nil, err
	}

	return &PlaceResult{Stamp: stamp, Wiped: body.Wiped}, nil
}

// ClearMine removes all of the caller's stamps, filters the local snapshot,
// and returns how many the server removed.
func (c *Client) ClearMine(ctx context.Context) (int, error) {
	resp, err := c.postJSON(ctx, "/api/stamps/clear", map[string]string{"userId": c.userID})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return 0, ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return 0, unexpectedStatus(resp)
	}

	var body struct {
		StampsRemoved int `json:"stampsRemoved"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("stampclient: decode clear: %w", err)
	}

	c.mu.Lock()
	kept := c.snapshot[:0]
	for _, s := range c.snapshot {
		if s.User != c.userID {
			kept = append(kept, s)
		}
	}
	c.snapshot = kept
	c.mu.Unlock()

	return body.StampsRemoved, nil
}

// normalize maps a click to canvas percentages, clamped into the interior
// region. ok is false when the click falls outside the canvas box.
func normalize(click ClickPoint, canvas CanvasRect) (x, y float64, ok bool) {
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return 0, 0, false
	}
	x = (click.X - canvas.Left) / canvas.Width * 100
	y = (click.Y - canvas.Top) / canvas.Height * 100
	if x < 0 || x > 100 || y < 0 || y > 100 {
		return 0, 0, false
	}
	return clamp(x), clamp(y), true
}

func clamp(v float64) float64 {
	if v < clampMin {
		return clampMin
	}
	if v > clampMax {
		return clampMax
	}
	return v
}

func percentString(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpc.Do(req)
}

func unexpectedStatus(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Error != "" {
		return fmt.Errorf("stampclient: %s: %s", resp.Status, body.Error)
	}
	return fmt.Errorf("stampclient: unexpected status %s", resp.Status)
}
