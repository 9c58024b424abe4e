package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ai-translator/web/internal/auth"
	"github.com/ai-translator/web/internal/session"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	h := rl.Handler(http.HandlerFunc(okHandler))
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/translate", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.0.1:%d", 40000+i)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			if rec.Header().Get("Retry-After") != "30" {
				t.Errorf("Retry-After = %q, want 30", rec.Header().Get("Retry-After"))
			}
			if !strings.Contains(rec.Body.String(), "too many requests") {
				t.Errorf("body = %q", rec.Body.String())
			}
		}
	}
	// a new source port is still the same client
	want := []int{200, 200, 429}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}

	// other clients keep their own bucket
	req := httptest.NewRequest(http.MethodPost, "/translate", nil)
	req.RemoteAddr = "10.0.0.2"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("second IP got %d", rec.Code)
	}
}

func TestRateLimiterRefillsAndCleansUp(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	if !rl.Allow("a") {
		t.Fatal("first request rejected")
	}
	if rl.Allow("a") {
		t.Fatal("second request allowed inside window")
	}
	clock = clock.Add(time.Minute)
	if !rl.Allow("a") {
		t.Fatal("request rejected after refill")
	}

	clock = clock.Add(2 * time.Minute)
	rl.cleanup()
	if rl.Tracked() != 0 {
		t.Errorf("Tracked = %d after cleanup, want 0", rl.Tracked())
	}
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	token, err := jwtService.GenerateToken(1, "admin", "admin")
	if err != nil {
		t.Fatal(err)
	}
	userToken, _ := jwtService.GenerateToken(2, "bob", "user")

	var gotUser string
	h := AuthMiddleware(jwtService)(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetClaims(r).Username
		w.WriteHeader(http.StatusOK)
	})))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bad format", "Token abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + userToken, http.StatusForbidden},
		{"ok", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if gotUser != "admin" {
		t.Errorf("claims username = %q", gotUser)
	}
}

func TestSessionMiddlewareIssuesAndReusesCookie(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	store := session.NewMemoryStore(time.Hour)
	defer store.Close()

	var seen []string
	h := SessionMiddleware(jwtService, store, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r)
		if sess == nil {
			t.Fatal("no session in context")
		}
		seen = append(seen, sess.ID())
		if err := sess.SetSourceText(r.Context(), "hello"); err != nil {
			t.Fatal(err)
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName {
		t.Fatalf("cookies = %v", cookies)
	}
	c := cookies[0]
	if !c.HttpOnly || c.Path != "/" || !c.Expires.IsZero() || c.MaxAge != 0 {
		t.Errorf("cookie attributes = %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 {
		t.Error("valid cookie was reissued")
	}
	if len(seen) != 2 || seen[0] != seen[1] {
		t.Fatalf("session ids = %v", seen)
	}

	text, err := session.New(seen[0], store).SourceText(context.Background())
	if err != nil || text != "hello" {
		t.Errorf("stored source text = %q, %v", text, err)
	}
}

func TestSessionMiddlewareTouchesOnRead(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	store := session.NewMemoryStore(time.Hour)
	defer store.Close()

	token, _ := jwtService.GenerateSessionToken("reader")
	if err := session.New("reader", store).MarkIntroSeen(context.Background()); err != nil {
		t.Fatal(err)
	}

	touched := &touchRecorder{Store: store}
	h := SessionMiddleware(jwtService, touched, false)(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(touched.ids) != 1 || touched.ids[0] != "reader" {
		t.Errorf("touched = %v, want [reader]", touched.ids)
	}

	// a brand new visitor has nothing to refresh
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if len(touched.ids) != 1 {
		t.Errorf("touched = %v after new session", touched.ids)
	}
}

type touchRecorder struct {
	session.Store
	ids []string
}

func (r *touchRecorder) Touch(ctx context.Context, sessionID string) error {
	r.ids = append(r.ids, sessionID)
	return r.Store.Touch(ctx, sessionID)
}

func TestSessionMiddlewareRejectsForgedCookie(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	other := auth.NewJWTService("other-secret")
	forged, _ := other.GenerateSessionToken("victim")
	store := session.NewMemoryStore(time.Hour)
	defer store.Close()

	var id string
	h := SessionMiddleware(jwtService, store, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = GetSession(r).ID()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: forged})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if id == "victim" || id == "" {
		t.Errorf("session id = %q", id)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Error("expected a fresh cookie")
	}
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
	}))
	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader("source_text=too-long"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORSHandlerCredentials(t *testing.T) {
	if CORSHandler(nil).AllowCredentials {
		t.Error("wildcard origins must not allow credentials")
	}
	opts := CORSHandler([]string{"http://a.test"})
	if !opts.AllowCredentials || opts.AllowedOrigins[0] != "http://a.test" {
		t.Errorf("options = %+v", opts)
	}
}
