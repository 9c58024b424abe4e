package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"

	"github.com/ai-translator/web/internal/api/middleware"
	"github.com/ai-translator/web/internal/auth"
	"github.com/ai-translator/web/internal/controller"
	"github.com/ai-translator/web/internal/session"
	"github.com/ai-translator/web/internal/translate"
	"github.com/ai-translator/web/internal/web"
)

type fakeEngine struct {
	mu      sync.Mutex
	calls   []string
	reply   string
	err     error
	langErr error
}

func (f *fakeEngine) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sourceLang+">"+targetLang+":"+text)
	return f.reply, f.err
}

func (f *fakeEngine) Languages(ctx context.Context) ([]translate.Language, error) {
	if f.langErr != nil {
		return nil, f.langErr
	}
	return []translate.Language{
		{Name: "chinese (simplified)", Code: "zh-CN"},
		{Name: "english", Code: "en"},
		{Name: "french", Code: "fr"},
	}, nil
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	s.fns = append(s.fns, f)
	s.mu.Unlock()
}

func (s *manualScheduler) fire() {
	s.mu.Lock()
	fns := s.fns
	s.fns = nil
	s.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

type testApp struct {
	t         *testing.T
	engine    *fakeEngine
	scheduler *manualScheduler
	store     *session.MemoryStore
	handler   http.Handler
	cookie    *http.Cookie
}

func newTestApp(t *testing.T, stylePath string) *testApp {
	t.Helper()
	engine := &fakeEngine{reply: "bonjour"}
	scheduler := &manualScheduler{}
	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { store.Close() })

	pages, err := web.NewRenderer(stylePath)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	gate := session.NewIntroGate(3*time.Second, scheduler)
	h := NewTranslatorHandler(controller.New(engine), engine, gate, pages)

	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.NewJWTService("test-secret"), store, false))
	r.Get("/", h.Index)
	r.Post("/translate", h.Translate)
	r.Post("/clear", h.Clear)
	r.Get("/api/languages", h.ListLanguages)
	r.Get("/api/session", h.GetSession)
	r.Post("/api/translate", h.APITranslate)
	r.Post("/api/clear", h.APIClear)

	return &testApp{t: t, engine: engine, scheduler: scheduler, store: store, handler: r}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			a.cookie = c
		}
	}
	return rec
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

// pastIntro opens the app and lets the intro timer fire.
func (a *testApp) pastIntro() {
	a.get("/")
	a.scheduler.fire()
}

func parseDoc(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestIndexShowsIntroOnce(t *testing.T) {
	app := newTestApp(t, "")

	rec := app.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := parseDoc(t, rec)
	if doc.Find("#intro").Length() != 1 {
		t.Fatal("first visit should render the intro")
	}
	// one second past the 3s intro timer
	if got := doc.Find(`meta[http-equiv="refresh"]`).AttrOr("content", ""); got != "4" {
		t.Errorf("refresh = %q, want 4", got)
	}

	// still pending: intro again, no second timer
	doc = parseDoc(t, app.get("/"))
	if doc.Find("#intro").Length() != 1 {
		t.Error("intro should persist until the timer fires")
	}
	if n := len(app.scheduler.fns); n != 1 {
		t.Errorf("scheduled %d timers, want 1", n)
	}

	app.scheduler.fire()
	doc = parseDoc(t, app.get("/"))
	if doc.Find("#intro").Length() != 0 {
		t.Fatal("intro shown after transition")
	}
	if got := doc.Find("#output").Text(); got != session.Placeholder {
		t.Errorf("output = %q, want placeholder", got)
	}
	if got := doc.Find("#source_text").Text(); got != "" {
		t.Errorf("source = %q, want empty", got)
	}
	if got := doc.Find("#target_lang option[selected]").AttrOr("value", ""); got != "en" {
		t.Errorf("default selection = %q, want en", got)
	}
	if got := doc.Find(`#target_lang option[value="zh-CN"]`).Text(); got != "Chinese (Simplified)" {
		t.Errorf("option label = %q, want title case", got)
	}
	if doc.Find(".alert").Length() != 0 {
		t.Error("no banner expected on a plain render")
	}
}

func TestTranslateSuccess(t *testing.T) {
	app := newTestApp(t, "")
	app.pastIntro()

	rec := app.postForm("/translate", url.Values{"source_text": {"hello"}, "target_lang": {"fr"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := parseDoc(t, rec)
	if got := doc.Find(".alert.success").Text(); !strings.Contains(got, "Context translated to French successfully!") {
		t.Errorf("banner = %q", got)
	}
	if got := doc.Find("#output").Text(); got != "bonjour" {
		t.Errorf("output = %q", got)
	}
	if got := doc.Find("#source_text").Text(); got != "hello" {
		t.Errorf("source = %q", got)
	}
	if got := doc.Find("#target_lang option[selected]").AttrOr("value", ""); got != "fr" {
		t.Errorf("selected = %q, want fr", got)
	}
	if len(app.engine.calls) != 1 || app.engine.calls[0] != "auto>fr:hello" {
		t.Errorf("calls = %v", app.engine.calls)
	}

	// survives a reload
	doc = parseDoc(t, app.get("/"))
	if got := doc.Find("#output").Text(); got != "bonjour" {
		t.Errorf("output after reload = %q", got)
	}
}

func TestTranslateEmptyInputWarns(t *testing.T) {
	app := newTestApp(t, "")
	app.pastIntro()

	doc := parseDoc(t, app.postForm("/translate", url.Values{"source_text": {"   \n"}, "target_lang": {"fr"}}))
	if got := doc.Find(".alert.warning").Text(); !strings.Contains(got, controller.MessageEmptyInput) {
		t.Errorf("banner = %q", got)
	}
	if got := doc.Find("#output").Text(); got != session.Placeholder {
		t.Errorf("output = %q", got)
	}
	if app.engine.callCount() != 0 {
		t.Error("provider must not be called for blank input")
	}
}

func TestTranslateFailureKeepsResult(t *testing.T) {
	app := newTestApp(t, "")
	app.pastIntro()
	app.postForm("/translate", url.Values{"source_text": {"hello"}, "target_lang": {"fr"}})

	app.engine.err = errors.New("dial tcp: connection refused")
	doc := parseDoc(t, app.postForm("/translate", url.Values{"source_text": {"goodbye"}, "target_lang": {"fr"}}))
	if got := doc.Find(".alert.failure").Text(); !strings.Contains(got, controller.MessageFailure) {
		t.Errorf("banner = %q", got)
	}
	if got := doc.Find(".caption").Text(); !strings.Contains(got, "connection refused") {
		t.Errorf("caption = %q", got)
	}
	if got := doc.Find("#output").Text(); got != "bonjour" {
		t.Errorf("output = %q, want previous result", got)
	}
	if got := doc.Find("#source_text").Text(); got != "goodbye" {
		t.Errorf("source = %q", got)
	}
}

func TestTranslateUnknownTargetUsesDefault(t *testing.T) {
	app := newTestApp(t, "")
	app.pastIntro()

	doc := parseDoc(t, app.postForm("/translate", url.Values{"source_text": {"hola"}, "target_lang": {"xx"}}))
	if got := doc.Find(".alert.success").Text(); !strings.Contains(got, "English") {
		t.Errorf("banner = %q", got)
	}
	if app.engine.calls[0] != "auto>en:hola" {
		t.Errorf("calls = %v", app.engine.calls)
	}
}

func TestTranslateBeforeIntroRedirects(t *testing.T) {
	app := newTestApp(t, "")
	rec := app.postForm("/translate", url.Values{"source_text": {"hello"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if app.engine.callCount() != 0 {
		t.Error("provider called before intro")
	}
}

func TestClearResetsAndRedirects(t *testing.T) {
	app := newTestApp(t, "")
	app.pastIntro()
	app.postForm("/translate", url.Values{"source_text": {"hello"}, "target_lang": {"fr"}})

	rec := app.postForm("/clear", url.Values{"source_text": {"hello"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}

	doc := parseDoc(t, app.get("/"))
	if doc.Find("#intro").Length() != 0 {
		t.Error("clear must not bring the intro back")
	}
	if got := doc.Find("#output").Text(); got != session.Placeholder {
		t.Errorf("output = %q", got)
	}
	if got := doc.Find("#source_text").Text(); got != "" {
		t.Errorf("source = %q", got)
	}
}

func TestCatalogFallbackOnEngineError(t *testing.T) {
	app := newTestApp(t, "")
	app.engine.langErr = errors.New("deepl: not configured")
	app.pastIntro()

	doc := parseDoc(t, app.get("/"))
	if doc.Find("#target_lang option").Length() < 100 {
		t.Errorf("expected built-in catalog, got %d options", doc.Find("#target_lang option").Length())
	}
	if got := doc.Find("#target_lang option[selected]").Text(); got != "English" {
		t.Errorf("selected = %q", got)
	}
}

func TestStylesheetInjected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.css")
	app := newTestApp(t, path)

	// missing file renders fine
	doc := parseDoc(t, app.get("/"))
	if strings.Contains(doc.Find("style").Text(), "--brand") {
		t.Fatal("unexpected custom css")
	}

	if err := os.WriteFile(path, []byte(".main-card { --brand: #123456; }"), 0644); err != nil {
		t.Fatal(err)
	}
	app.scheduler.fire()
	doc = parseDoc(t, app.get("/"))
	if !strings.Contains(doc.Find("style").Text(), ".main-card { --brand: #123456; }") {
		t.Error("stylesheet not injected verbatim")
	}
}

func TestAPITranslateAndSession(t *testing.T) {
	app := newTestApp(t, "")

	rec := app.get("/api/languages")
	var langs languagesResponse
	if err := json.NewDecoder(rec.Body).Decode(&langs); err != nil {
		t.Fatal(err)
	}
	if langs.Default != "en" || langs.Engine != "fake" || len(langs.Languages) != 3 {
		t.Errorf("languages = %+v", langs)
	}

	rec = app.postJSON("/api/translate", `{"text":"hello","target":"xx"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown target status = %d", rec.Code)
	}

	rec = app.postJSON("/api/translate", `{"text":"hello","target":"fr"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	var resp translateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Outcome.IsSuccess() || resp.Outcome.Text != "bonjour" || resp.State.Result != "bonjour" {
		t.Errorf("response = %+v", resp)
	}

	rec = app.postJSON("/api/clear", "")
	var state session.State
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.Result != session.Placeholder || state.SourceText != "" {
		t.Errorf("state after clear = %+v", state)
	}

	rec = app.get("/api/session")
	state = session.State{}
	json.NewDecoder(rec.Body).Decode(&state)
	if state.Result != session.Placeholder {
		t.Errorf("session = %+v", state)
	}
}

func TestAPIDoesNotConsumeIntro(t *testing.T) {
	app := newTestApp(t, "")

	rec := app.postJSON("/api/translate", `{"text":"hello","target":"fr"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d before intro", rec.Code)
	}
	var resp translateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Outcome.IsSuccess() || resp.State.HasSeenIntro {
		t.Errorf("response = %+v", resp)
	}

	if rec := app.postJSON("/api/clear", ""); rec.Code != http.StatusOK {
		t.Errorf("clear status = %d before intro", rec.Code)
	}

	// the browser still gets its intro on the first page view
	doc := parseDoc(t, app.get("/"))
	if doc.Find("#intro").Length() != 1 {
		t.Error("API use must not skip the intro page")
	}
}

func TestAPITranslateInvalidBody(t *testing.T) {
	app := newTestApp(t, "")
	rec := app.postJSON("/api/translate", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}
