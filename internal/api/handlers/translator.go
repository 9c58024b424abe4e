package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ai-translator/web/internal/api/middleware"
	"github.com/ai-translator/web/internal/controller"
	"github.com/ai-translator/web/internal/session"
	"github.com/ai-translator/web/internal/translate"
	"github.com/ai-translator/web/internal/web"
)

// LanguageSource supplies the active engine's catalog. *translate.Service satisfies it.
type LanguageSource interface {
	Languages(ctx context.Context) ([]translate.Language, error)
	Name() string
}

// TranslatorHandler serves the HTML pages and their JSON counterparts.
type TranslatorHandler struct {
	ctrl      *controller.Controller
	languages LanguageSource
	gate      *session.IntroGate
	pages     *web.Renderer
}

func NewTranslatorHandler(ctrl *controller.Controller, languages LanguageSource, gate *session.IntroGate, pages *web.Renderer) *TranslatorHandler {
	return &TranslatorHandler{ctrl: ctrl, languages: languages, gate: gate, pages: pages}
}

// catalog is fetched on every render. If the engine cannot list its
// languages the built-in table keeps the selector usable.
func (h *TranslatorHandler) catalog(ctx context.Context) translate.Catalog {
	langs, err := h.languages.Languages(ctx)
	if err != nil || len(langs) == 0 {
		if err != nil {
			log.Printf("[handlers] language catalog from %s unavailable: %v", h.languages.Name(), err)
		}
		langs = translate.GoogleLanguages()
	}
	return translate.NewCatalog(langs)
}

func requestSession(w http.ResponseWriter, r *http.Request) *session.Session {
	sess := middleware.GetSession(r)
	if sess == nil {
		log.Printf("[handlers] %s %s: no session in context", r.Method, r.URL.Path)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
	return sess
}

func pageError(w http.ResponseWriter, action string, err error) {
	log.Printf("[handlers] %s: %v", action, err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// Index renders the intro on a session's first visit and the translator afterwards.
func (h *TranslatorHandler) Index(w http.ResponseWriter, r *http.Request) {
	sess := requestSession(w, r)
	if sess == nil {
		return
	}

	showIntro, err := h.gate.Enter(r.Context(), sess)
	if err != nil {
		pageError(w, "intro gate", err)
		return
	}
	if showIntro {
		if err := h.pages.Intro(w, h.gate.Duration()); err != nil {
			pageError(w, "render intro", err)
		}
		return
	}

	h.renderMain(w, r, sess, h.catalog(r.Context()), "", nil)
}

func (h *TranslatorHandler) renderMain(w http.ResponseWriter, r *http.Request, sess *session.Session, catalog translate.Catalog, selected string, outcome *controller.Outcome) {
	if selected == "" {
		if def, ok := catalog.Default(); ok {
			selected = def.Code
		}
	}

	state, err := sess.Snapshot(r.Context())
	if err != nil {
		pageError(w, "load session", err)
		return
	}

	err = h.pages.Main(w, web.MainPage{
		SourceText: state.SourceText,
		Result:     state.Result,
		Languages:  catalog,
		Selected:   selected,
		Engine:     h.languages.Name(),
		Outcome:    outcome,
	})
	if err != nil {
		pageError(w, "render main", err)
	}
}

// Translate handles the form post from the main page.
func (h *TranslatorHandler) Translate(w http.ResponseWriter, r *http.Request) {
	sess := requestSession(w, r)
	if sess == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	// the main layout is not reachable before the intro has run
	seen, err := sess.HasSeenIntro(r.Context())
	if err != nil {
		pageError(w, "load session", err)
		return
	}
	if !seen {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	catalog := h.catalog(r.Context())
	target, _ := catalog.Resolve(r.PostFormValue("target_lang"))

	outcome, err := h.ctrl.HandleTranslate(r.Context(), sess, r.PostFormValue("source_text"), target)
	if err != nil {
		pageError(w, "translate", err)
		return
	}

	h.renderMain(w, r, sess, catalog, target.Code, &outcome)
}

// Clear resets the session and sends the browser back to a fresh page.
func (h *TranslatorHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess := requestSession(w, r)
	if sess == nil {
		return
	}
	if err := h.ctrl.HandleClear(r.Context(), sess); err != nil {
		pageError(w, "clear", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type languagesResponse struct {
	Engine    string               `json:"engine"`
	Default   string               `json:"default"`
	Languages []translate.Language `json:"languages"`
}

// ListLanguages returns the active engine's catalog.
func (h *TranslatorHandler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	catalog := h.catalog(r.Context())
	resp := languagesResponse{Engine: h.languages.Name(), Languages: catalog}
	if def, ok := catalog.Default(); ok {
		resp.Default = def.Code
	}
	jsonResponse(w, resp, http.StatusOK)
}

// GetSession returns the caller's session state.
func (h *TranslatorHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	if sess == nil {
		jsonError(w, "no session", http.StatusInternalServerError)
		return
	}
	state, err := sess.Snapshot(r.Context())
	if err != nil {
		log.Printf("[handlers] load session %s: %v", sess.ID(), err)
		jsonError(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, state, http.StatusOK)
}

type translateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

type translateResponse struct {
	Outcome controller.Outcome `json:"outcome"`
	State   session.State      `json:"state"`
}

// APITranslate is the JSON form of Translate. An empty target selects the
// default language; an unknown one is rejected. The intro only gates the HTML
// layout, so API calls neither wait for it nor mark it seen.
func (h *TranslatorHandler) APITranslate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	if sess == nil {
		jsonError(w, "no session", http.StatusInternalServerError)
		return
	}

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	catalog := h.catalog(r.Context())
	var (
		target translate.Language
		ok     bool
	)
	if strings.TrimSpace(req.Target) == "" {
		target, ok = catalog.Default()
	} else {
		target, ok = catalog.Lookup(strings.TrimSpace(req.Target))
	}
	if !ok {
		jsonError(w, "unsupported target language: "+req.Target, http.StatusBadRequest)
		return
	}

	outcome, err := h.ctrl.HandleTranslate(r.Context(), sess, req.Text, target)
	if err != nil {
		log.Printf("[handlers] translate session %s: %v", sess.ID(), err)
		jsonError(w, "failed to update session", http.StatusInternalServerError)
		return
	}

	state, err := sess.Snapshot(r.Context())
	if err != nil {
		jsonError(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, translateResponse{Outcome: outcome, State: state}, http.StatusOK)
}

// APIClear is the JSON form of Clear.
func (h *TranslatorHandler) APIClear(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	if sess == nil {
		jsonError(w, "no session", http.StatusInternalServerError)
		return
	}
	if err := h.ctrl.HandleClear(r.Context(), sess); err != nil {
		log.Printf("[handlers] clear session %s: %v", sess.ID(), err)
		jsonError(w, "failed to clear session", http.StatusInternalServerError)
		return
	}
	state, err := sess.Snapshot(r.Context())
	if err != nil {
		jsonError(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, state, http.StatusOK)
}
