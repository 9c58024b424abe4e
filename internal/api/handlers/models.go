package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ai-translator/web/internal/translate"
)

const modelsCacheTTL = time.Hour

// EngineRegistry looks engines up by name. *translate.Service satisfies it.
type EngineRegistry interface {
	Engine(name string) (translate.Translator, bool)
}

type cachedModels struct {
	models  []translate.Model
	fetched time.Time
}

// ModelsHandler lists the models an LLM engine can be configured with.
type ModelsHandler struct {
	engines EngineRegistry
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cachedModels
}

func NewModelsHandler(engines EngineRegistry) *ModelsHandler {
	return &ModelsHandler{
		engines: engines,
		now:     time.Now,
		cache:   make(map[string]cachedModels),
	}
}

// ListModels serves GET /api/settings/models/{engine}. Engines without a
// key yield an empty list.
func (h *ModelsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "engine"))
	engine, ok := h.engines.Engine(name)
	if !ok {
		jsonError(w, "unknown engine: "+name, http.StatusNotFound)
		return
	}
	lister, ok := engine.(translate.ModelLister)
	if !ok {
		jsonError(w, "engine has no selectable models: "+name, http.StatusBadRequest)
		return
	}

	models, err := h.getModels(r.Context(), name, lister)
	if err != nil {
		if errors.Is(err, translate.ErrNotConfigured) {
			jsonResponse(w, []translate.Model{}, http.StatusOK)
			return
		}
		jsonError(w, "failed to fetch models: "+err.Error(), http.StatusBadGateway)
		return
	}
	jsonResponse(w, models, http.StatusOK)
}

// getModels returns a fresh cache entry, refetching when stale. A failed
// refetch falls back to the stale entry.
func (h *ModelsHandler) getModels(ctx context.Context, name string, lister translate.ModelLister) ([]translate.Model, error) {
	h.mu.Lock()
	cached, ok := h.cache[name]
	h.mu.Unlock()
	if ok && h.now().Sub(cached.fetched) < modelsCacheTTL {
		return copyModels(cached.models), nil
	}

	models, err := lister.Models(ctx)
	if err != nil {
		if ok && !errors.Is(err, translate.ErrNotConfigured) {
			return copyModels(cached.models), nil
		}
		return nil, err
	}
	if models == nil {
		models = []translate.Model{}
	}

	h.mu.Lock()
	h.cache[name] = cachedModels{models: models, fetched: h.now()}
	h.mu.Unlock()
	return copyModels(models), nil
}

func copyModels(models []translate.Model) []translate.Model {
	out := make([]translate.Model, len(models))
	copy(out, models)
	return out
}
