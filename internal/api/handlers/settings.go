package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ai-translator/web/internal/translate"
)

// settingsKeys defines which keys are allowed and their display metadata
var settingsKeys = []SettingDef{
	{Key: translate.SettingEngine, Label: "Translation Engine", Group: "engine", Placeholder: "google"},
	{Key: translate.SettingDeepLAPIKey, Label: "DeepL API Key", Group: "deepl", Placeholder: "xxxxxxxx-xxxx-...", Secret: true},
	{Key: translate.SettingOpenAIAPIKey, Label: "OpenAI API Key", Group: "openai", Placeholder: "sk-...", Secret: true},
	{Key: translate.SettingOpenAIModel, Label: "OpenAI Model", Group: "openai", Placeholder: "gpt-4o-mini"},
	{Key: translate.SettingGeminiAPIKey, Label: "Gemini API Key", Group: "gemini", Placeholder: "AIza...", Secret: true},
	{Key: translate.SettingGeminiModel, Label: "Gemini Model", Group: "gemini", Placeholder: "gemini-2.0-flash"},
}

const secretMask = "••••••••"

type SettingDef struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Group       string `json:"group"`
	Placeholder string `json:"placeholder"`
	Secret      bool   `json:"secret"`
}

type settingResponse struct {
	SettingDef
	Value    string `json:"value"`
	HasValue bool   `json:"has_value"`
}

// SettingsStore is satisfied by *db.Database.
type SettingsStore interface {
	GetAllSettings() (map[string]string, error)
	SetSetting(key, value string) error
}

// EngineLister reports the registered engine names.
type EngineLister interface {
	Engines() []string
}

type SettingsHandler struct {
	store   SettingsStore
	engines EngineLister
}

func NewSettingsHandler(store SettingsStore, engines EngineLister) *SettingsHandler {
	return &SettingsHandler{store: store, engines: engines}
}

// maskSecret shows only the last 4 characters.
func maskSecret(val string) string {
	if len(val) > 4 {
		return secretMask + val[len(val)-4:]
	}
	return secretMask
}

// GetSettings returns all settings (secrets are masked)
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.GetAllSettings()
	if err != nil {
		jsonError(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	result := make([]settingResponse, 0, len(settingsKeys))
	for _, def := range settingsKeys {
		val := all[def.Key]
		hasValue := val != ""
		if def.Secret && hasValue {
			val = maskSecret(val)
		}
		result = append(result, settingResponse{
			SettingDef: def,
			Value:      val,
			HasValue:   hasValue,
		})
	}

	jsonResponse(w, map[string]interface{}{
		"settings": result,
		"engines":  h.engines.Engines(),
	}, http.StatusOK)
}

// UpdateSettings saves settings from the request body. Unknown keys are
// ignored, masked values are left alone and "" clears a setting.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	allowed := make(map[string]bool, len(settingsKeys))
	for _, def := range settingsKeys {
		allowed[def.Key] = true
	}

	if engine, ok := updates[translate.SettingEngine]; ok && engine != "" {
		engine = strings.ToLower(strings.TrimSpace(engine))
		if !h.knownEngine(engine) {
			jsonError(w, "unknown translation engine: "+engine, http.StatusBadRequest)
			return
		}
		updates[translate.SettingEngine] = engine
	}

	for key, value := range updates {
		if !allowed[key] || strings.HasPrefix(value, secretMask) {
			continue
		}
		if err := h.store.SetSetting(key, strings.TrimSpace(value)); err != nil {
			jsonError(w, "failed to save setting: "+key, http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) knownEngine(name string) bool {
	for _, e := range h.engines.Engines() {
		if e == name {
			return true
		}
	}
	return false
}
