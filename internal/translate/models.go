package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Model is an LLM model an engine can be pointed at through settings.
type Model struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// ModelLister is implemented by engines whose model is configurable.
type ModelLister interface {
	Models(ctx context.Context) ([]Model, error)
}

// geminiSkip filters out non-text model families.
var geminiSkip = []string{"embedding", "aqa", "imagen", "veo", "lyria", "learnlm", "tts"}

// Models lists Gemini models that support generateContent, newest first.
func (g *GeminiTranslator) Models(ctx context.Context) ([]Model, error) {
	key := ""
	if g.apiKey != nil {
		key = g.apiKey()
	}
	if key == "" {
		return nil, providerErr(g.Name(), "Gemini API key not configured", ErrNotConfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?pageSize=100", nil)
	if err != nil {
		return nil, providerErr(g.Name(), "build request", err)
	}
	req.Header.Set("x-goog-api-key", key)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, providerErr(g.Name(), "Gemini API request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Engine:     g.Name(),
			Message:    fmt.Sprintf("Gemini API: status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	var apiResp struct {
		Models []struct {
			Name                       string   `json:"name"` // "models/gemini-2.5-flash"
			DisplayName                string   `json:"displayName"`
			Description                string   `json:"description"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, providerErr(g.Name(), "parse models response", err)
	}

	var models []Model
	seen := make(map[string]bool)
	for _, m := range apiResp.Models {
		if !containsString(m.SupportedGenerationMethods, "generateContent") {
			continue
		}
		id := strings.TrimPrefix(m.Name, "models/")
		if !strings.HasPrefix(id, "gemini-") || seen[id] || containsAny(id, geminiSkip) {
			continue
		}
		seen[id] = true
		models = append(models, Model{ID: id, DisplayName: m.DisplayName, Description: m.Description})
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID > models[j].ID
	})
	return models, nil
}

// Models lists chat-capable models from the OpenAI models endpoint.
func (o *OpenAITranslator) Models(ctx context.Context) ([]Model, error) {
	client, err := o.client()
	if err != nil {
		return nil, err
	}

	list, err := client.ListModels(ctx)
	if err != nil {
		return nil, providerErr(o.Name(), "list models", err)
	}

	models := make([]Model, 0, len(list.Models))
	for _, m := range list.Models {
		if !isChatModel(m.ID) {
			continue
		}
		if containsAny(m.ID, []string{"audio", "realtime", "transcribe", "tts", "image", "search"}) {
			continue
		}
		models = append(models, Model{ID: m.ID, DisplayName: m.ID})
	}
	sort.Slice(models, func(i, j int) bool {
		return models[i].ID < models[j].ID
	})
	return models, nil
}

// isChatModel matches gpt-* and the o-series (o1, o3-mini, ...).
func isChatModel(id string) bool {
	if strings.HasPrefix(id, "gpt-") {
		return true
	}
	return len(id) > 1 && id[0] == 'o' && id[1] >= '0' && id[1] <= '9'
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var (
	_ ModelLister = (*GeminiTranslator)(nil)
	_ ModelLister = (*OpenAITranslator)(nil)
)
