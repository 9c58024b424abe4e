package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"
)

// GeminiTranslator translates text using Google Gemini API
type GeminiTranslator struct {
	apiKey        KeyResolver
	modelResolver KeyResolver // dynamically resolves model from settings
	baseURL       string
	httpClient    *http.Client
}

func NewGeminiTranslator(apiKey, modelResolver KeyResolver, baseURL string) *GeminiTranslator {
	if baseURL == "" {
		baseURL = geminiAPIBase
	}
	return &GeminiTranslator{
		apiKey:        apiKey,
		modelResolver: modelResolver,
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (g *GeminiTranslator) currentModel() string {
	if g.modelResolver != nil {
		if m := g.modelResolver(); m != "" {
			return m
		}
	}
	return "gemini-2.0-flash"
}

func (g *GeminiTranslator) Name() string {
	return "gemini"
}

func (g *GeminiTranslator) Languages(ctx context.Context) ([]Language, error) {
	return GoogleLanguages(), nil
}

func (g *GeminiTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	key := ""
	if g.apiKey != nil {
		key = g.apiKey()
	}
	if key == "" {
		return "", providerErr(g.Name(), "Gemini API key not configured", ErrNotConfigured)
	}

	model := g.currentModel()
	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]string{{"text": buildSystemPrompt(sourceLang, targetLang)}},
		},
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": text}},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      0.3,
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", providerErr(g.Name(), "encode request", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", providerErr(g.Name(), "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", key)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", providerErr(g.Name(), "Gemini API request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providerErr(g.Name(), "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Engine:     g.Name(),
			Message:    "Gemini API error: " + strings.TrimSpace(string(body)),
			StatusCode: resp.StatusCode,
		}
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", providerErr(g.Name(), "parse response", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		if geminiResp.PromptFeedback.BlockReason != "" {
			return "", providerErr(g.Name(), "Gemini blocked: "+geminiResp.PromptFeedback.BlockReason, nil)
		}
		return "", providerErr(g.Name(), "empty Gemini response", nil)
	}

	if fr := geminiResp.Candidates[0].FinishReason; fr != "" && fr != "STOP" {
		log.Printf("[gemini] WARNING: finishReason=%s", fr)
	}

	return parseTranslationJSON(g.Name(), geminiResp.Candidates[0].Content.Parts[0].Text)
}

var _ Translator = (*GeminiTranslator)(nil)
