package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for the OpenAI engine.
type OpenAIConfig struct {
	APIKey      KeyResolver
	Model       KeyResolver // default "gpt-4o-mini"
	BaseURL     string      // optional, for compatible gateways
	Temperature float32     // default 0.3
}

// OpenAITranslator translates text using the OpenAI chat completions API
type OpenAITranslator struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

func NewOpenAITranslator(cfg OpenAIConfig) *OpenAITranslator {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	return &OpenAITranslator{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (o *OpenAITranslator) Name() string {
	return "openai"
}

func (o *OpenAITranslator) model() string {
	if o.cfg.Model != nil {
		if m := o.cfg.Model(); m != "" {
			return m
		}
	}
	return "gpt-4o-mini"
}

// client is built per call because the key may change in settings.
func (o *OpenAITranslator) client() (*openai.Client, error) {
	key := ""
	if o.cfg.APIKey != nil {
		key = o.cfg.APIKey()
	}
	if key == "" {
		return nil, providerErr(o.Name(), "OpenAI API key not configured", ErrNotConfigured)
	}
	config := openai.DefaultConfig(key)
	if o.cfg.BaseURL != "" {
		config.BaseURL = o.cfg.BaseURL
	}
	config.HTTPClient = o.httpClient
	return openai.NewClientWithConfig(config), nil
}

func (o *OpenAITranslator) Languages(ctx context.Context) ([]Language, error) {
	return GoogleLanguages(), nil
}

func (o *OpenAITranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	client, err := o.client()
	if err != nil {
		return "", err
	}

	model := o.model()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(sourceLang, targetLang)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: o.cfg.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		pe := providerErr(o.Name(), "OpenAI API call failed", err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			pe.StatusCode = apiErr.HTTPStatusCode
		}
		return "", pe
	}

	if len(resp.Choices) == 0 {
		return "", providerErr(o.Name(), "no response from OpenAI", nil)
	}

	log.Printf("[openai-translate] model=%s target=%s tokens=%d", model, targetLang, resp.Usage.TotalTokens)
	return parseTranslationJSON(o.Name(), resp.Choices[0].Message.Content)
}

func buildSystemPrompt(sourceLang, targetLang string) string {
	source := "Detect the source language automatically."
	if sourceLang != "" && sourceLang != AutoDetect {
		source = fmt.Sprintf("The source language is %s.", displayName(sourceLang))
	}
	return fmt.Sprintf(
		"You are a professional translator. %s Translate the user's text into %s. "+
			"Preserve meaning, tone, line breaks and formatting. Do not add explanations. "+
			`Respond with a JSON object of the form {"translation": "<translated text>"}.`,
		source, displayName(targetLang),
	)
}

// parseTranslationJSON accepts {"translation": "..."}, any object whose
// first string value is the translation, or plain text.
func parseTranslationJSON(engine, content string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "{") {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(content), &obj); err != nil {
			return "", providerErr(engine, "invalid JSON response", err)
		}
		if s, ok := obj["translation"].(string); ok {
			return s, nil
		}
		for _, v := range obj {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
		return "", providerErr(engine, "response has no translation field", nil)
	}

	if content == "" {
		return "", providerErr(engine, "empty response", nil)
	}
	return content, nil
}

var _ Translator = (*OpenAITranslator)(nil)
