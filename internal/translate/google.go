package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	googleTranslateURL = "https://translate.googleapis.com/translate_a/single"

	// googleMaxChars mirrors the public endpoint's per-request limit.
	googleMaxChars = 5000
)

// GoogleTranslator uses the keyless Google Translate web endpoint.
type GoogleTranslator struct {
	baseURL    string
	httpClient *http.Client
}

func NewGoogleTranslator(baseURL string) *GoogleTranslator {
	if baseURL == "" {
		baseURL = googleTranslateURL
	}
	return &GoogleTranslator{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *GoogleTranslator) Name() string {
	return "google"
}

func (g *GoogleTranslator) Languages(ctx context.Context) ([]Language, error) {
	return GoogleLanguages(), nil
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if n := utf8.RuneCountInString(text); n > googleMaxChars {
		return "", providerErr(g.Name(), fmt.Sprintf("text length %d exceeds %d characters", n, googleMaxChars), nil)
	}
	if sourceLang == "" {
		sourceLang = AutoDetect
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sourceLang)
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", providerErr(g.Name(), "build request", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", providerErr(g.Name(), "API request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providerErr(g.Name(), "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Engine:     g.Name(),
			Message:    "API error: " + strings.TrimSpace(string(body)),
			StatusCode: resp.StatusCode,
		}
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse joins the translated segments of a gtx answer:
// [[["Bonjour ","Hello ",...],["le monde","world",...]], ..., "en"]
func parseGoogleResponse(body []byte) (string, error) {
	var result []interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", providerErr("google", "parse response", err)
	}
	if len(result) == 0 {
		return "", providerErr("google", "no translation returned", nil)
	}

	segments, ok := result[0].([]interface{})
	if !ok || len(segments) == 0 {
		return "", providerErr("google", "unexpected response format", nil)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if arr, ok := seg.([]interface{}); ok && len(arr) > 0 {
			if s, ok := arr[0].(string); ok {
				sb.WriteString(s)
			}
		}
	}

	if sb.Len() == 0 {
		return "", providerErr("google", "no translation returned", nil)
	}
	return sb.String(), nil
}

var _ Translator = (*GoogleTranslator)(nil)
