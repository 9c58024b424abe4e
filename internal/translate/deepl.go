package translate

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const deeplAPIURL = "https://api-free.deepl.com/v2"

// DeepLTranslator translates text using the DeepL API
type DeepLTranslator struct {
	apiKey     KeyResolver
	baseURL    string
	httpClient *http.Client
}

func NewDeepLTranslator(apiKey KeyResolver, baseURL string) *DeepLTranslator {
	if baseURL == "" {
		baseURL = deeplAPIURL
	}
	return &DeepLTranslator{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 1 * time.Minute,
		},
	}
}

func (d *DeepLTranslator) Name() string {
	return "deepl"
}

func (d *DeepLTranslator) key() (string, error) {
	k := ""
	if d.apiKey != nil {
		k = d.apiKey()
	}
	if k == "" {
		return "", providerErr(d.Name(), "DeepL API key not configured", ErrNotConfigured)
	}
	return k, nil
}

func (d *DeepLTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	key, err := d.key()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Add("text", text)
	form.Set("target_lang", deeplLangCode(targetLang))
	// omitting source_lang makes DeepL detect it
	if sourceLang != "" && sourceLang != AutoDetect {
		// source_lang takes no regional variant
		form.Set("source_lang", strings.ToUpper(strings.SplitN(sourceLang, "-", 2)[0]))
	}

	body, err := d.do(ctx, http.MethodPost, "/translate", key, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}

	var deeplResp struct {
		Translations []struct {
			DetectedSourceLanguage string `json:"detected_source_language"`
			Text                   string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &deeplResp); err != nil {
		return "", providerErr(d.Name(), "parse response", err)
	}
	if len(deeplResp.Translations) == 0 {
		return "", providerErr(d.Name(), "empty DeepL response", nil)
	}

	t := deeplResp.Translations[0]
	log.Printf("[deepl] translated %d chars %s -> %s", len(text), t.DetectedSourceLanguage, targetLang)
	return t.Text, nil
}

// Languages fetches DeepL's target language list.
func (d *DeepLTranslator) Languages(ctx context.Context) ([]Language, error) {
	key, err := d.key()
	if err != nil {
		return nil, err
	}

	body, err := d.do(ctx, http.MethodGet, "/languages?type=target", key, nil)
	if err != nil {
		return nil, err
	}

	var langs []struct {
		Language string `json:"language"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(body, &langs); err != nil {
		return nil, providerErr(d.Name(), "parse languages", err)
	}

	result := make([]Language, 0, len(langs))
	for _, l := range langs {
		result = append(result, Language{Name: l.Name, Code: l.Language})
	}
	return result, nil
}

func (d *DeepLTranslator) do(ctx context.Context, method, path, key string, payload io.Reader) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, payload)
	if err != nil {
		return nil, providerErr(d.Name(), "build request", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+key)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, providerErr(d.Name(), "DeepL API request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providerErr(d.Name(), "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Engine:     d.Name(),
			Message:    "DeepL API error: " + strings.TrimSpace(string(body)),
			StatusCode: resp.StatusCode,
		}
	}
	return body, nil
}

// deeplLangCode converts ISO 639-1 codes to DeepL format
func deeplLangCode(code string) string {
	mapping := map[string]string{
		"en":    "EN-US",
		"pt":    "PT-BR",
		"zh-cn": "ZH-HANS",
		"zh-tw": "ZH-HANT",
		"iw":    "HE",
		"no":    "NB",
	}
	if mapped, ok := mapping[strings.ToLower(code)]; ok {
		return mapped
	}
	return strings.ToUpper(code)
}

var _ Translator = (*DeepLTranslator)(nil)
