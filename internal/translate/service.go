package translate

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

// Setting keys read at call time.
const (
	SettingEngine       = "translation_engine"
	SettingDeepLAPIKey  = "deepl_api_key"
	SettingOpenAIAPIKey = "openai_api_key"
	SettingOpenAIModel  = "openai_model"
	SettingGeminiAPIKey = "gemini_api_key"
	SettingGeminiModel  = "gemini_model"
)

// SettingsReader is satisfied by *db.Database.
type SettingsReader interface {
	GetSetting(key, defaultVal string) string
}

// Config carries environment defaults; settings override them at call time.
type Config struct {
	DefaultEngine string
	GoogleURL     string
	DeepLAPIKey   string
	DeepLAPIURL   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiAPIURL  string
}

// Service manages translation engines and routes calls to the active one.
type Service struct {
	mu            sync.RWMutex
	engines       map[string]Translator
	settings      SettingsReader
	defaultEngine string
}

// NewService creates a translation service with the built-in engines.
func NewService(cfg Config, settings SettingsReader) *Service {
	s := &Service{
		engines:       make(map[string]Translator),
		settings:      settings,
		defaultEngine: strings.ToLower(cfg.DefaultEngine),
	}
	if s.defaultEngine == "" {
		s.defaultEngine = "google"
	}

	s.Register(NewGoogleTranslator(cfg.GoogleURL))
	s.Register(NewDeepLTranslator(s.setting(SettingDeepLAPIKey, cfg.DeepLAPIKey), cfg.DeepLAPIURL))
	s.Register(NewOpenAITranslator(OpenAIConfig{
		APIKey:  s.setting(SettingOpenAIAPIKey, cfg.OpenAIAPIKey),
		Model:   s.setting(SettingOpenAIModel, cfg.OpenAIModel),
		BaseURL: cfg.OpenAIBaseURL,
	}))
	s.Register(NewGeminiTranslator(
		s.setting(SettingGeminiAPIKey, cfg.GeminiAPIKey),
		s.setting(SettingGeminiModel, cfg.GeminiModel),
		cfg.GeminiAPIURL,
	))

	log.Printf("[translate] registered engines: %s (default %s)", strings.Join(s.Engines(), ", "), s.defaultEngine)
	return s
}

func (s *Service) setting(key, fallback string) KeyResolver {
	if s.settings == nil {
		return staticKey(fallback)
	}
	return func() string {
		return s.settings.GetSetting(key, fallback)
	}
}

// Register adds or replaces an engine under its Name.
func (s *Service) Register(t Translator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engines[t.Name()] = t
}

// Engines returns the registered engine names, sorted.
func (s *Service) Engines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) Engine(name string) (Translator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.engines[strings.ToLower(name)]
	return t, ok
}

// Active returns the engine selected in settings, falling back to the
// configured default and then to google.
func (s *Service) Active() Translator {
	name := s.defaultEngine
	if s.settings != nil {
		name = strings.ToLower(s.settings.GetSetting(SettingEngine, s.defaultEngine))
	}
	if t, ok := s.Engine(name); ok {
		return t
	}
	log.Printf("[translate] unknown engine %q, using google", name)
	t, _ := s.Engine("google")
	return t
}

func (s *Service) Name() string {
	return s.Active().Name()
}

func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	engine := s.Active()
	start := time.Now()
	out, err := engine.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		log.Printf("[translate] engine=%s target=%s failed after %s: %v", engine.Name(), targetLang, time.Since(start), err)
		return "", err
	}
	log.Printf("[translate] engine=%s target=%s chars=%d took %s", engine.Name(), targetLang, len(text), time.Since(start))
	return out, nil
}

func (s *Service) Languages(ctx context.Context) ([]Language, error) {
	return s.Active().Languages(ctx)
}

var _ Translator = (*Service)(nil)
