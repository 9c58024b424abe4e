// Package translate provides the machine translation engines behind the UI.
package translate

import "context"

// AutoDetect asks the engine to detect the source language.
const AutoDetect = "auto"

// Translator is the common interface for all translation engines
type Translator interface {
	// Translate translates text from sourceLang (or AutoDetect) into targetLang.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	// Languages returns the target languages the engine accepts, in display order.
	Languages(ctx context.Context) ([]Language, error)
	// Name returns the engine name
	Name() string
}

// KeyResolver returns the current value of a setting (API key, model name).
// Resolved on every call so settings changes apply without a restart.
type KeyResolver func() string

func staticKey(v string) KeyResolver {
	return func() string { return v }
}
