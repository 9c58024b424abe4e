// Package session holds per-browser UI state across page reloads.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

const (
	KeySourceText   = "source_text"
	KeyResult       = "translation_result"
	KeyHasSeenIntro = "has_seen_intro"

	// Placeholder is shown in the output region until a translation succeeds.
	Placeholder = "Translation will appear here..."
)

var defaults = map[string]string{
	KeySourceText:   "",
	KeyResult:       Placeholder,
	KeyHasSeenIntro: "false",
}

// ErrEmptyResult is returned when a caller tries to store an empty result.
var ErrEmptyResult = errors.New("translation result must not be empty")

// Store is a session-scoped key/value backend. Implementations must be safe
// for concurrent use by different sessions.
type Store interface {
	// Get returns the stored value and whether it was set.
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	// Delete drops every value of a session.
	Delete(ctx context.Context, sessionID string) error
	// Touch marks the session active so reads keep it from expiring.
	Touch(ctx context.Context, sessionID string) error
}

// State is a point-in-time copy of a session's values.
type State struct {
	SourceText   string `json:"source_text"`
	Result       string `json:"result"`
	HasSeenIntro bool   `json:"has_seen_intro"`
}

// Session is a typed view over one session's values in a Store.
type Session struct {
	id    string
	store Store
}

func New(id string, store Store) *Session {
	return &Session{id: id, store: store}
}

func (s *Session) ID() string {
	return s.id
}

// Get returns the current value of key, or its default when unset.
func (s *Session) Get(ctx context.Context, key string) (string, error) {
	v, ok, err := s.store.Get(ctx, s.id, key)
	if err != nil {
		return "", fmt.Errorf("session get %s: %w", key, err)
	}
	if !ok {
		return defaults[key], nil
	}
	return v, nil
}

func (s *Session) Set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, s.id, key, value); err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

func (s *Session) SourceText(ctx context.Context) (string, error) {
	return s.Get(ctx, KeySourceText)
}

func (s *Session) SetSourceText(ctx context.Context, text string) error {
	return s.Set(ctx, KeySourceText, text)
}

func (s *Session) Result(ctx context.Context) (string, error) {
	v, err := s.Get(ctx, KeyResult)
	if err != nil {
		return "", err
	}
	if v == "" {
		return Placeholder, nil
	}
	return v, nil
}

func (s *Session) SetResult(ctx context.Context, result string) error {
	if result == "" {
		return ErrEmptyResult
	}
	return s.Set(ctx, KeyResult, result)
}

func (s *Session) HasSeenIntro(ctx context.Context) (bool, error) {
	v, err := s.Get(ctx, KeyHasSeenIntro)
	if err != nil {
		return false, err
	}
	seen, _ := strconv.ParseBool(v)
	return seen, nil
}

func (s *Session) MarkIntroSeen(ctx context.Context) error {
	return s.Set(ctx, KeyHasSeenIntro, "true")
}

// Reset restores source text and result to their initial values.
// The intro flag is left alone.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.SetSourceText(ctx, ""); err != nil {
		return err
	}
	return s.SetResult(ctx, Placeholder)
}

func (s *Session) Snapshot(ctx context.Context) (State, error) {
	var st State
	var err error
	if st.SourceText, err = s.SourceText(ctx); err != nil {
		return st, err
	}
	if st.Result, err = s.Result(ctx); err != nil {
		return st, err
	}
	if st.HasSeenIntro, err = s.HasSeenIntro(ctx); err != nil {
		return st, err
	}
	return st, nil
}
