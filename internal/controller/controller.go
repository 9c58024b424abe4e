// Package controller turns UI actions into session state changes.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ai-translator/web/internal/session"
	"github.com/ai-translator/web/internal/translate"
)

var errEmptyTranslation = errors.New("provider returned an empty translation")

// Translator is the slice of translate.Service the controller needs.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Controller applies translate and clear actions to a session.
type Controller struct {
	translator Translator
}

// New creates a controller that translates through translator.
func New(translator Translator) *Controller {
	return &Controller{translator: translator}
}

// HandleTranslate records sourceText in the session and translates it into
// target. The session result changes only on success. Provider failures are
// reported through the Outcome; the returned error is reserved for session
// store faults.
func (c *Controller) HandleTranslate(ctx context.Context, sess *session.Session, sourceText string, target translate.Language) (Outcome, error) {
	if err := sess.SetSourceText(ctx, sourceText); err != nil {
		return Outcome{}, err
	}

	if strings.TrimSpace(sourceText) == "" {
		return Warning(MessageEmptyInput), nil
	}

	translated, err := c.translator.Translate(ctx, sourceText, translate.AutoDetect, target.Code)
	if err == nil && strings.TrimSpace(translated) == "" {
		err = errEmptyTranslation
	}
	if err != nil {
		log.Printf("[controller] session %s: translate to %s failed: %v", sess.ID(), target.Code, err)
		return Failure(MessageFailure, err.Error()), nil
	}

	if err := sess.SetResult(ctx, translated); err != nil {
		return Outcome{}, err
	}

	name := target.Name
	if name == "" {
		name = target.Code
	}
	return Success(translated, fmt.Sprintf("Context translated to %s successfully!", name)), nil
}

// HandleClear resets the source text and the result placeholder.
func (c *Controller) HandleClear(ctx context.Context, sess *session.Session) error {
	return sess.Reset(ctx)
}
