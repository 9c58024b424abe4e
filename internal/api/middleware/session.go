package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/ai-translator/web/internal/auth"
	"github.com/ai-translator/web/internal/session"
)

// SessionCookieName carries the signed session ID. It has no Expires, so the
// browser drops it when the browsing session ends.
const SessionCookieName = "translator_session"

// SessionMiddleware resolves the caller's session from the signed cookie,
// issuing a fresh one when the cookie is missing or does not verify.
func SessionMiddleware(jwtService *auth.JWTService, store session.Store, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if id, err := jwtService.ValidateSessionToken(c.Value); err == nil {
					sid = id
				}
			}

			// every request counts as activity, including read-only renders
			if sid != "" {
				if err := store.Touch(r.Context(), sid); err != nil {
					log.Printf("[session] failed to touch %s: %v", sid, err)
				}
			}

			if sid == "" {
				sid = uuid.NewString()
				token, err := jwtService.GenerateSessionToken(sid)
				if err != nil {
					log.Printf("[session] failed to sign session cookie: %v", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), SessionKey, session.New(sid, store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the session attached by SessionMiddleware.
func GetSession(r *http.Request) *session.Session {
	sess, ok := r.Context().Value(SessionKey).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}
