// internal/app/system/auth/auth.go

// Package auth carries the already-authenticated identity through a
// request. Sign-in itself happens outside this service; the upstream auth
// layer establishes a signed session cookie holding the user's email, and
// this package reads it back and puts the identity into the request
// context. The engine never consults ambient state; handlers pass the
// identity into every service call explicitly.
package auth

import (
	"context"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey    = "is_authenticated"
	userEmailKey = "user_email"
	userNameKey  = "user_name"
)

// SessionUser is what we cache in the session and inject into r.Context().
type SessionUser struct {
	Email string
	Name  string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// SessionManager wraps the signed cookie store.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager. The key must
// be strong in production; securecookie signs every cookie with it.
func NewSessionManager(key, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if len(key) < 32 {
		// Weak dev key: replace with a random one so signatures stay
		// sound. Sessions won't survive a restart in that mode.
		logger.Warn("session key shorter than 32 bytes, using a random key")
		key = string(securecookie.GenerateRandomKey(32))
	}
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   domain,
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, name: name, log: logger}, nil
}

// CurrentUser returns the user in context and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// LoadSessionUser injects the user into context if they are signed in.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			email, _ := sess.Values[userEmailKey].(string)
			name, _ := sess.Values[userNameKey].(string)
			if email != "" {
				r = withUser(r, &SessionUser{Email: email, Name: name})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SaveSessionUser writes the identity into the session cookie. Called by
// the external sign-in callback after it has authenticated the user.
func (m *SessionManager) SaveSessionUser(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[isAuthKey] = true
	sess.Values[userEmailKey] = u.Email
	sess.Values[userNameKey] = u.Name
	return sess.Save(r, w)
}

// ClearSession signs the user out.
func (m *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// RequireSignedIn ensures there is a user in context (set by
// LoadSessionUser). API callers get a plain 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithTestUser injects a user directly into the request context,
// bypassing the session store. Test helper.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}
