package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"macollections.com/storefront/internal/observability"
)

const (
	sessionCookieName = "ma_session"
	sessionLifetime   = 30 * 24 * time.Hour
)

// SessionData is the visitor state carried in the signed session cookie.
type SessionData struct {
	ID     string `json:"id"`
	Locale string `json:"locale,omitempty"`
	CartID string `json:"cart,omitempty"`
	// CartCount is the cart item total last shown in the header; the dropdown
	// opens when the next render observes a different total.
	CartCount int       `json:"seen,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// SetCart records the cart id, clearing the observed count when it changes.
func (s *SessionData) SetCart(id string) {
	if s.CartID == id {
		return
	}
	s.CartID = id
	s.CartCount = 0
	s.MarkDirty()
}

// SetCartCount records the item total shown in the header.
func (s *SessionData) SetCartCount(n int) {
	if s.CartCount == n {
		return
	}
	s.CartCount = n
	s.MarkDirty()
}

// SessionStore encodes sessions with gorilla/securecookie.
type SessionStore struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// ErrEphemeralKey is returned alongside a usable store when no hash key was
// configured and a random one was generated; sessions will not survive a restart.
var ErrEphemeralKey = errors.New("session: using ephemeral signing key")

// NewSessionStore builds a store. blockKey may be empty for signed-only cookies.
func NewSessionStore(hashKey, blockKey []byte, secure bool) (*SessionStore, error) {
	var warn error
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
		warn = ErrEphemeralKey
	}
	if len(blockKey) == 0 {
		blockKey = nil
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(sessionLifetime.Seconds()))
	return &SessionStore{codec: codec, secure: secure}, warn
}

// Session loads or initializes a session and stores it in request context.
// The cookie is written before the first byte of the response when the session changed.
func (s *SessionStore) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := s.read(r)
		if sd.ID == "" {
			now := time.Now().UTC()
			sd = &SessionData{ID: randID(), CreatedAt: now, UpdatedAt: now, CSRFToken: newCSRFToken(), dirty: true}
		}
		hw := newHookWriter(w, func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				s.write(r, w, sd)
			}
		})
		next.ServeHTTP(hw, r.WithContext(contextWithSession(r, sd)))
		// If nothing was written yet (e.g., HEAD), persist cookie now
		hw.fire()
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

func (s *SessionStore) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := s.codec.Decode(sessionCookieName, c.Value, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func (s *SessionStore) write(r *http.Request, w http.ResponseWriter, sd *SessionData) {
	encoded, err := s.codec.Encode(sessionCookieName, sd)
	if err != nil {
		observability.FromContext(r.Context()).Error("session cookie not written",
			zap.Error(err), zap.String("session_id", sd.ID))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionLifetime.Seconds()),
	})
	sd.dirty = false
}

func contextWithSession(r *http.Request, s *SessionData) context.Context {
	return context.WithValue(r.Context(), ctxKeySession, s)
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
