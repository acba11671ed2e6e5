// Package session remembers the database a browser is chatting with.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/config"
)

// CookieName is the name of the chat session cookie.
const CookieName = "sqlchat-session"

// keyDescriptor is the session value holding the connection descriptor.
const keyDescriptor = "database_uri"

// Store keeps the connection descriptor in a signed and encrypted cookie.
// The descriptor carries the database password, so the cookie is never
// readable by the browser.
type Store struct {
	cookies *sessions.CookieStore
}

// NewStore builds the cookie store from cfg.
//
// The secret can be any passphrase. It is SHA-256 hashed into the signing key
// and, with a suffix, into the encryption key. It must be stable across
// restarts and servers or existing sessions become unreadable. An empty secret
// gets a random one, so sessions last only until the process exits.
func NewStore(cfg config.SessionConfig, logger *zap.Logger) (*Store, error) {
	secret := cfg.Secret
	if secret == "" {
		random := make([]byte, 32)
		if _, err := rand.Read(random); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		secret = string(random)
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	hashKey := sha256.Sum256([]byte(secret))
	blockKey := sha256.Sum256([]byte(secret + ":encryption"))

	cookies := sessions.NewCookieStore(hashKey[:], blockKey[:])
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cookies}, nil
}

// Descriptor returns the descriptor remembered for the request's browser, or "".
// An unreadable cookie (rotated secret, tampering) counts as no session.
func (s *Store) Descriptor(r *http.Request) string {
	sess, err := s.cookies.Get(r, CookieName)
	if err != nil {
		return ""
	}
	descriptor, _ := sess.Values[keyDescriptor].(string)
	return descriptor
}

// SetDescriptor remembers descriptor for the request's browser.
func (s *Store) SetDescriptor(w http.ResponseWriter, r *http.Request, descriptor string) error {
	// Get returns a fresh session alongside a decode error.
	sess, _ := s.cookies.Get(r, CookieName)
	sess.Values[keyDescriptor] = descriptor
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear forgets the descriptor and expires the cookie.
func (s *Store) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.cookies.Get(r, CookieName)
	delete(sess.Values, keyDescriptor)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
