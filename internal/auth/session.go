package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const DefaultSessionCookie = "recipehub_session"

// SessionStore persists session records keyed by an opaque id. Expiry is the
// store's business: Load must return ErrSessionNotFound once a record's TTL
// has passed.
type SessionStore interface {
	Save(ctx context.Context, id string, p Principal, ttl time.Duration) error
	Load(ctx context.Context, id string) (Principal, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SessionStrategy keeps the principal server side and hands the client a
// signed cookie naming the record.
type SessionStrategy struct {
	store  SessionStore
	codec  *securecookie.SecureCookie
	cookie string
	ttl    time.Duration
	secure bool
}

// NewSessionStrategy signs cookies with hashKey (HMAC-SHA256, at least 32
// bytes). Cookie age is not checked by the codec; the store's TTL decides.
func NewSessionStrategy(store SessionStore, hashKey []byte, opts SessionOptions) *SessionStrategy {
	if opts.CookieName == "" {
		opts.CookieName = DefaultSessionCookie
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}

	codec := securecookie.New(hashKey, nil).MaxAge(0)

	return &SessionStrategy{
		store:  store,
		codec:  codec,
		cookie: opts.CookieName,
		ttl:    opts.TTL,
		secure: opts.Secure,
	}
}

func (s *SessionStrategy) Name() string { return "session" }

func (s *SessionStrategy) CookieName() string { return s.cookie }

func (s *SessionStrategy) Authenticate(r *http.Request) (Principal, error) {
	id, err := s.sessionID(r)
	if err != nil {
		return Principal{}, err
	}

	p, err := s.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Principal{}, ErrExpiredCredential
		}
		return Principal{}, fmt.Errorf("load session: %w", err)
	}

	return p, nil
}

func (s *SessionStrategy) Issue(w http.ResponseWriter, r *http.Request, p Principal) (Issued, error) {
	// never reuse an id the client arrived with
	if old, err := s.sessionID(r); err == nil {
		if _, err := s.store.Delete(r.Context(), old); err != nil {
			return Issued{}, fmt.Errorf("drop previous session: %w", err)
		}
	}

	id, err := newSessionID()
	if err != nil {
		return Issued{}, err
	}

	if err := s.store.Save(r.Context(), id, p, s.ttl); err != nil {
		return Issued{}, fmt.Errorf("save session: %w", err)
	}

	encoded, err := s.codec.Encode(s.cookie, id)
	if err != nil {
		return Issued{}, fmt.Errorf("encode session cookie: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.ttl)
	http.SetCookie(w, s.newCookie(encoded, int(s.ttl.Seconds()), expiresAt))

	return Issued{ExpiresAt: expiresAt}, nil
}

// Revoke destroys the session record and always clears the cookie. Revoking
// twice is harmless: the second call finds nothing and reports false.
func (s *SessionStrategy) Revoke(w http.ResponseWriter, r *http.Request) (bool, error) {
	id, err := s.sessionID(r)
	http.SetCookie(w, s.newCookie("", -1, time.Unix(0, 0)))

	if err != nil {
		return false, nil
	}

	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	return deleted, nil
}

func (s *SessionStrategy) sessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(s.cookie)
	if err != nil || c.Value == "" {
		return "", ErrMissingCredential
	}

	var id string
	if err := s.codec.Decode(s.cookie, c.Value, &id); err != nil {
		if errors.Is(err, securecookie.ErrMacInvalid) {
			return "", ErrInvalidSignature
		}
		return "", ErrMalformedCredential
	}

	if id == "" {
		return "", ErrMalformedCredential
	}

	return id, nil
}

func (s *SessionStrategy) newCookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

func newSessionID() (string, error) {
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return "", errors.New("generate session id: entropy source failed")
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}
