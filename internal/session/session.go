// Package session signs and verifies the session cookie shared with the
// identity provider.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// CookieName is the cookie carrying the signed session value.
const CookieName = "atelier_session"

var (
	ErrInvalid = errors.New("invalid session")
	ErrExpired = errors.New("session expired")
)

// Signer creates and checks "payload.signature" values where payload is
// base64url("subject|expiry-unix") and signature is hex HMAC-SHA256.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// Enabled reports whether a secret is configured.
func (s *Signer) Enabled() bool { return len(s.secret) > 0 }

// Sign returns a session value for subject that expires after ttl.
func (s *Signer) Sign(subject string, ttl time.Duration) string {
	exp := s.now().Add(ttl).Unix()
	payload := base64.RawURLEncoding.EncodeToString([]byte(subject + "|" + strconv.FormatInt(exp, 10)))
	return payload + "." + hex.EncodeToString(s.mac(payload))
}

// Verify checks the signature and expiry and returns the subject.
func (s *Signer) Verify(value string) (string, error) {
	payload, signature, ok := strings.Cut(value, ".")
	if !ok {
		return "", ErrInvalid
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", ErrInvalid
	}
	if !hmac.Equal(provided, s.mac(payload)) {
		return "", ErrInvalid
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalid
	}
	subject, rawExp, ok := strings.Cut(string(decoded), "|")
	if !ok || subject == "" {
		return "", ErrInvalid
	}
	exp, err := strconv.ParseInt(rawExp, 10, 64)
	if err != nil {
		return "", ErrInvalid
	}
	if !s.now().Before(time.Unix(exp, 0)) {
		return "", ErrExpired
	}
	return subject, nil
}

func (s *Signer) mac(payload string) []byte {
	m := hmac.New(sha256.New, s.secret)
	_, _ = m.Write([]byte(payload))
	return m.Sum(nil)
}
