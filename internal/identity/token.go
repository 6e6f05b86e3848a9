// Package identity verifies session tokens issued by the hosted identity
// provider and resolves the user records behind them.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie the provider's frontend SDK stores the session token in.
const SessionCookie = "__session"

var ErrUnauthenticated = errors.New("unauthenticated")

type VerifierConfig struct {
	// PublicKeyPEM is the provider's RS256 verification key.
	PublicKeyPEM string
	// DevSecret enables HS256 tokens for local development when no public key is set.
	DevSecret         string
	Issuer            string
	AuthorizedParties []string
	Leeway            time.Duration
}

type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID       string `json:"sid,omitempty"`
	AuthorizedParty string `json:"azp,omitempty"`
}

// Session is the verified content of a session token.
type Session struct {
	UserID    string
	SessionID string
}

type Verifier struct {
	key     any
	parser  *jwt.Parser
	parties []string
}

func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	v := &Verifier{parties: cfg.AuthorizedParties}

	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	switch {
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		v.key = key
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	case cfg.DevSecret != "":
		v.key = []byte(cfg.DevSecret)
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	default:
		return nil, errors.New("identity verifier needs a public key or a dev secret")
	}

	v.parser = jwt.NewParser(opts...)
	return v, nil
}

// Verify checks the token's signature and claims and returns its session.
func (v *Verifier) Verify(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthenticated
	}

	var claims sessionClaims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return Session{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	if len(v.parties) > 0 && claims.AuthorizedParty != "" && !slices.Contains(v.parties, claims.AuthorizedParty) {
		return Session{}, fmt.Errorf("%w: unauthorized party %q", ErrUnauthenticated, claims.AuthorizedParty)
	}

	return Session{UserID: claims.Subject, SessionID: claims.SessionID}, nil
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
