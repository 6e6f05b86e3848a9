package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dukerupert/ecotrack/internal/auth"
	"github.com/dukerupert/ecotrack/internal/identity"
)

// DefaultPublicPaths are reachable without a session. Entries ending in "/"
// (other than "/" itself) match as prefixes.
var DefaultPublicPaths = []string{"/", "/health", "/metrics", "/api/webhooks/"}

type TokenVerifier interface {
	Verify(token string) (identity.Session, error)
}

type UserResolver interface {
	Lookup(ctx context.Context, id string) (*identity.User, error)
}

type AuthConfig struct {
	Verifier    TokenVerifier
	Users       UserResolver
	SignInURL   string
	PublicPaths []string
	Logger      *slog.Logger
}

func isPublic(path string, public []string) bool {
	for _, p := range public {
		if p == path {
			return true
		}
		if len(p) > 1 && strings.HasSuffix(p, "/") && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RequireAuth verifies the provider session token and resolves the user behind
// it before any handler runs. API callers get JSON errors; page requests are
// sent to the sign-in flow.
func RequireAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.PublicPaths == nil {
		cfg.PublicPaths = DefaultPublicPaths
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path, cfg.PublicPaths) {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := cfg.Verifier.Verify(identity.TokenFromRequest(r))
			if err != nil {
				rejectUnauthenticated(w, r, cfg.SignInURL)
				return
			}

			user, err := cfg.Users.Lookup(r.Context(), sess.UserID)
			if errors.Is(err, identity.ErrUserNotFound) {
				writeJSONError(w, http.StatusNotFound, "User not found")
				return
			}
			if err != nil {
				cfg.Logger.Error("resolve user", "owner", sess.UserID, "error", err, "request_id", RequestID(r.Context()))
				writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}

			ac := auth.AuthContext{
				OwnerID:   user.ID,
				SessionID: sess.SessionID,
				Email:     user.PrimaryEmail(),
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectUnauthenticated(w http.ResponseWriter, r *http.Request, signInURL string) {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/ws" {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	http.Redirect(w, r, signInRedirect(signInURL, r), http.StatusSeeOther)
}

// signInRedirect builds the sign-in URL carrying the page to return to.
func signInRedirect(signInURL string, r *http.Request) string {
	if signInURL == "" {
		signInURL = "/sign-in"
	}
	u, err := url.Parse(signInURL)
	if err != nil {
		return signInURL
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	back := scheme + "://" + r.Host + r.URL.RequestURI()

	q := u.Query()
	q.Set("redirect_url", back)
	u.RawQuery = q.Encode()
	return u.String()
}
