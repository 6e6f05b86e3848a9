package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultAPIURL   = "https://api.clerk.com/v1"
	defaultCacheTTL = 5 * time.Minute
)

var ErrUserNotFound = errors.New("user not found")

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type User struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
}

func (u *User) PrimaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	return ""
}

// UserClient looks up users on the provider's backend API. Lookups are cached
// so a burst of requests from one user costs a single round trip.
type UserClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
}

type UserOption func(*UserClient)

func WithUserHTTPClient(c *http.Client) UserOption {
	return func(uc *UserClient) {
		uc.httpClient = c
	}
}

func WithAPIURL(u string) UserOption {
	return func(uc *UserClient) {
		if u != "" {
			uc.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithCacheTTL(ttl time.Duration) UserOption {
	return func(uc *UserClient) {
		uc.cache = cache.New(ttl, 2*ttl)
	}
}

func NewUserClient(secretKey string, opts ...UserOption) *UserClient {
	c := &UserClient{
		secretKey:  secretKey,
		baseURL:    DefaultAPIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache.New(defaultCacheTTL, 2*defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the backend secret key is set.
func (c *UserClient) Configured() bool {
	return c.secretKey != ""
}

// Lookup returns the user behind id. Without a secret key the token subject is
// trusted as-is and a bare user is returned.
func (c *UserClient) Lookup(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}
	if !c.Configured() {
		return &User{ID: id}, nil
	}
	if u, ok := c.cache.Get(id); ok {
		return u.(*User), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("identity API error: status %d", resp.StatusCode)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == "" {
		return nil, ErrUserNotFound
	}

	c.cache.SetDefault(id, &u)
	return &u, nil
}

// Evict drops a cached user, e.g. after the provider reports its deletion.
func (c *UserClient) Evict(id string) {
	c.cache.Delete(id)
}
