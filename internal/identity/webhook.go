package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const webhookTolerance = 5 * time.Minute

var ErrInvalidSignature = errors.New("invalid webhook signature")

const EventUserDeleted = "user.deleted"

// Event is a webhook delivery from the provider.
type Event struct {
	Type string `json:"type"`
	Data struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	} `json:"data"`
}

// WebhookVerifier checks Svix-style signatures: HMAC-SHA256 over
// "<msg id>.<timestamp>.<body>" keyed with the base64 part of a whsec_ secret.
type WebhookVerifier struct {
	key []byte
	now func() time.Time
}

func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	if len(key) == 0 {
		return nil, errors.New("webhook secret is empty")
	}
	return &WebhookVerifier{key: key, now: time.Now}, nil
}

// Sign returns the v1 signature for a message, as the provider would send it.
func (v *WebhookVerifier) Sign(msgID string, ts time.Time, body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%d.", msgID, ts.Unix())
	mac.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify authenticates body against the svix-* headers and decodes the event.
func (v *WebhookVerifier) Verify(h http.Header, body []byte) (*Event, error) {
	msgID := h.Get("svix-id")
	tsHeader := h.Get("svix-timestamp")
	sigHeader := h.Get("svix-signature")
	if msgID == "" || tsHeader == "" || sigHeader == "" {
		return nil, fmt.Errorf("%w: missing headers", ErrInvalidSignature)
	}

	secs, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	ts := time.Unix(secs, 0)
	if d := v.now().Sub(ts); d > webhookTolerance || d < -webhookTolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	want := v.Sign(msgID, ts, body)
	matched := false
	for _, sig := range strings.Fields(sigHeader) {
		if hmac.Equal([]byte(sig), []byte(want)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrInvalidSignature
	}

	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}
