package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"

	"github.com/dukerupert/ecotrack/internal/identity"
	"github.com/dukerupert/ecotrack/internal/store"
)

// WebhookVerifier authenticates identity provider deliveries.
type WebhookVerifier interface {
	Verify(h http.Header, body []byte) (*identity.Event, error)
}

// OwnerImages removes an owner's stored images.
type OwnerImages interface {
	DeleteOwner(ctx context.Context, ownerID string) (int, error)
}

// CacheEvicter drops a cached identity record.
type CacheEvicter interface {
	Evict(id string)
}

// WebhookHandler reacts to account lifecycle events from the identity provider.
type WebhookHandler struct {
	Base
	db       *sql.DB
	verifier WebhookVerifier
	images   OwnerImages
	users    CacheEvicter
}

func NewWebhookHandler(db *sql.DB, verifier WebhookVerifier, images OwnerImages, users CacheEvicter, base Base) *WebhookHandler {
	return &WebhookHandler{Base: base, db: db, verifier: verifier, images: images, users: users}
}

func (h *WebhookHandler) Identity(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	event, err := h.verifier.Verify(r.Header, body)
	if errors.Is(err, identity.ErrInvalidSignature) {
		h.logger().Warn("rejected webhook", "error", err)
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if event.Type == identity.EventUserDeleted && event.Data.ID != "" {
		if err := h.purge(r.Context(), event.Data.ID); err != nil {
			h.fail(w, r, "Internal Server Error", err)
			return
		}
	} else {
		h.logger().Debug("ignored webhook event", "type", event.Type)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *WebhookHandler) purge(ctx context.Context, ownerID string) error {
	rows, err := store.PurgeOwner(ctx, h.db, ownerID)
	if err != nil {
		return err
	}
	images := 0
	if h.images != nil {
		if images, err = h.images.DeleteOwner(ctx, ownerID); err != nil {
			return err
		}
	}
	if h.users != nil {
		h.users.Evict(ownerID)
	}
	h.logger().Info("purged deleted user", "owner", ownerID, "rows", rows, "images", images)
	return nil
}
