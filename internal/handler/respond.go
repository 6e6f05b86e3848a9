package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/ecotrack/internal/auth"
	"github.com/dukerupert/ecotrack/internal/middleware"
	"github.com/dukerupert/ecotrack/internal/websocket"
)

const maxBodyBytes = 1 << 20

// Publisher delivers change notifications to an owner's live clients.
type Publisher interface {
	Publish(ownerID string, msg websocket.Message)
}

// ErrorReporter forwards unexpected failures to an error tracker.
type ErrorReporter interface {
	Capture(err error, tags map[string]string)
}

// Base carries what every entity handler shares.
type Base struct {
	Hub      Publisher
	Reporter ErrorReporter
	Logger   *slog.Logger
}

func (b Base) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

func (b Base) publish(ownerID, entity, action string, id int64) {
	if b.Hub != nil {
		b.Hub.Publish(ownerID, websocket.NewMessage(entity, action, id))
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail logs an unexpected error, reports it and answers 500 with the error
// text as details.
func (b Base) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	b.logger().Error(msg, "error", err, "path", r.URL.Path, "request_id", middleware.RequestID(r.Context()))
	if b.Reporter != nil {
		b.Reporter.Capture(err, map[string]string{
			"route":      r.Method + " " + r.URL.Path,
			"request_id": middleware.RequestID(r.Context()),
		})
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg, Details: err.Error()})
}

// ownerOrReject returns the authenticated owner, answering 401 when there is none.
func ownerOrReject(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID := auth.OwnerID(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return ownerID, true
}

var (
	errEmptyBody    = errors.New("empty request body")
	errTrailingData = errors.New("unexpected data after JSON body")
)

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// queryID reads the ?id= parameter. present reports whether one was given at
// all; a value that is not a positive integer yields ok == false.
func queryID(r *http.Request) (id int64, present, ok bool) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		return 0, false, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, true, false
	}
	return id, true, true
}

// emptyIfNil keeps list responses as [] rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
