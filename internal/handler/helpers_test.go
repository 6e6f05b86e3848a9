package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/ecotrack/internal/auth"
	"github.com/dukerupert/ecotrack/internal/database"
	"github.com/dukerupert/ecotrack/internal/websocket"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type recordingHub struct {
	mu   sync.Mutex
	sent map[string][]websocket.Message
}

func newRecordingHub() *recordingHub {
	return &recordingHub{sent: make(map[string][]websocket.Message)}
}

func (h *recordingHub) Publish(ownerID string, msg websocket.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent[ownerID] = append(h.sent[ownerID], msg)
}

func (h *recordingHub) types(ownerID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, m := range h.sent[ownerID] {
		out = append(out, m.Type)
	}
	return out
}

type recordingReporter struct {
	errs []error
}

func (r *recordingReporter) Capture(err error, _ map[string]string) {
	r.errs = append(r.errs, err)
}

// request builds a request authenticated as owner; an empty owner sends none.
func request(t *testing.T, method, target, owner string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	if owner != "" {
		req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{OwnerID: owner}))
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["error"].(string)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// nestedID reads body[key].id from a {"success":true,"<key>":{...}} response.
func nestedID(t *testing.T, rec *httptest.ResponseRecorder, key string) int64 {
	t.Helper()
	body := decode[map[string]any](t, rec)
	inner, ok := body[key].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return int64(inner["id"].(float64))
}
