package imagestore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	m.types[*input.Key] = aws.ToString(input.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) ListObjectsV2(_ context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(input.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (m *mockS3Client) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newTestStore(t *testing.T, mock *mockS3Client) *Store {
	t.Helper()
	s := New(Config{PublicBaseURL: "https://cdn.test/bucket/"}, slog.New(slog.DiscardHandler))
	s.client = mock
	return s
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG fake"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMirrorUnconfiguredReturnsSource(t *testing.T) {
	s := New(Config{}, slog.New(slog.DiscardHandler))
	assert.False(t, s.Configured())

	got, err := s.Mirror(context.Background(), "user_a", "https://upstream.test/x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://upstream.test/x.png", got)
}

func TestMirrorUploads(t *testing.T) {
	srv := imageServer(t)
	mock := newMockS3()
	s := newTestStore(t, mock)

	got, err := s.Mirror(context.Background(), "user_a", srv.URL+"/img.png")
	require.NoError(t, err)

	keys := mock.keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "eco-tips/user_a/"))
	assert.True(t, strings.HasSuffix(keys[0], ".png"))
	assert.Equal(t, "https://cdn.test/bucket/"+keys[0], got)
	assert.Equal(t, "image/png", mock.types[keys[0]])
	assert.Equal(t, []byte("\x89PNG fake"), mock.objects[keys[0]])
}

func TestMirrorFailures(t *testing.T) {
	srv := imageServer(t)

	t.Run("download status", func(t *testing.T) {
		s := newTestStore(t, newMockS3())
		_, err := s.Mirror(context.Background(), "user_a", srv.URL+"/missing.png")
		assert.ErrorContains(t, err, "status 404")
	})

	t.Run("upload error", func(t *testing.T) {
		mock := newMockS3()
		mock.putErr = errors.New("bucket gone")
		s := newTestStore(t, mock)
		_, err := s.Mirror(context.Background(), "user_a", srv.URL+"/img.png")
		assert.ErrorIs(t, err, mock.putErr)
	})
}

func TestDeleteOwner(t *testing.T) {
	mock := newMockS3()
	mock.objects["eco-tips/user_a/1.png"] = nil
	mock.objects["eco-tips/user_a/2.png"] = nil
	mock.objects["eco-tips/user_b/3.png"] = nil
	s := newTestStore(t, mock)

	n, err := s.DeleteOwner(context.Background(), "user_a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"eco-tips/user_b/3.png"}, mock.keys())
}
