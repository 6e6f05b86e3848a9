package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://llm.test/v1"

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewClient("sk-test", WithHTTPClient(hc), WithBaseURL(testBaseURL))
}

func TestChat_Success(t *testing.T) {
	c := newMockedClient(t)

	var got chatRequest
	httpmock.RegisterResponder("POST", testBaseURL+"/chat/completions",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewStringResponse(http.StatusOK,
				`{"choices":[{"message":{"role":"assistant","content":"  Unplug idle chargers.  "}}]}`), nil
		})

	text, err := c.Chat(context.Background(), "gpt-4", System("be brief"), User("tip please"))
	require.NoError(t, err)
	assert.Equal(t, "Unplug idle chargers.", text)

	assert.Equal(t, "gpt-4", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "tip please", got.Messages[1].Content)
}

func TestChat_NullContent(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("POST", testBaseURL+"/chat/completions",
		httpmock.NewStringResponder(http.StatusOK, `{"choices":[{"message":{"content":null}}]}`))

	text, err := c.Chat(context.Background(), "gpt-4", User("x"))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestChat_NoChoices(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("POST", testBaseURL+"/chat/completions",
		httpmock.NewStringResponder(http.StatusOK, `{"choices":[]}`))

	_, err := c.Chat(context.Background(), "gpt-4", User("x"))
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestChat_APIError(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("POST", testBaseURL+"/chat/completions",
		httpmock.NewStringResponder(http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached"}}`))

	_, err := c.Chat(context.Background(), "gpt-4", User("x"))
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "Rate limit reached", apiErr.Message)
}

func TestGenerateImage(t *testing.T) {
	c := newMockedClient(t)

	var got ImageRequest
	httpmock.RegisterResponder("POST", testBaseURL+"/images/generations",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewStringResponse(http.StatusOK,
				`{"data":[{"url":"https://images.test/abc.png"}]}`), nil
		})

	url, err := c.GenerateImage(context.Background(), ImageRequest{Model: "dall-e-3", Prompt: "a tree"})
	require.NoError(t, err)
	assert.Equal(t, "https://images.test/abc.png", url)
	assert.Equal(t, 1, got.N)
	assert.Equal(t, "1024x1024", got.Size)
	assert.Equal(t, "a tree", got.Prompt)
}

func TestGenerateImage_Empty(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("POST", testBaseURL+"/images/generations",
		httpmock.NewStringResponder(http.StatusOK, `{"data":[]}`))

	_, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestNotConfigured(t *testing.T) {
	c := NewClient("")
	assert.False(t, c.Configured())

	_, err := c.Chat(context.Background(), "gpt-4", User("x"))
	assert.ErrorContains(t, err, "not configured")
}
