package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New("test-key", "")
	require.NoError(t, err)
	client.baseURL = server.URL
	return client, server
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	client, err := New("key", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, client.Model())
}

func TestAnswer_BuildsGroundedPrompt(t *testing.T) {
	var captured generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, DefaultModel+":generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"role":  "model",
					"parts": []map[string]string{{"text": "42"}},
				}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	answer, err := client.Answer(context.Background(), "what is the answer?", []string{
		"the answer is 42",
		"unrelated passage",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", answer)

	require.Len(t, captured.Contents, 1)
	assert.Equal(t, RoleUser, captured.Contents[0].Role)
	prompt := captured.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Excerpt 1:\nthe answer is 42")
	assert.Contains(t, prompt, "Excerpt 2:\nunrelated passage")
	assert.Contains(t, prompt, "Question: what is the answer?")
}

func TestAnswer_EmptyQuestionRejected(t *testing.T) {
	client, err := New("key", "")
	require.NoError(t, err)

	_, err = client.Answer(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestGenerate_APIErrorSurfacesStatusAndBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	})

	_, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Text: "hi"}})
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusTooManyRequests, reqErr.Status)
	assert.Contains(t, reqErr.Body, "quota exceeded")
}

func TestGenerate_NoCandidates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Text: "hi"}})
	assert.ErrorIs(t, err, ErrNoAnswer)
}

func TestGenerate_MultiTurnRoles(t *testing.T) {
	var captured generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]string{{"text": "sure"}},
				}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	_, err := client.Generate(context.Background(), []Message{
		{Role: RoleUser, Text: "hello"},
		{Role: RoleModel, Text: "hi there"},
		{Role: RoleUser, Text: "continue"},
	})
	require.NoError(t, err)

	require.Len(t, captured.Contents, 3)
	assert.Equal(t, RoleModel, captured.Contents[1].Role)
}
