package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiTestProvider(t *testing.T, handler http.Handler) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGeminiProvider("test-key", nil)
	require.NoError(t, err)
	g.baseURL = srv.URL
	return g
}

func newOpenAITestProvider(t *testing.T, handler http.Handler) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	o, err := NewOpenAIProvider("test-key", nil)
	require.NoError(t, err)
	o.baseURL = srv.URL
	return o
}

func TestGeminiEmbedDocuments(t *testing.T) {
	var gotTaskTypes []string
	g := newGeminiTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":batchEmbedContents")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req struct {
			Requests []geminiEmbedRequest `json:"requests"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		for _, item := range req.Requests {
			gotTaskTypes = append(gotTaskTypes, item.TaskType)
		}

		resp := map[string]interface{}{
			"embeddings": []map[string]interface{}{
				{"values": []float32{1, 2}},
				{"values": []float32{3, 4}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))

	vectors, err := g.EmbedDocuments(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 2}, vectors[0])
	assert.Equal(t, []float32{3, 4}, vectors[1])
	assert.Equal(t, []string{geminiTaskDocument, geminiTaskDocument}, gotTaskTypes)
}

func TestGeminiEmbedDocuments_PagesLargeBatches(t *testing.T) {
	var calls int
	var batchSizes []int
	g := newGeminiTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		var req struct {
			Requests []geminiEmbedRequest `json:"requests"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.LessOrEqual(t, len(req.Requests), MaxBatchSize)
		batchSizes = append(batchSizes, len(req.Requests))

		// Echo each input's length so ordering is observable.
		embeddings := make([]map[string]interface{}, len(req.Requests))
		for i, item := range req.Requests {
			embeddings[i] = map[string]interface{}{
				"values": []float32{float32(len(item.Content.Parts[0].Text))},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embeddings": embeddings})
	}))

	texts := make([]string, MaxBatchSize*2+5)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}

	vectors, err := g.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	assert.Equal(t, 3, calls, "inputs beyond the batch limit go out in further calls")
	assert.Equal(t, []int{MaxBatchSize, MaxBatchSize, 5}, batchSizes)
	for i, vec := range vectors {
		require.Len(t, vec, 1)
		assert.Equal(t, float32(i+1), vec[0], "vector %d out of order", i)
	}
}

func TestGeminiEmbedQuery(t *testing.T) {
	g := newGeminiTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":embedContent")

		var req geminiEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, geminiTaskQuery, req.TaskType)

		resp := map[string]interface{}{
			"embedding": map[string]interface{}{"values": []float32{5, 6, 7}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))

	vector, err := g.EmbedQuery(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 6, 7}, vector)
}

func TestGeminiRequestErrorCarriesStatusAndBody(t *testing.T) {
	g := newGeminiTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))

	_, err := g.EmbedQuery(context.Background(), "question")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderFailed)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusForbidden, reqErr.Status)
	assert.Contains(t, reqErr.Body, "bad key")
}

func TestGeminiRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	g := newGeminiTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		resp := map[string]interface{}{
			"embedding": map[string]interface{}{"values": []float32{1}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))

	vector, err := g.EmbedQuery(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vector)
	assert.EqualValues(t, 3, calls.Load())
}

func TestGeminiEmbeddingCountMismatch(t *testing.T) {
	g := newGeminiTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"embeddings": []map[string]interface{}{{"values": []float32{1}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))

	_, err := g.EmbedDocuments(context.Background(), []string{"one", "two"})
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestOpenAIEmbedDocuments(t *testing.T) {
	o := newOpenAITestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/embeddings"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultOpenAIModel, req.Model)

		resp := map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{1, 1}, "index": 0},
				{"embedding": []float32{2, 2}, "index": 1},
			},
			"model": DefaultOpenAIModel,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))

	vectors, err := o.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{2, 2}, vectors[1])
}

func TestOpenAIEmbedQueryUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		resp := map[string]interface{}{
			"data":  []map[string]interface{}{{"embedding": []float32{9, 9}, "index": 0}},
			"model": DefaultOpenAIModel,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	o, err := NewOpenAIProvider("test-key", NewCache(10))
	require.NoError(t, err)
	o.baseURL = srv.URL

	ctx := context.Background()
	first, err := o.EmbedQuery(ctx, "repeated query")
	require.NoError(t, err)
	second, err := o.EmbedQuery(ctx, "repeated query")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, calls.Load())
}
