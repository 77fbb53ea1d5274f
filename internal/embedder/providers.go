package embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Provider configuration
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"

	// Default models
	DefaultGeminiModel = "gemini-embedding-001"
	DefaultOpenAIModel = "text-embedding-3-small"

	// Dimensions
	GeminiDimension = 3072
	OpenAIDimension = 1536
	LocalDimension  = 384

	// Environment variables holding API keys
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"

	// Default API endpoints
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// Batch limits
	MaxBatchSize = 100

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
)

// Gemini task types steer the embedding toward its retrieval role
const (
	geminiTaskDocument = "RETRIEVAL_DOCUMENT"
	geminiTaskQuery    = "RETRIEVAL_QUERY"
)

// GeminiProvider implements Embedder using the Gemini embedding API
type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// NewGeminiProvider creates a new Gemini embedder
func NewGeminiProvider(apiKey string, cache *Cache) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvGeminiAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvGeminiAPIKey)
	}

	return &GeminiProvider{
		apiKey:  apiKey,
		model:   DefaultGeminiModel,
		baseURL: DefaultGeminiBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType"`
}

func (g *GeminiProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		page := texts[start:end]

		config := DefaultRetryConfig()
		batch, err := retryWithBackoff(ctx, config, func() ([][]float32, error) {
			return g.callBatchAPI(ctx, page)
		})
		if err != nil {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrProviderFailed, config.MaxRetries, err)
		}

		vectors = append(vectors, batch...)
	}

	// Cache successful embeddings
	if g.cache != nil {
		for i, vector := range vectors {
			g.cache.Set(ComputeHash(texts[i]), vector)
		}
	}

	return vectors, nil
}

func (g *GeminiProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if g.cache != nil {
		if vector, ok := g.cache.Get(hash); ok {
			return vector, nil
		}
	}

	config := DefaultRetryConfig()
	vector, err := retryWithBackoff(ctx, config, func() ([]float32, error) {
		return g.callQueryAPI(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrProviderFailed, config.MaxRetries, err)
	}

	if g.cache != nil {
		g.cache.Set(hash, vector)
	}

	return vector, nil
}

func (g *GeminiProvider) callBatchAPI(ctx context.Context, texts []string) ([][]float32, error) {
	requests := make([]geminiEmbedRequest, len(texts))
	for i, text := range texts {
		requests[i] = geminiEmbedRequest{
			Model:    "models/" + g.model,
			Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
			TaskType: geminiTaskDocument,
		}
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", g.baseURL, g.model, g.apiKey)
	body, err := postJSON(ctx, g.httpClient, url, map[string]interface{}{"requests": requests})
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrProviderFailed, len(apiResp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(apiResp.Embeddings))
	for i, emb := range apiResp.Embeddings {
		vectors[i] = emb.Values
	}

	return vectors, nil
}

func (g *GeminiProvider) callQueryAPI(ctx context.Context, text string) ([]float32, error) {
	request := geminiEmbedRequest{
		Model:    "models/" + g.model,
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: geminiTaskQuery,
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", g.baseURL, g.model, g.apiKey)
	body, err := postJSON(ctx, g.httpClient, url, request)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Embedding struct {
			Values []float32 `json:"values"`
		} `json:"embedding"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrProviderFailed)
	}

	return apiResp.Embedding.Values, nil
}

func (g *GeminiProvider) Dimension() int {
	return GeminiDimension
}

func (g *GeminiProvider) Provider() string {
	return ProviderGemini
}

func (g *GeminiProvider) Model() string {
	return g.model
}

func (g *GeminiProvider) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

// OpenAIProvider implements Embedder using the OpenAI embeddings API
type OpenAIProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates a new OpenAI embedder
func NewOpenAIProvider(apiKey string, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIAPIKey)
	}

	return &OpenAIProvider{
		apiKey:  apiKey,
		model:   DefaultOpenAIModel,
		baseURL: DefaultOpenAIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
	}, nil
}

func (o *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		page := texts[start:end]

		config := DefaultRetryConfig()
		batch, err := retryWithBackoff(ctx, config, func() ([][]float32, error) {
			return o.callAPI(ctx, page)
		})
		if err != nil {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrProviderFailed, config.MaxRetries, err)
		}

		vectors = append(vectors, batch...)
	}

	if o.cache != nil {
		for i, vector := range vectors {
			o.cache.Set(ComputeHash(texts[i]), vector)
		}
	}

	return vectors, nil
}

func (o *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if o.cache != nil {
		if vector, ok := o.cache.Get(hash); ok {
			return vector, nil
		}
	}

	config := DefaultRetryConfig()
	vectors, err := retryWithBackoff(ctx, config, func() ([][]float32, error) {
		return o.callAPI(ctx, []string{text})
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrProviderFailed, config.MaxRetries, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrProviderFailed)
	}

	if o.cache != nil {
		o.cache.Set(hash, vectors[0])
	}

	return vectors[0], nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": o.model,
	}

	body, err := postJSONAuth(ctx, o.httpClient, o.baseURL+"/embeddings", o.apiKey, reqBody)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrProviderFailed, len(apiResp.Data), len(texts))
	}

	vectors := make([][]float32, len(apiResp.Data))
	for i, data := range apiResp.Data {
		vectors[i] = data.Embedding
	}

	return vectors, nil
}

func (o *OpenAIProvider) Dimension() int {
	return OpenAIDimension
}

func (o *OpenAIProvider) Provider() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Model() string {
	return o.model
}

func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// LocalProvider produces deterministic hash-derived vectors with no network
// dependency. Useful offline and in tests; not semantically meaningful.
type LocalProvider struct {
	model string
	cache *Cache
}

// NewLocalProvider creates a new local embedder
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{
		model: "local-embeddings",
		cache: cache,
	}, nil
}

func (l *LocalProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = l.embed(text)
	}
	return vectors, nil
}

func (l *LocalProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if l.cache != nil {
		if vector, ok := l.cache.Get(hash); ok {
			return vector, nil
		}
	}

	vector := l.embed(text)
	if l.cache != nil {
		l.cache.Set(hash, vector)
	}
	return vector, nil
}

func (l *LocalProvider) embed(text string) []float32 {
	vector := make([]float32, LocalDimension)
	textHash := sha256.Sum256([]byte(text))
	for i := 0; i < LocalDimension; i++ {
		vector[i] = float32(textHash[i%len(textHash)]) / 255.0
	}
	return vector
}

func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}

// postJSON posts a JSON body and returns the response body. Non-2xx
// responses come back as *RequestError.
func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) ([]byte, error) {
	return doPost(ctx, client, url, "", payload)
}

// postJSONAuth is postJSON with a bearer token
func postJSONAuth(ctx context.Context, client *http.Client, url, token string, payload interface{}) ([]byte, error) {
	return doPost(ctx, client, url, token, payload)
}

func doPost(ctx context.Context, client *http.Client, url, token string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}
