// Package generate answers questions with a Gemini chat model,
// grounding the answer in retrieved document chunks.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Common errors
var (
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable not set")
	ErrEmptyQuestion = errors.New("question is empty")
	ErrNoAnswer      = errors.New("model returned no answer")
)

const (
	// DefaultModel is the chat model used for answer generation
	DefaultModel = "gemini-2.5-flash"

	// DefaultBaseURL is the Gemini API base URL
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// EnvAPIKey is the environment variable holding the API key
	EnvAPIKey = "GEMINI_API_KEY"

	requestTimeout = 60 * time.Second
)

// RequestError captures a non-2xx API response
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("generate request failed with status %d: %s", e.Status, e.Body)
}

// Client calls the Gemini generateContent API
type Client struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

// New creates a Client with the given API key and model.
// An empty model selects DefaultModel.
func New(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		httpc:   &http.Client{Timeout: requestTimeout},
	}, nil
}

// NewFromEnv creates a Client using the GEMINI_API_KEY environment variable.
func NewFromEnv(model string) (*Client, error) {
	return New(os.Getenv(EnvAPIKey), model)
}

// Model returns the chat model name.
func (c *Client) Model() string {
	return c.model
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Answer asks the model the given question grounded in the supplied
// context passages. Passages are inlined into the prompt in the order
// given, which callers arrange by ascending retrieval distance.
func (c *Client) Answer(ctx context.Context, question string, contexts []string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	return c.Generate(ctx, []Message{{Role: RoleUser, Text: buildPrompt(question, contexts)}})
}

// Message roles accepted by the Gemini API
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of a conversation
type Message struct {
	Role string
	Text string
}

// Generate sends a conversation to the model and returns the first
// candidate's text.
func (c *Client) Generate(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", ErrEmptyQuestion
	}

	reqBody := generateRequest{Contents: make([]content, len(messages))}
	for i, msg := range messages {
		reqBody.Contents[i] = content{
			Role:  msg.Role,
			Parts: []contentPart{{Text: msg.Text}},
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &RequestError{Status: resp.StatusCode, Body: string(body)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoAnswer
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func buildPrompt(question string, contexts []string) string {
	if len(contexts) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString("Answer the question using the document excerpts below. ")
	b.WriteString("If the excerpts do not contain the answer, say so.\n\n")
	for i, passage := range contexts {
		fmt.Fprintf(&b, "Excerpt %d:\n%s\n\n", i+1, passage)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
