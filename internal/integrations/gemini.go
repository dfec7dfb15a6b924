package integrations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	geminiService   = "gemini"
	fullResponseLen = 500
)

// GenerationConfig tunes a single generateContent call.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// text concatenates the parts of the first candidate.
func (r *geminiResponse) text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// CitationCheck is the outcome of asking the model about a brand.
type CitationCheck struct {
	Brand         string `json:"brand"`
	Query         string `json:"query"`
	Mentioned     bool   `json:"mentioned"`
	DirectMention bool   `json:"direct_mention"`
	SemanticMatch bool   `json:"semantic_match"`
	Context       string `json:"citation_context"`
	FullResponse  string `json:"full_response"`
}

// GeminiClient calls the Gemini generateContent endpoint.
type GeminiClient struct {
	http    *resty.Client
	apiKey  string
	model   string
	retrier *Retrier
	matcher *Matcher
}

// NewGeminiClient creates a client against baseURL
// (e.g. https://generativelanguage.googleapis.com/v1beta). The client
// verifies indirect mentions with itself.
func NewGeminiClient(baseURL, apiKey, model string, retrier *Retrier) *GeminiClient {
	c := &GeminiClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Content-Type", "application/json"),
		apiKey:  apiKey,
		model:   model,
		retrier: retrier,
	}
	c.matcher = NewMatcher(c)
	return c
}

// Configured reports whether an API key is set.
func (c *GeminiClient) Configured() bool {
	return c.apiKey != ""
}

// Generate sends prompt and returns the concatenated response text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig, timeout time.Duration) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("gemini: %w", ErrNotConfigured)
	}

	body := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: cfg,
	}

	resp, err := c.retrier.Send(ctx, geminiService, timeout, func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParam("key", c.apiKey).
			SetBody(body).
			SetResult(&geminiResponse{}).
			Post("/models/" + c.model + ":generateContent")
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	out, _ := resp.Result().(*geminiResponse)
	return out.text(), nil
}

// CheckCitation asks query and reports whether the answer mentions brand.
func (c *GeminiClient) CheckCitation(ctx context.Context, brand, query string) (*CitationCheck, error) {
	text, err := c.Generate(ctx, query, GenerationConfig{
		Temperature:     ptr(0.7),
		MaxOutputTokens: 1024,
	}, DefaultTimeout)
	if err != nil {
		return nil, err
	}

	m := c.matcher.Match(ctx, brand, text)

	full := []rune(text)
	if len(full) > fullResponseLen {
		full = full[:fullResponseLen]
	}

	return &CitationCheck{
		Brand:         brand,
		Query:         query,
		Mentioned:     m.Mentioned,
		DirectMention: m.Direct,
		SemanticMatch: m.Mentioned && !m.Direct,
		Context:       m.Context,
		FullResponse:  string(full),
	}, nil
}

// Verify asks the model a YES/NO question about whether text discusses brand.
func (c *GeminiClient) Verify(ctx context.Context, brand, text string) (bool, error) {
	answer, err := c.Generate(ctx, verifyPrompt(brand, text), GenerationConfig{
		Temperature:     ptr(0.1),
		MaxOutputTokens: 10,
	}, VerifyTimeout)
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToUpper(strings.TrimSpace(answer)), "YES"), nil
}

// TestConnection sends a trivial prompt to confirm the key works.
func (c *GeminiClient) TestConnection(ctx context.Context) error {
	_, err := c.Generate(ctx, "Say OK", GenerationConfig{MaxOutputTokens: 10}, VerifyTimeout)
	return err
}

func ptr[T any](v T) *T {
	return &v
}
