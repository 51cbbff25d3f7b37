package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash-image"

var (
	ErrNoCredentials = errors.New("gemini api key is not configured")
	ErrEmptyPrompt   = errors.New("prompt is empty")
	ErrEmptyImage    = errors.New("source image is empty")
)

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	gen    *genai.Client
	model  string
	logger *slog.Logger
}

// New builds the client. An empty API key is not an error: the client reports
// HasCredentials() == false and refuses to generate.
func New(ctx context.Context, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	c := &Client{model: model, logger: logger}

	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		logger.Warn("gemini api key missing, generation disabled")
		return c, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		cfg.HTTPOptions.BaseURL = strings.TrimRight(baseURL, "/") + "/"
	}
	if apiVersion := strings.TrimSpace(opts.APIVersion); apiVersion != "" {
		cfg.HTTPOptions.APIVersion = apiVersion
	}

	gen, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.gen = gen
	return c, nil
}

func (c *Client) HasCredentials() bool {
	return c != nil && c.gen != nil
}

func (c *Client) Model() string {
	return c.model
}

// GenerateImage sends the source image and the prompt in one user turn and
// returns every part of the first candidate.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (Response, error) {
	if !c.HasCredentials() {
		return Response{}, ErrNoCredentials
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return Response{}, ErrEmptyPrompt
	}
	if req.Image.Empty() {
		return Response{}, ErrEmptyImage
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType),
			genai.NewPartFromText(req.Prompt),
		}, genai.RoleUser),
	}

	result, err := c.gen.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return Response{}, fmt.Errorf("gemini generate content: %w", err)
	}

	resp := extractParts(result)
	c.logger.Debug("gemini response", "model", c.model, "parts", len(resp.Parts))
	return resp, nil
}

func extractParts(result *genai.GenerateContentResponse) Response {
	if result == nil || len(result.Candidates) == 0 {
		return Response{}
	}
	cand := result.Candidates[0]
	if cand == nil || cand.Content == nil {
		return Response{}
	}

	out := Response{Parts: make([]Part, 0, len(cand.Content.Parts))}
	for _, p := range cand.Content.Parts {
		if p == nil {
			continue
		}
		part := Part{Text: p.Text}
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			part.Data = p.InlineData.Data
			part.MIMEType = p.InlineData.MIMEType
			if part.MIMEType == "" {
				part.MIMEType = "image/png"
			}
		}
		out.Parts = append(out.Parts, part)
	}
	return out
}
