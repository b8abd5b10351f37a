// Package generator is the client for the hosted image-generation API.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/httpclient"
)

const serviceName = "generator"

var (
	ErrNotConfigured = errors.New("generator is not configured")
	ErrEmptyOutput   = errors.New("generator returned no output image")
)

// Request is one merge of an object photo with a material photo.
type Request struct {
	ObjectImageURL   string `json:"object_image_url"`
	MaterialImageURL string `json:"material_image_url"`
	Category         string `json:"category"`
	Prompt           string `json:"prompt"`
	Model            string `json:"model,omitempty"`
}

// Result is the generated image.
type Result struct {
	OutputURL string `json:"output_url"`
	Model     string `json:"model,omitempty"`
}

// Client calls the generation endpoint once per request. There is no polling.
type Client struct {
	baseURL string
	token   string
	model   string
	http    *http.Client
}

// NewClient creates a new generator client.
func NewClient(baseURL, token, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		model:   model,
		http:    httpclient.New(timeout),
	}
}

type generateResponse struct {
	Output []string `json:"output"`
	URL    string   `json:"url"`
	Model  string   `json:"model"`
}

// Generate submits one request and returns the resulting image URL.
func (c *Client) Generate(ctx context.Context, r Request) (*Result, error) {
	if c == nil || c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	if r.Model == "" {
		r.Model = c.model
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", serviceName, httpclient.ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", serviceName, httpclient.ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httpclient.ClassifyRequestError(ctx, serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.StatusError(serviceName, resp)
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: %w: decode: %v", serviceName, httpclient.ErrRequest, err)
	}

	out := body.URL
	if out == "" && len(body.Output) > 0 {
		out = body.Output[0]
	}
	if strings.TrimSpace(out) == "" {
		return nil, ErrEmptyOutput
	}
	return &Result{OutputURL: out, Model: body.Model}, nil
}
