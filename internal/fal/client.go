package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the FAL.ai queue endpoint
	DefaultBaseURL = "https://queue.fal.run"

	// Model is the image model used for all game narration
	Model = "fal-ai/flux/dev"
)

// Client is a FAL.ai queue API client with rate limiting
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	// Simple rate limiter
	mu           sync.Mutex
	lastRequest  time.Time
	minInterval  time.Duration
	pollInterval time.Duration
}

// NewClient creates a new FAL.ai client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// Rate limit: ~2 requests per second
		minInterval:  500 * time.Millisecond,
		pollInterval: 1 * time.Second,
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint,
// used by tests
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	c.minInterval = time.Millisecond
	c.pollInterval = 10 * time.Millisecond
	return c
}

// queueResponse is returned when a request is submitted to the queue
type queueResponse struct {
	RequestID   string `json:"request_id"`
	Status      string `json:"status"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

// resultResponse holds the generated images
type resultResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// GenerateImage submits an image request and polls the queue until it
// completes, returning the first image URL
func (c *Client) GenerateImage(ctx context.Context, prompt, theme string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("FAL API key not configured")
	}

	enhancedPrompt := fmt.Sprintf("%s, %s theme, game art style, high quality, detailed", prompt, theme)

	submitted, err := c.submit(ctx, enhancedPrompt)
	if err != nil {
		return "", fmt.Errorf("failed to submit image request: %w", err)
	}

	result, err := c.awaitResult(ctx, submitted)
	if err != nil {
		return "", err
	}

	if len(result.Images) == 0 {
		return "", fmt.Errorf("no images in response")
	}
	return result.Images[0].URL, nil
}

// submit enqueues a generation request
func (c *Client) submit(ctx context.Context, prompt string) (*queueResponse, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+Model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	queued := &queueResponse{}
	if err := c.do(req, queued); err != nil {
		return nil, err
	}
	return queued, nil
}

// awaitResult polls the status URL until the request completes, then
// fetches the response
func (c *Client) awaitResult(ctx context.Context, queued *queueResponse) (*resultResponse, error) {
	for {
		status := &queueResponse{}
		if err := c.get(ctx, queued.StatusURL, status); err != nil {
			return nil, fmt.Errorf("failed to poll status: %w", err)
		}

		switch status.Status {
		case "COMPLETED":
			result := &resultResponse{}
			if err := c.get(ctx, queued.ResponseURL, result); err != nil {
				return nil, fmt.Errorf("failed to fetch result: %w", err)
			}
			return result, nil
		case "IN_QUEUE", "IN_PROGRESS":
			// keep polling
		default:
			return nil, fmt.Errorf("image request failed with status %q", status.Status)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// get performs a GET request and decodes the JSON response
func (c *Client) get(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, result)
}

// do performs an HTTP request with rate limiting and decodes the response
func (c *Client) do(req *http.Request, result interface{}) error {
	// Simple rate limiting
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < c.minInterval {
		time.Sleep(c.minInterval - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	// Add API key header
	req.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	// Handle rate limiting (429)
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		// Wait and retry once
		time.Sleep(1 * time.Second)
		retry := req.Clone(req.Context())
		if req.GetBody != nil {
			if retry.Body, err = req.GetBody(); err != nil {
				return fmt.Errorf("failed to rewind request body: %w", err)
			}
		}
		resp, err = c.httpClient.Do(retry)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
