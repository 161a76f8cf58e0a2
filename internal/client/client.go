// Package client talks to a running JotJot server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jotjot/internal/domain"
	"jotjot/internal/share"
)

const defaultTimeout = 30 * time.Second

// Client is a JotJot API client.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// Create shares content and returns its id and link.
func (c *Client) Create(ctx context.Context, content string) (share.Result, error) {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return share.Result{}, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/share", bytes.NewReader(body))
	if err != nil {
		return share.Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var res share.Result
	if err := c.do(req, &res); err != nil {
		return share.Result{}, err
	}
	return res, nil
}

// Get returns the content shared under id.
func (c *Client) Get(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/share/"+url.PathEscape(id), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	var res struct {
		Content string `json:"content"`
	}
	if err := c.do(req, &res); err != nil {
		return "", err
	}
	return res.Content, nil
}

// do sends req and decodes a successful JSON reply into out. Error replies
// become domain errors carrying the server's message.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &eb) != nil || eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return domain.Validation(eb.Error)
		case http.StatusNotFound:
			return domain.NotFound(eb.Error)
		default:
			return domain.Internal(eb.Error, fmt.Errorf("status %d", resp.StatusCode))
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
