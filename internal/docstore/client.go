package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Client implements Store against the mailkeep document server's
// HTTP API.
type Client struct {
	// HTTP is the underlying client used for all requests.
	HTTP *http.Client
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string
}

// NewClient creates a Client talking to baseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{HTTP: httpClient, BaseURL: baseURL}
}

func (c *Client) docURL(collection, key string) string {
	return fmt.Sprintf("%s/api/collections/%s/%s",
		c.BaseURL, url.PathEscape(collection), url.PathEscape(key))
}

// PutKeyed upserts the document at key via PUT.
func (c *Client) PutKeyed(ctx context.Context, collection, key string, fields Fields) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.docURL(collection, key), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, key, err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("put %s/%s: unexpected status %d", collection, key, resp.StatusCode)
	}
	return nil
}

// GetKeyed fetches the document at key. A 404 maps to ErrNotFound.
func (c *Client) GetKeyed(ctx context.Context, collection, key string) (Fields, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL(collection, key), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	defer drain(resp)
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s/%s: unexpected status %d", collection, key, resp.StatusCode)
	}
	var fields Fields
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}

// ListAll fetches every document in the collection.
func (c *Client) ListAll(ctx context.Context, collection string) ([]Keyed, error) {
	u := fmt.Sprintf("%s/api/collections/%s", c.BaseURL, url.PathEscape(collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list %s: unexpected status %d", collection, resp.StatusCode)
	}
	var docs []Keyed
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

// DeleteKeyed removes the document at key. A 404 is treated as
// success, matching Store semantics.
func (c *Client) DeleteKeyed(ctx context.Context, collection, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.docURL(collection, key), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete %s/%s: unexpected status %d", collection, key, resp.StatusCode)
	}
	return nil
}

// drain discards the body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
