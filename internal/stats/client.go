package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client reads activity pages back from the external statistics service. The
// service is a collaborator; this backend only forwards its pages.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Activity(ctx context.Context, page, size int) (json.RawMessage, error) {
	return c.get(ctx, "/activity", page, size)
}

func (c *Client) DeletedFiles(ctx context.Context, page, size int) (json.RawMessage, error) {
	return c.get(ctx, "/files", page, size)
}

// ReportDeletedFiles records how many blobs a cleanup sweep removed. The
// statistics service aggregates these into the deleted-files pages.
func (c *Client) ReportDeletedFiles(ctx context.Context, amount int64) error {
	payload, err := json.Marshal(map[string]int64{"amount": amount})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/add", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("statistics service: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("statistics service: unexpected status %s", res.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, page, size int) (json.RawMessage, error) {
	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, url.Values{
		"page": {fmt.Sprint(page)},
		"size": {fmt.Sprint(size)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("statistics service: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("statistics service: unexpected status %s", res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}
