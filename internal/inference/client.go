package inference

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client queries an inference server over HTTP. The zero-timeout client is
// intentional: every call takes a context carrying its own deadline.
type Client struct {
	base       string
	httpClient *http.Client
}

// NewClient returns a Client for the server at baseURL, e.g. "http://127.0.0.1:8000".
func NewClient(baseURL string) *Client {
	return &Client{
		base:       strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 0},
	}
}

// BaseURL returns the server address this client targets.
func (c *Client) BaseURL() string { return c.base }

// Ready reports whether the server accepts inference requests.
func (c *Client) Ready(ctx context.Context) (bool, error) {
	return c.health(ctx, "/v2/health/ready")
}

// Live reports whether the server process is responsive at all.
func (c *Client) Live(ctx context.Context) (bool, error) {
	return c.health(ctx, "/v2/health/live")
}

func (c *Client) health(ctx context.Context, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// LoadModel asks the server to load the named model from its repository.
func (c *Client) LoadModel(ctx context.Context, name string) error {
	return c.repositoryAction(ctx, name, "load")
}

// UnloadModel asks the server to release the named model.
func (c *Client) UnloadModel(ctx context.Context, name string) error {
	return c.repositoryAction(ctx, name, "unload")
}

func (c *Client) repositoryAction(ctx context.Context, name, action string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("model name is empty")
	}
	u := fmt.Sprintf("%s/v2/repository/models/%s/%s", c.base, url.PathEscape(name), action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s model %s: %s: %s", action, name, resp.Status, string(b))
	}
	return nil
}
