// internal/infrastructure/remote/client.go
package remote

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

	"github.com/pkg/errors"
	"github.com/your-org/handmade-storefront/internal/config"
)

const (
	restPath  = "/rest/v1"
	userAgent = "handmade-storefront/1.0"

	// maxErrorBody caps how much of an error response is kept in StatusError
	maxErrorBody = 512
)

// StatusError is returned when the record store answers with a non-2xx status
type StatusError struct {
	Method     string
	Table      string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("record store %s %s: status %d: %s", e.Method, e.Table, e.StatusCode, e.Body)
}

// Client talks to a hosted record store exposing tables as
// /rest/v1/<table> endpoints with PostgREST filter syntax.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates a record store client
func New(cfg config.StoreConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("record store URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
	}, nil
}

// Health checks that the record store answers
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+restPath+"/", nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "record store unreachable")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return &StatusError{Method: http.MethodGet, Table: "/", StatusCode: resp.StatusCode}
	}
	return nil
}

// selectRows runs GET /rest/v1/<table>?<query> and decodes the row array into dest
func (c *Client) selectRows(ctx context.Context, table string, query url.Values, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(table, query), nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "select from %s", table)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, table); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.Wrapf(err, "decoding %s rows", table)
	}
	return nil
}

// insertRows runs POST /rest/v1/<table> with rows as the JSON body. The
// store is asked not to echo the inserted rows back.
func (c *Client) insertRows(ctx context.Context, table string, rows interface{}) error {
	body, err := json.Marshal(rows)
	if err != nil {
		return errors.Wrapf(err, "encoding %s rows", table)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL(table, nil), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "insert into %s", table)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, table); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) tableURL(table string, query url.Values) string {
	u := c.baseURL + restPath + "/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func checkStatus(resp *http.Response, table string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method:     resp.Request.Method,
		Table:      table,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
