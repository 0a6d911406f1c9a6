// Package remote is the thin JSON-over-HTTP adapter for the backend mirror.
// The sync core treats it as an opaque store whose every call may fail.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/expense_sync/errors"
	"github.com/fatali-fataliyev/expense_sync/internal/tracker"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) CreateExpense(ctx context.Context, exp tracker.Expense) (tracker.Expense, error) {
	var created tracker.Expense
	if err := c.do(ctx, http.MethodPost, "/expenses", exp, &created); err != nil {
		return tracker.Expense{}, err
	}
	return created, nil
}

func (c *Client) UpdateExpense(ctx context.Context, id string, exp tracker.Expense) (tracker.Expense, error) {
	var updated tracker.Expense
	if err := c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id), exp, &updated); err != nil {
		return tracker.Expense{}, err
	}
	return updated, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListExpenses(ctx context.Context) ([]tracker.Expense, error) {
	var listed []tracker.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses", nil, &listed); err != nil {
		return nil, err
	}
	return listed, nil
}

// GetCurrentBudget returns nil without error when the server has no budget
// for the current month.
func (c *Client) GetCurrentBudget(ctx context.Context) (*tracker.Budget, error) {
	var b tracker.Budget
	err := c.do(ctx, http.MethodGet, "/budget", nil, &b)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if b.Month == "" {
		return nil, nil
	}
	return &b, nil
}

func (c *Client) SetBudget(ctx context.Context, b tracker.Budget) (tracker.Budget, error) {
	var stored tracker.Budget
	if err := c.do(ctx, http.MethodPut, "/budget", b, &stored); err != nil {
		return tracker.Budget{}, err
	}
	return stored, nil
}

// statusError keeps the HTTP status inspectable while still matching the
// ErrRemote sentinel.
type statusError struct {
	status int
	method string
	path   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d", e.method, e.path, e.status)
}

func (e *statusError) Unwrap() error { return appErrors.ErrRemote }

func isStatus(err error, status int) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == status
}

func (c *Client) do(ctx context.Context, method string, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal request body: %v", appErrors.ErrRemote, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %v", appErrors.ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s failed: %v", appErrors.ErrRemote, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", appErrors.ErrRemote, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{status: resp.StatusCode, method: method, path: path}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: failed to parse response body: %v", appErrors.ErrRemote, err)
		}
	}
	return nil
}
