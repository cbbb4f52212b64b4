package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	v1 "github.com/jkilzi/taskqueue/api/v1"
	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 30 * time.Second
)

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithRetry replaces the retry policy of idempotent requests.
func WithRetry(opts ...backoff.RetryOption) Option {
	return func(cl *Client) {
		cl.retry = opts
	}
}

// Client talks to the HTTP API of a running taskqueue server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      []backoff.RetryOption
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, srvErrors.NewInvalidConfigurationError("server url", fmt.Sprintf("must be an absolute url, got %q", baseURL))
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/") + apiPrefix,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retry: []backoff.RetryOption{
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(3),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Health checks the server is up
// GET /api/v1/health
func (c *Client) Health(ctx context.Context) error {
	var health v1.Health
	return c.get(ctx, "/health", nil, &health)
}

// Scheduler returns the counters of the shared scheduler
// GET /api/v1/scheduler
func (c *Client) Scheduler(ctx context.Context) (*v1.SchedulerStatus, error) {
	var status v1.SchedulerStatus
	if err := c.get(ctx, "/scheduler", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetLimit changes the concurrency limit of the shared scheduler
// PUT /api/v1/scheduler/limit
func (c *Client) SetLimit(ctx context.Context, limit int) (*v1.SchedulerStatus, error) {
	resp, err := c.do(ctx, http.MethodPut, "/scheduler/limit", nil, v1.SchedulerLimit{Limit: limit})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var status v1.SchedulerStatus
		return &status, decode(resp.Body, &status)
	case http.StatusBadRequest:
		return nil, srvErrors.NewInvalidConfigurationError("concurrency limit", readError(resp.Body))
	default:
		return nil, fmt.Errorf("failed to set limit: %s: %s", resp.Status, readError(resp.Body))
	}
}

// ListRuns returns journaled runs
// GET /api/v1/runs
func (c *Client) ListRuns(ctx context.Context, params v1.ListRunsParams) (*v1.RunListResponse, error) {
	query := url.Values{}
	for _, j := range params.Job {
		query.Add("job", j)
	}
	for _, s := range params.State {
		query.Add("state", string(s))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}

	var list v1.RunListResponse
	if err := c.get(ctx, "/runs", query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetRun returns one run
// GET /api/v1/runs/{id}
func (c *Client) GetRun(ctx context.Context, id string) (*v1.Run, error) {
	var run v1.Run
	if err := c.get(ctx, "/runs/"+url.PathEscape(id), nil, &run); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, srvErrors.NewRunNotFoundError(id)
		}
		return nil, err
	}
	return &run, nil
}

// Find starts a background keyword search and returns the run id
// POST /api/v1/jobs/find
func (c *Client) Find(ctx context.Context, dir, keyword string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/jobs/find", nil, v1.FindRequest{Dir: dir, Keyword: keyword})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		var accepted v1.JobAccepted
		if err := decode(resp.Body, &accepted); err != nil {
			return "", err
		}
		return accepted.Id, nil
	case http.StatusBadRequest:
		return "", srvErrors.NewInvalidConfigurationError("find request", readError(resp.Body))
	default:
		return "", fmt.Errorf("failed to start find: %s: %s", resp.Status, readError(resp.Body))
	}
}

// WaitRun polls the run every interval until it leaves the running state.
func (c *Client) WaitRun(ctx context.Context, id string, interval time.Duration) (*v1.Run, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		run, err := c.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		if run.State != v1.RunStateRunning {
			return run, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

var errNotFound = errors.New("not found")

// get retries on transport errors and 5xx answers.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		resp, err := c.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := decode(resp.Body, out); err != nil {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, nil
		case resp.StatusCode == http.StatusNotFound:
			return struct{}{}, backoff.Permanent(errNotFound)
		case resp.StatusCode >= http.StatusInternalServerError:
			return struct{}{}, fmt.Errorf("%s %s: %s", http.MethodGet, path, resp.Status)
		default:
			return struct{}{}, backoff.Permanent(fmt.Errorf("%s %s: %s: %s", http.MethodGet, path, resp.Status, readError(resp.Body)))
		}
	}, c.retry...)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	zap.S().Named("client").Debugw("api request", "method", method, "url", u)
	return c.httpClient.Do(req)
}

func decode(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readError(r io.Reader) string {
	var e v1.Error
	if err := json.NewDecoder(r).Decode(&e); err != nil || e.Error == "" {
		return "unknown error"
	}
	return e.Error
}
