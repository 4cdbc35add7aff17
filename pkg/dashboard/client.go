// Package dashboard talks to the Ray dashboard's state API.
package dashboard

import (
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

	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/user/ray-log-explorer/pkg/logging"
	"github.com/user/ray-log-explorer/pkg/models"
)

const (
	logsPath     = "api/v0/logs"
	logFilePath  = "api/v0/logs/file"
	nodesPath    = "nodes"
	maxBodyBytes = 64 << 20
	// terminal cells of server text kept in an error message
	maxStatusWidth = 200
)

// Client fetches node and log data from a dashboard
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	listings   singleflight.Group
}

// NewClient creates a new dashboard client.
// httpClient may be nil to use a default client.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse dashboard url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("dashboard url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		timeout:    timeout,
	}, nil
}

// BaseURL returns the dashboard root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// envelope is the dashboard's standard response wrapper
type envelope struct {
	Result bool            `json:"result"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

type logListData struct {
	Result map[string][]string `json:"result"`
}

type nodeSummaryData struct {
	Summary []struct {
		IP       string `json:"ip"`
		Hostname string `json:"hostname"`
		Raylet   struct {
			NodeID string `json:"nodeId"`
			State  string `json:"state"`
		} `json:"raylet"`
	} `json:"summary"`
}

// ListLogGroups lists log paths on a node, grouped by category.
// An empty glob is omitted so the server lists the root.
// Concurrent calls for the same node and glob share one request.
func (c *Client) ListLogGroups(ctx context.Context, nodeID, glob string) (map[string][]string, error) {
	key := nodeID + "\x00" + glob
	v, err, shared := c.listings.Do(key, func() (interface{}, error) {
		return c.listLogGroups(ctx, nodeID, glob)
	})
	if shared {
		logging.Debug("listing request shared", zap.String("node_id", nodeID), zap.String("glob", glob))
	}
	if err != nil {
		return nil, err
	}
	return v.(map[string][]string), nil
}

func (c *Client) listLogGroups(ctx context.Context, nodeID, glob string) (map[string][]string, error) {
	q := url.Values{}
	q.Set("node_id", nodeID)
	if glob != "" {
		q.Set("glob", glob)
	}

	var data logListData
	if err := c.getJSON(ctx, logsPath, q, &data); err != nil {
		return nil, fmt.Errorf("list logs on node %s: %w", nodeID, err)
	}
	if data.Result == nil {
		data.Result = map[string][]string{}
	}
	return data.Result, nil
}

// DownloadURL builds the URL of a log file; maxLines -1 means the whole file
func (c *Client) DownloadURL(nodeID, filename string, maxLines int) string {
	q := url.Values{}
	q.Set("node_id", nodeID)
	q.Set("filename", filename)
	q.Set("lines", strconv.Itoa(maxLines))
	return c.endpoint(logFilePath, q)
}

// ListAliveNodes returns the nodes whose raylet is alive
func (c *Client) ListAliveNodes(ctx context.Context) ([]models.Node, error) {
	q := url.Values{}
	q.Set("view", "summary")

	var data nodeSummaryData
	if err := c.getJSON(ctx, nodesPath, q, &data); err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	nodes := []models.Node{}
	for _, n := range data.Summary {
		if n.Raylet.State != models.NodeStateAlive {
			continue
		}
		nodes = append(nodes, models.Node{
			NodeID:   n.Raylet.NodeID,
			IP:       n.IP,
			Hostname: n.Hostname,
			State:    n.Raylet.State,
		})
	}
	return nodes, nil
}

// FetchLogFile downloads the content of a log file
func (c *Client) FetchLogFile(ctx context.Context, nodeID, filename string, maxLines int) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	target := c.DownloadURL(nodeID, filename, maxLines)
	body, err := c.do(ctx, target)
	if err != nil {
		return "", fmt.Errorf("fetch %s on node %s: %w", filename, nodeID, err)
	}
	return string(body), nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out interface{}) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := c.do(ctx, c.endpoint(path, q))
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrBadResponse, err)
	}
	if !env.Result {
		if isNotFoundMessage(env.Msg) {
			return fmt.Errorf("%w: %s", ErrNotFound, env.Msg)
		}
		return fmt.Errorf("%w: %s", ErrRequestFailed, env.Msg)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %v", ErrBadResponse, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Warn("dashboard request failed", zap.String("url", target), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	logging.Debug("dashboard request",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, statusText(resp, body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		// error bodies often still carry the envelope message
		var env envelope
		if json.Unmarshal(body, &env) == nil && isNotFoundMessage(env.Msg) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, env.Msg)
		}
		return nil, fmt.Errorf("%w: %s", ErrNetwork, statusText(resp, body))
	}
	return body, nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func statusText(resp *http.Response, body []byte) string {
	msg := strings.TrimSpace(string(body))
	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Msg != "" {
		msg = env.Msg
	}
	msg = ansi.Truncate(msg, maxStatusWidth, "...")
	if msg == "" {
		return resp.Status
	}
	return resp.Status + ": " + msg
}

func isNotFoundMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}

// IsNotFound reports whether err means the node or file is absent
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
