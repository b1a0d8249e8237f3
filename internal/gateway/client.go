// Package gateway talks to the checklist server's HTTP API and translates
// transport outcomes into the domain error taxonomy.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pkt.systems/pslog"

	"github.com/Makepad-fr/relcheck/internal/checklist"
)

// Client is an HTTP client for one checklist server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the Bearer session token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a client for the server at baseURL
// (e.g. "https://checklist.example.com").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the server the client points at.
func (c *Client) BaseURL() string { return c.baseURL }

// AuthURL returns the browser entry point for establishing a session that
// returns to the given path afterwards.
func (c *Client) AuthURL(returnTo string) string {
	return c.baseURL + "/auth?" + url.Values{"return_to": {returnTo}}.Encode()
}

// FetchChecklist retrieves the checklist aggregate for ref. The stage the
// result declares is not validated here; that is the state machine's job.
func (c *Client) FetchChecklist(ctx context.Context, ref checklist.Ref) (*checklist.ChecklistResponse, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	var resp checklist.ChecklistResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/checklist", refQuery(ref), &resp); err != nil {
		return nil, err
	}
	pslog.Ctx(ctx).Debug("checklist fetched", "ref", ref.String(), "items", len(resp.Checklist.Items))
	return &resp, nil
}

// SetCheck checks (PUT) or unchecks (DELETE) the feature item for the viewer
// and returns the server's authoritative post-mutation checklist. Callers
// must not assume it matches their speculative state; concurrent viewers may
// have toggled in between.
func (c *Client) SetCheck(ctx context.Context, ref checklist.Ref, featureNumber int, checked bool) (*checklist.ChecklistResponse, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	method := http.MethodPut
	if !checked {
		method = http.MethodDelete
	}
	q := refQuery(ref)
	q.Set("featureNumber", strconv.Itoa(featureNumber))
	var resp checklist.ChecklistResponse
	if err := c.doJSON(ctx, method, "/api/check", q, &resp); err != nil {
		return nil, err
	}
	pslog.Ctx(ctx).Debug("check updated", "ref", ref.String(), "feature", featureNumber, "checked", checked)
	return &resp, nil
}

// FetchMe retrieves the viewer and their recent open pull requests for the
// landing view.
func (c *Client) FetchMe(ctx context.Context) (*checklist.MeResponse, error) {
	var resp checklist.MeResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func refQuery(ref checklist.Ref) url.Values {
	return url.Values{
		"owner":  {ref.Owner},
		"repo":   {ref.Repo},
		"number": {strconv.Itoa(ref.Number)},
		"stage":  {ref.Stage},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return &checklist.TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &checklist.TransportError{Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &checklist.TransportError{Err: fmt.Errorf("%s %s: decode: %w", method, path, err)}
	}
	return nil
}

// parseError maps a non-2xx response to the error taxonomy: a body decoding
// to a known structured error becomes an AuthError, anything else a
// TransportError carrying the status line and raw body.
func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp checklist.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Type == checklist.ErrorTypeNotAuthed {
		return &checklist.AuthError{StatusCode: resp.StatusCode}
	}

	return &checklist.TransportError{
		StatusCode: resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Body:       strings.TrimSpace(string(body)),
	}
}
