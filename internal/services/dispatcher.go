package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/shared"
)

// BaseURL is the Spotify Web API root that relative request paths resolve against.
const BaseURL = "https://api.spotify.com/v1"

// TokenProvider supplies a bearer token for every dispatched request. [auth.Authenticator] implements it.
type TokenProvider interface {
	ValidToken(ctx context.Context) (string, error)
}

// Request describes a single API call. Params become the query string and Payload the JSON body.
// nil values in either map are dropped before the request is sent.
type Request struct {
	Method  string
	URL     string // path relative to the API root, or an absolute http(s) URL
	Params  map[string]any
	Payload map[string]any
}

// DispatcherOpts configures a [Dispatcher].
type DispatcherOpts struct {
	BaseURL    string       // defaults to [BaseURL]
	HTTPClient *http.Client // defaults to [shared.NewHTTPClient]
	Logger     *log.Logger
}

// Dispatcher sends [Request] values to the API with an Authorization header obtained from its [TokenProvider].
//
// The token is requested on every call so refreshes performed by the provider are picked up immediately.
type Dispatcher struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	logger     *log.Logger
}

// NewDispatcher creates a [Dispatcher] that authenticates through tokens.
func NewDispatcher(tokens TokenProvider, opts DispatcherOpts) *Dispatcher {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = shared.NewHTTPClient(0, 0)
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	return &Dispatcher{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tokens:     tokens,
		logger:     shared.WithLogger(opts.Logger, "component", "dispatcher"),
	}
}

// Dispatch performs req and returns the decoded JSON body (map[string]any, []any, ...), or nil when the
// response body is empty. Non-2xx responses fail with [shared.APIError].
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (any, error) {
	body, err := d.do(ctx, req)
	if err != nil || len(body) == 0 {
		return nil, err
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return result, nil
}

// DispatchInto performs req and decodes the response into v. An empty body leaves v untouched.
func (d *Dispatcher) DispatchInto(ctx context.Context, req Request, v any) error {
	body, err := d.do(ctx, req)
	if err != nil || len(body) == 0 {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

func (d *Dispatcher) do(ctx context.Context, r Request) ([]byte, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := d.resolve(r.URL, r.Params)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	payload := compact(r.Payload)
	if len(payload) > 0 {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode payload: %v", shared.ErrInvalidInput, err)
		}
		reqBody = bytes.NewReader(data)
	}

	token, err := d.tokens.ValidToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, shared.NewTransportError(method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shared.NewTransportError(method, target, fmt.Errorf("failed to read response: %w", err))
	}

	d.logger.Debug("dispatched", "method", method, "url", target, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &shared.APIError{Status: resp.StatusCode, Method: method, URL: target, Body: string(body)}
	}

	return bytes.TrimSpace(body), nil
}

// resolve joins a relative path to the base URL and appends params to the query string.
// The existing query is kept as given, so paging links round-trip byte for byte.
func (d *Dispatcher) resolve(raw string, params map[string]any) (string, error) {
	target := raw
	if !isAbsolute(raw) {
		if !strings.HasPrefix(raw, "/") {
			raw = "/" + raw
		}
		target = d.baseURL + raw
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: invalid request URL %q: %v", shared.ErrInvalidInput, target, err)
	}

	extra := url.Values{}
	for k, v := range compact(params) {
		extra.Add(k, queryValue(v))
	}
	if len(extra) == 0 {
		return u.String(), nil
	}
	if u.RawQuery == "" {
		u.RawQuery = extra.Encode()
	} else {
		u.RawQuery += "&" + extra.Encode()
	}

	return u.String(), nil
}

func isAbsolute(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// compact returns m without its nil entries.
func compact(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

func queryValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []string:
		return strings.Join(val, ",")
	default:
		return fmt.Sprint(val)
	}
}
