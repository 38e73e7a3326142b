package igapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
)

const statusOK = "ok"

// RequestOptions are the per-call parts of a request. They take precedence
// over the client's base options; built headers are merged last with Headers
// overriding them.
type RequestOptions struct {
	// Method defaults to GET, or POST when Form or Body is set.
	Method string
	// Path is resolved against the base URL; an absolute URL replaces it.
	Path  string
	Query url.Values
	// Form is sent urlencoded. Ignored when Body is set.
	Form    url.Values
	Body    io.Reader
	Headers http.Header
}

// Response is a completed call with its body already normalized.
type Response struct {
	StatusCode int
	Header     http.Header
	// Raw is the decompressed body after NormalizeJSON.
	Raw []byte
	// Body is the parsed body when it is a JSON object.
	Body map[string]any
}

// Status returns the top-level status field.
func (r *Response) Status() string {
	s, _ := r.Body["status"].(string)
	return s
}

// Decode unmarshals the normalized body into v. Numeric fields wider than
// float64 precision arrive as JSON strings; declare them as string (or with
// the ",string" tag option).
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Raw, v)
}

// Send performs one call. A response with status "ok" is returned as is.
// Otherwise the body is classified and a typed *APIError is returned for a
// known marker. Responses with no known marker are returned with a nil error
// unless the client was built with WithStrictStatus. Transport faults are
// returned as KindTransport errors wrapping the original error.
func (c *Client) Send(ctx context.Context, opts RequestOptions) (*Response, error) {
	req, err := c.newRequest(ctx, opts)
	if err != nil {
		return nil, err
	}

	logger := &requestLogger{id: uuid.New().String()[:8], base: c.logger}
	resp, err := c.doRequest(req, logger)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := readResponseBody(resp)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Err: fmt.Errorf("read response body: %w", err)}
	}

	result, err := parseResponse(resp, raw)
	if err != nil {
		logger.Log("%s %s -> undecodable body: %v", req.Method, req.URL.Path, err)
		return nil, err
	}

	if result.Status() == statusOK {
		return result, nil
	}

	if err := Classify(result); err != nil {
		logger.Log("%s %s -> %v", req.Method, req.URL.Path, err)
		return nil, err
	}

	if c.strict {
		return nil, &APIError{
			Kind:     KindUnclassified,
			Message:  messageOf(result.Body),
			Body:     result.Body,
			Response: result,
		}
	}
	// TODO: make strict status the default once callers handle KindUnclassified.
	logger.Log("%s %s -> unclassified status %q, returning body", req.Method, req.URL.Path, result.Status())
	return result, nil
}

// doRequest executes req and logs the request path and response status code.
func (c *Client) doRequest(req *http.Request, logger Logger) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Log("%s %s -> error: %v", req.Method, req.URL.Path, err)
		return nil, err
	}
	logger.Log("%s %s -> %d", req.Method, req.URL.Path, resp.StatusCode)
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	target, err := c.resolve(opts.Path)
	if err != nil {
		return nil, err
	}
	if len(opts.Query) > 0 {
		q := target.Query()
		for k, v := range opts.Query {
			q[k] = v
		}
		target.RawQuery = q.Encode()
	}

	body := opts.Body
	var contentType string
	if body == nil && opts.Form != nil {
		body = strings.NewReader(opts.Form.Encode())
		contentType = "application/x-www-form-urlencoded; charset=UTF-8"
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	overrides := opts.Headers
	if contentType != "" && HeaderValue(overrides, "Content-Type") == "" {
		overrides = overrides.Clone()
		if overrides == nil {
			overrides = http.Header{}
		}
		overrides["Content-Type"] = []string{contentType}
	}
	req.Header = BuildHeaders(c.state, overrides)
	// The transport writes req.Host itself; a Host map entry would be sent twice.
	if host := HeaderValue(req.Header, "Host"); host != "" {
		req.Host = host
	}
	for key := range req.Header {
		if strings.EqualFold(key, "Host") {
			delete(req.Header, key)
		}
	}
	return req, nil
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

func parseResponse(resp *http.Response, raw []byte) (*Response, error) {
	normalized := NormalizeJSON(raw)
	result := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Raw:        normalized,
	}

	var parsed any
	if err := json.Unmarshal(normalized, &parsed); err != nil {
		return nil, fmt.Errorf("decode response body (http %d): %w", resp.StatusCode, err)
	}
	if obj, ok := parsed.(map[string]any); ok {
		result.Body = obj
	}
	return result, nil
}
