package printone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	apiKeyHeader    = "x-api-key"
	requestIDHeader = "X-Request-Id"
	tracerName      = "github.com/print-one/printone-go"
)

// RequestOptions carries per-request settings for a Transport call.
// ContentType is sent with io.Reader bodies, which are passed through
// unencoded.
type RequestOptions struct {
	Query       url.Values
	Header      http.Header
	ContentType string
}

// Transport performs the requests behind every client operation. Paths are
// relative to the versioned API root unless they are absolute URLs.
// A response with a status of 400 or higher must be returned as *APIError.
type Transport interface {
	Get(ctx context.Context, path string, opts *RequestOptions, out any) error
	GetBinary(ctx context.Context, path string, opts *RequestOptions) ([]byte, error)
	Post(ctx context.Context, path string, body any, opts *RequestOptions, out any) error
	Patch(ctx context.Context, path string, body any, opts *RequestOptions, out any) error
	Delete(ctx context.Context, path string, opts *RequestOptions, out any) error
}

// UnimplementedTransport can be embedded by custom transports that only
// support some of the verbs.
type UnimplementedTransport struct{}

func (UnimplementedTransport) Get(context.Context, string, *RequestOptions, any) error {
	return fmt.Errorf("GET: %w", ErrNotImplemented)
}

func (UnimplementedTransport) GetBinary(context.Context, string, *RequestOptions) ([]byte, error) {
	return nil, fmt.Errorf("GET binary: %w", ErrNotImplemented)
}

func (UnimplementedTransport) Post(context.Context, string, any, *RequestOptions, any) error {
	return fmt.Errorf("POST: %w", ErrNotImplemented)
}

func (UnimplementedTransport) Patch(context.Context, string, any, *RequestOptions, any) error {
	return fmt.Errorf("PATCH: %w", ErrNotImplemented)
}

func (UnimplementedTransport) Delete(context.Context, string, *RequestOptions, any) error {
	return fmt.Errorf("DELETE: %w", ErrNotImplemented)
}

// HTTPTransport is the default Transport, talking JSON over HTTP.
type HTTPTransport struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	logger     *slog.Logger
	limiter    *rate.Limiter
	metrics    *Metrics
	tracer     trace.Tracer
}

// NewHTTPTransport creates the default HTTP transport.
func NewHTTPTransport(apiKey string, cfg Config, logger *slog.Logger) *HTTPTransport {
	t := &HTTPTransport{
		httpClient: cfg.HTTPClient,
		baseURL:    joinBaseURL(cfg.BaseURL, cfg.Version),
		apiKey:     apiKey,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}

	if t.httpClient == nil {
		t.httpClient = defaultHTTPClient(defaultTimeout)
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}
	if cfg.Registerer != nil {
		t.metrics = NewMetrics(cfg.Registerer)
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	t.tracer = tp.Tracer(tracerName)

	return t
}

// BaseURL returns the versioned API root, always ending in a slash.
func (t *HTTPTransport) BaseURL() string {
	return t.baseURL
}

func joinBaseURL(root, version string) string {
	root = strings.TrimRight(root, "/")
	version = strings.Trim(version, "/")
	if version == "" {
		return root + "/"
	}
	return root + "/" + version + "/"
}

func (t *HTTPTransport) Get(ctx context.Context, path string, opts *RequestOptions, out any) error {
	return t.doJSON(ctx, http.MethodGet, path, nil, opts, out)
}

func (t *HTTPTransport) GetBinary(ctx context.Context, path string, opts *RequestOptions) ([]byte, error) {
	resp, err := t.do(ctx, http.MethodGet, path, nil, opts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return data, nil
}

func (t *HTTPTransport) Post(ctx context.Context, path string, body any, opts *RequestOptions, out any) error {
	return t.doJSON(ctx, http.MethodPost, path, body, opts, out)
}

func (t *HTTPTransport) Patch(ctx context.Context, path string, body any, opts *RequestOptions, out any) error {
	return t.doJSON(ctx, http.MethodPatch, path, body, opts, out)
}

func (t *HTTPTransport) Delete(ctx context.Context, path string, opts *RequestOptions, out any) error {
	return t.doJSON(ctx, http.MethodDelete, path, nil, opts, out)
}

func (t *HTTPTransport) doJSON(ctx context.Context, method, path string, body any, opts *RequestOptions, out any) error {
	resp, err := t.do(ctx, method, path, body, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// resolve turns a relative path into a full URL below the API root.
// Absolute URLs, such as pagination cursors, are used as they are.
func (t *HTTPTransport) resolve(path string, query url.Values) (string, error) {
	fullURL := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		fullURL = t.baseURL + strings.TrimLeft(path, "/")
	}

	if len(query) == 0 {
		return fullURL, nil
	}

	u, err := url.Parse(fullURL)
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", fullURL, err)
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// resource returns the first path segment below the API root, used as a
// low-cardinality metric label.
func (t *HTTPTransport) resource(fullURL string) string {
	rel := strings.TrimPrefix(fullURL, t.baseURL)
	if rel == fullURL {
		if u, err := url.Parse(fullURL); err == nil {
			rel = strings.TrimLeft(u.Path, "/")
		}
	}
	rel = strings.SplitN(rel, "?", 2)[0]
	return strings.SplitN(rel, "/", 2)[0]
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body any, opts *RequestOptions) (resp *http.Response, err error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	fullURL, err := t.resolve(path, opts.Query)
	if err != nil {
		return nil, err
	}
	resource := t.resource(fullURL)

	ctx, span := t.tracer.Start(ctx, "printone "+method+" "+resource,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", fullURL),
			attribute.String("printone.resource", resource),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	var reqBody io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reqBody = b
		contentType = opts.ContentType
	default:
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set(apiKeyHeader, t.apiKey)
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	t.logger.DebugContext(ctx, method+" "+req.URL.RequestURI(), "request_id", requestID)

	done := t.metrics.start()
	resp, err = t.httpClient.Do(req)
	if err != nil {
		done(method, resource, 0)
		return nil, fmt.Errorf("executing request: %w", err)
	}
	done(method, resource, resp.StatusCode)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		apiErr := parseAPIError(resp)
		apiErr.Method = method
		apiErr.Path = req.URL.Path
		t.logger.WarnContext(ctx, "request failed",
			"method", method,
			"path", req.URL.Path,
			"status", apiErr.StatusCode,
			"request_id", requestID,
		)
		return nil, apiErr
	}

	return resp, nil
}

// errorBody is the error envelope of the API. message is either a string or
// a list of strings.
type errorBody struct {
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
}

func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Messages = []string{strings.TrimSpace(string(data))}
		return apiErr
	}

	if body.StatusCode != 0 {
		apiErr.StatusCode = body.StatusCode
	}
	apiErr.Messages = decodeMessages(body.Message)
	return apiErr
}

func decodeMessages(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

func getJSON[T any](ctx context.Context, s *shared, path string, opts *RequestOptions) (T, error) {
	var out T
	err := s.transport.Get(ctx, path, opts, &out)
	return out, err
}

func postJSON[T any](ctx context.Context, s *shared, path string, body any, opts *RequestOptions) (T, error) {
	var out T
	err := s.transport.Post(ctx, path, body, opts, &out)
	return out, err
}

func patchJSON[T any](ctx context.Context, s *shared, path string, body any) (T, error) {
	var out T
	err := s.transport.Patch(ctx, path, body, nil, &out)
	return out, err
}
