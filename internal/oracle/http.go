package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mvp-joe/classmap/internal/signature"
)

const (
	// DefaultTimeout bounds a single cross-reference request.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond throttles requests to the code search service.
	DefaultRequestsPerSecond = 10

	// RequestIDHeader carries a per-request identifier for server-side tracing.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 512
)

// HTTPClient queries a code search service over JSON/HTTP.
//
// Endpoints, relative to the configured base:
//
//	GET /signature?path=<file>&word=<word>  -> {"signature": "..."}
//	GET /xrefs?signature=<signature>        -> XrefRecord
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	verbose    bool
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables throttling.
func WithRateLimit(perSecond float64) HTTPOption {
	return func(c *HTTPClient) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithHTTPClient replaces the underlying http.Client (tests).
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithVerbose logs every request.
func WithVerbose(verbose bool) HTTPOption {
	return func(c *HTTPClient) {
		c.verbose = verbose
	}
}

// NewHTTPClient creates a client for the service at endpoint.
func NewHTTPClient(endpoint string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type resolveResponse struct {
	Signature signature.Signature `json:"signature"`
}

// ResolveSignature implements Oracle.
func (c *HTTPClient) ResolveSignature(ctx context.Context, filePath, word string) (signature.Signature, error) {
	q := url.Values{}
	q.Set("path", filePath)
	q.Set("word", word)

	var resp resolveResponse
	found, err := c.get(ctx, "/signature", q, &resp)
	if err != nil {
		return "", err
	}
	if !found || resp.Signature == "" {
		return "", fmt.Errorf("%w: %s in %s", ErrSignatureNotFound, word, filePath)
	}
	return resp.Signature, nil
}

// CrossReferences implements Oracle. A 404 answers with an empty record.
func (c *HTTPClient) CrossReferences(ctx context.Context, sig signature.Signature) (*XrefRecord, error) {
	q := url.Values{}
	q.Set("signature", string(sig))

	rec := &XrefRecord{}
	if _, err := c.get(ctx, "/xrefs", q, rec); err != nil {
		return nil, fmt.Errorf("xrefs for %s: %w", sig, err)
	}
	return rec, nil
}

// get issues a throttled GET and decodes a 200 body into out.
// It reports found=false for 404.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	target := c.endpoint + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	if c.verbose {
		log.Printf("GET %s (%s)", target, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return false, fmt.Errorf("%w: status %d (request %s): %s",
			ErrUnavailable, resp.StatusCode, requestID, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return true, nil
}
