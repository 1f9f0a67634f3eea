package services

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

	"github.com/amaumene/streambox/internal/constants"
	apperrors "github.com/amaumene/streambox/internal/errors"
	"github.com/amaumene/streambox/internal/metrics"
	"github.com/amaumene/streambox/pkg/httputil"
	"github.com/amaumene/streambox/pkg/logger"
	"github.com/amaumene/streambox/pkg/security"
)

// maxPayloadBytes bounds how much of an upstream response is read.
const maxPayloadBytes = 8 << 20

// Outcome classifies an upstream call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unavailable"
	}
}

// Payload is the result of one logical upstream request. Body is only set
// when Outcome is OutcomeOK and always holds a JSON object.
type Payload struct {
	Outcome Outcome
	Status  int
	Body    json.RawMessage
	Cause   error
}

// OK reports whether the payload carries data.
func (p Payload) OK() bool {
	return p.Outcome == OutcomeOK
}

// Err maps the outcome onto the catalog error kinds; nil when OK.
func (p Payload) Err(endpoint string) error {
	switch p.Outcome {
	case OutcomeOK:
		return nil
	case OutcomeNotFound:
		return apperrors.NewNotFoundError(endpoint)
	default:
		return apperrors.NewUpstreamError(endpoint, p.Cause)
	}
}

// Upstream is what the catalog needs from the metadata provider.
type Upstream interface {
	Request(ctx context.Context, endpoint string, params url.Values) Payload
}

// TMDB is the client for the metadata provider. It never returns an error:
// every failure is folded into the Payload outcome.
type TMDB struct {
	baseURL    string
	pool       *CredentialPool
	httpClient *http.Client
	timeout    time.Duration
	logger     logger.Logger
	metrics    *metrics.Metrics
	validator  *security.APIKeyValidator
}

// TMDBOption customises a TMDB client.
type TMDBOption func(*TMDB)

// WithHTTPClient replaces the default pooled client.
func WithHTTPClient(c *http.Client) TMDBOption {
	return func(t *TMDB) { t.httpClient = c }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) TMDBOption {
	return func(t *TMDB) { t.timeout = d }
}

func WithLogger(l logger.Logger) TMDBOption {
	return func(t *TMDB) { t.logger = l }
}

func WithMetrics(m *metrics.Metrics) TMDBOption {
	return func(t *TMDB) { t.metrics = m }
}

func NewTMDB(baseURL string, pool *CredentialPool, opts ...TMDBOption) *TMDB {
	t := &TMDB{
		baseURL:   strings.TrimRight(baseURL, "/"),
		pool:      pool,
		timeout:   constants.UpstreamTimeout,
		validator: security.NewAPIKeyValidator(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.httpClient == nil {
		t.httpClient = httputil.NewHTTPClient(t.timeout)
	}
	if t.logger == nil {
		t.logger = logger.New()
	}
	return t
}

// Request performs one logical call against endpoint. A 429 rotates the
// credential pool and retries exactly once with the next key.
func (t *TMDB) Request(ctx context.Context, endpoint string, params url.Values) Payload {
	start := time.Now()

	payload := t.do(ctx, endpoint, params, t.pool.Current())
	if payload.Status == http.StatusTooManyRequests {
		index := t.pool.Rotate()
		t.metrics.IncKeyRotation()
		t.logger.Warnf("[TMDB] rate limited on %s, rotated to key index %d", endpoint, index)

		payload = t.do(ctx, endpoint, params, t.pool.Current())
	}

	if payload.Outcome == OutcomeUnavailable {
		t.logger.Errorf("[TMDB] request to %s failed: %v", endpoint, payload.Cause)
	}
	t.metrics.ObserveUpstream(endpoint, payload.Outcome.String(), time.Since(start))
	return payload
}

func (t *TMDB) do(ctx context.Context, endpoint string, params url.Values, apiKey string) Payload {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	apiURL, err := t.buildURL(endpoint, params, apiKey)
	if err != nil {
		return Payload{Outcome: OutcomeUnavailable, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return Payload{Outcome: OutcomeUnavailable, Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	t.logger.Debugf("[TMDB] GET %s (key: %s)", endpoint, t.validator.MaskAPIKey(apiKey))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Payload{Outcome: OutcomeUnavailable, Cause: fmt.Errorf("failed to fetch %s: %w", endpoint, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Payload{Outcome: OutcomeNotFound, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Payload{
			Outcome: OutcomeUnavailable,
			Status:  resp.StatusCode,
			Cause:   fmt.Errorf("TMDB API error: status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return Payload{Outcome: OutcomeUnavailable, Status: resp.StatusCode, Cause: fmt.Errorf("failed to read %s: %w", endpoint, err)}
	}
	if !isJSONObject(body) {
		return Payload{Outcome: OutcomeUnavailable, Status: resp.StatusCode, Cause: apperrors.ErrMalformedPayload}
	}

	return Payload{Outcome: OutcomeOK, Status: resp.StatusCode, Body: body}
}

// buildURL copies params so the caller's values never see the credential.
func (t *TMDB) buildURL(endpoint string, params url.Values, apiKey string) (string, error) {
	u, err := url.Parse(t.baseURL + "/" + strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("api_key", apiKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func isJSONObject(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
