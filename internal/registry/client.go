package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/config"
	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/pkg/metrics"
)

const (
	maxBodySize   = 10 << 20
	maxLoggedBody = 512
)

// Fetcher retrieves raw registry JSON for a search expression.
type Fetcher interface {
	Fetch(ctx context.Context, query string, page, size int) (string, error)
}

// Client issues single GET requests against the registry. It keeps no state
// between calls beyond the underlying http.Client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

type Option func(*Client)

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(cfg config.RegistryConfig, opts ...Option) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultRegistryURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRegistryData searches field for value, e.g.
// FetchRegistryData(ctx, ApplicationNumberField, "NDA012345", 1, 1).
func (c *Client) FetchRegistryData(ctx context.Context, field, value string, page, size int) (string, error) {
	return c.Fetch(ctx, field+value, page, size)
}

// Fetch runs a search expression and returns the response body verbatim.
// Any non-2xx status or transport failure is reported as
// apperror.ErrRegistryLookupFailed; timeouts as apperror.ErrRegistryTimeout.
func (c *Client) Fetch(ctx context.Context, query string, page, size int) (string, error) {
	reqURL := c.buildURL(query, page, size)
	log := c.logger.With(
		zap.String("search", query),
		zap.Int("page", page),
		zap.Int("size", size),
	)
	log.Info("Fetching drug data from registry")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		metrics.ObserveRegistryCall("error")
		return "", fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Warn("Registry request timed out")
			metrics.ObserveRegistryCall("timeout")
			return "", apperror.ErrRegistryTimeout
		}
		// url.Error embeds the request URL, which carries the api key
		log.Error("Registry request failed", zap.String("error", redact(err.Error(), c.apiKey)))
		metrics.ObserveRegistryCall("error")
		return "", apperror.ErrRegistryLookupFailed
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if isTimeout(err) {
			metrics.ObserveRegistryCall("timeout")
			return "", apperror.ErrRegistryTimeout
		}
		log.Error("Failed to read registry response", zap.Error(err))
		metrics.ObserveRegistryCall("error")
		return "", apperror.ErrRegistryLookupFailed
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Registry returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), maxLoggedBody)))
		metrics.ObserveRegistryCall("not_found")
		return "", apperror.ErrRegistryLookupFailed
	}

	log.Info("Received response from registry", zap.Int("bytes", len(body)))
	metrics.ObserveRegistryCall("success")
	return string(body), nil
}

// buildURL lays out the query as api_key (when set), search, limit, skip.
func (c *Client) buildURL(query string, page, size int) string {
	skip, limit := Pagination(page, size)

	params := make([]string, 0, 4)
	if c.apiKey != "" {
		params = append(params, "api_key="+encodeSearch(c.apiKey))
	}
	params = append(params,
		"search="+encodeSearch(query),
		"limit="+strconv.Itoa(limit),
		"skip="+strconv.Itoa(skip),
	)

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + strings.Join(params, "&")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, encodeSearch(secret), "REDACTED")
}
