package registry

import (
	"context"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/pkg/cache"
)

// CachedClient answers repeated searches from the multi-level cache and
// falls through to the wrapped Fetcher on a miss. Only bodies that parse as
// JSON are stored; everything else is returned as an error and refetched
// next time.
type CachedClient struct {
	next  Fetcher
	cache *cache.MultiLevel
}

func NewCachedClient(next Fetcher, ml *cache.MultiLevel) *CachedClient {
	return &CachedClient{next: next, cache: ml}
}

func (c *CachedClient) Fetch(ctx context.Context, query string, page, size int) (string, error) {
	return c.cache.GetString(ctx, cacheKey(query, page, size), func(ctx context.Context) (string, error) {
		body, err := c.next.Fetch(ctx, query, page, size)
		if err != nil {
			return "", err
		}
		if !json.Valid([]byte(body)) {
			return "", apperror.ErrMalformedRegistryResponse
		}
		return body, nil
	})
}

func cacheKey(query string, page, size int) string {
	return strings.Join([]string{"registry", query, strconv.Itoa(page), strconv.Itoa(size)}, ":")
}
