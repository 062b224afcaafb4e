package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/duccv/medrecords-api/config"
	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/pkg/cache"
)

const sampleBody = `{"results":[{"application_number":"12345","openfda":{"manufacturer_name":["Pfizer"]}}]}`

// newTestServer replies with status and body and reports each raw query on
// the returned channel.
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, <-chan string) {
	t.Helper()
	seen := make(chan string, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case seen <- r.URL.RawQuery:
		default:
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestFetchReturnsBodyVerbatim(t *testing.T) {
	srv, seen := newTestServer(t, http.StatusOK, sampleBody)
	c := NewClient(config.RegistryConfig{BaseURL: srv.URL, Timeout: time.Second})

	got, err := c.Fetch(context.Background(), BuildSearchQuery("Pfizer", "Aspirin"), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, sampleBody, got)
	assert.Equal(t,
		"search=openfda.manufacturer_name:Pfizer+AND+openfda.brand_name:Aspirin&limit=10&skip=10",
		<-seen)
}

func TestFetchPutsAPIKeyFirst(t *testing.T) {
	srv, seen := newTestServer(t, http.StatusOK, sampleBody)
	c := NewClient(config.RegistryConfig{BaseURL: srv.URL, APIKey: "k3y", Timeout: time.Second})

	_, err := c.FetchRegistryData(context.Background(), ApplicationNumberField, "12345", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "api_key=k3y&search=openfda.application_number:12345&limit=1&skip=0", <-seen)
}

func TestFetchNonSuccessIsLookupFailure(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusBadRequest, http.StatusInternalServerError} {
		srv, _ := newTestServer(t, status, `{"error":{"code":"NOT_FOUND","message":"No matches found!"}}`)
		c := NewClient(config.RegistryConfig{BaseURL: srv.URL, Timeout: time.Second})

		got, err := c.Fetch(context.Background(), "openfda.manufacturer_name:Nobody", 1, 10)
		assert.ErrorIs(t, err, apperror.ErrRegistryLookupFailed, status)
		assert.Empty(t, got)
		assert.NotContains(t, err.Error(), "No matches found")
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.RegistryConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Fetch(context.Background(), "q", 1, 1)
	assert.ErrorIs(t, err, apperror.ErrRegistryTimeout)
	assert.ErrorIs(t, err, apperror.ErrRegistryLookupFailed)
}

func TestFetchTransportErrorHidesAPIKey(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := NewClient(
		config.RegistryConfig{BaseURL: "http://127.0.0.1:1/drugsfda.json", APIKey: "s3cret", Timeout: time.Second},
		WithLogger(zap.New(core)),
	)
	_, err := c.Fetch(context.Background(), "q", 1, 1)
	require.ErrorIs(t, err, apperror.ErrRegistryLookupFailed)
	assert.NotContains(t, err.Error(), "s3cret")

	failed := logs.FilterMessage("Registry request failed").All()
	require.Len(t, failed, 1)
	assert.NotContains(t, failed[0].ContextMap()["error"], "s3cret")
	assert.Contains(t, failed[0].ContextMap()["error"], "REDACTED")
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(config.RegistryConfig{})
	assert.Equal(t, config.DefaultRegistryURL, c.baseURL)
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.True(t, strings.HasPrefix(c.buildURL("q", 1, 1), config.DefaultRegistryURL+"?search="))
}

func TestCachedClientReusesSuccessfulResponses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.Contains(r.URL.RawQuery, "Nobody") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(sampleBody))
	}))
	t.Cleanup(srv.Close)

	mem := cache.NewLRUCache(10, time.Minute)
	t.Cleanup(mem.Stop)
	cached := NewCachedClient(NewClient(config.RegistryConfig{BaseURL: srv.URL, Timeout: time.Second}), cache.NewMultiLevel(mem, nil))

	for i := 0; i < 3; i++ {
		got, err := cached.Fetch(context.Background(), BuildSearchQuery("Pfizer", ""), 1, 10)
		require.NoError(t, err)
		assert.Equal(t, sampleBody, got)
	}
	assert.Equal(t, int32(1), hits.Load())

	// a different page is a different key
	_, err := cached.Fetch(context.Background(), BuildSearchQuery("Pfizer", ""), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	for i := 0; i < 2; i++ {
		_, err := cached.Fetch(context.Background(), BuildSearchQuery("Nobody", ""), 1, 10)
		assert.ErrorIs(t, err, apperror.ErrRegistryLookupFailed)
	}
	assert.Equal(t, int32(4), hits.Load())
}

func TestCachedClientDoesNotStoreInvalidBodies(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			_, _ = w.Write([]byte("<html>maintenance</html>"))
			return
		}
		_, _ = w.Write([]byte(sampleBody))
	}))
	t.Cleanup(srv.Close)

	mem := cache.NewLRUCache(10, time.Minute)
	t.Cleanup(mem.Stop)
	cached := NewCachedClient(NewClient(config.RegistryConfig{BaseURL: srv.URL, Timeout: time.Second}), cache.NewMultiLevel(mem, nil))
	query := BuildSearchQuery("Pfizer", "")

	_, err := cached.Fetch(context.Background(), query, 1, 10)
	require.ErrorIs(t, err, apperror.ErrMalformedRegistryResponse)
	assert.Zero(t, mem.Size())

	for i := 0; i < 2; i++ {
		got, err := cached.Fetch(context.Background(), query, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, sampleBody, got)
	}
	assert.Equal(t, int32(2), hits.Load())
}
