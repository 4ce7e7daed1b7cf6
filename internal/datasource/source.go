// Package datasource provides the transports behind the API client: live HTTP,
// a fixture directory for offline demos and tests, and a SQLite page cache
// that can sit in front of either.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vanderheijden86/aidscope/pkg/api"
	"github.com/vanderheijden86/aidscope/pkg/debug"
)

// SourceType identifies a transport.
type SourceType string

const (
	SourceTypeHTTP  SourceType = "http"
	SourceTypeDir   SourceType = "dir"
	SourceTypeCache SourceType = "cache"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// HTTPSource fetches pages over HTTP.
type HTTPSource struct {
	Client    *http.Client
	UserAgent string
	log       *zap.Logger
}

// NewHTTPSource returns an HTTP transport with the given timeout.
func NewHTTPSource(timeout time.Duration, userAgent string) *HTTPSource {
	return &HTTPSource{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
		log:       debug.Named("http"),
	}
}

// Type returns SourceTypeHTTP.
func (s *HTTPSource) Type() SourceType { return SourceTypeHTTP }

// Get implements api.Getter.
func (s *HTTPSource) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &api.HTTPError{URL: rawURL, Status: resp.StatusCode, Body: string(body)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", api.ErrNetwork, err)
	}
	if s.log != nil {
		s.log.Debug("GET", zap.String("url", rawURL), zap.String("request_id", reqID),
			zap.Int("bytes", len(body)), zap.Duration("took", time.Since(start)))
	}
	return body, nil
}

// Options selects and configures the transport chain.
type Options struct {
	// FixturesDir serves pages from a directory instead of the network.
	FixturesDir string
	Timeout     time.Duration
	UserAgent   string
	// CachePath enables the SQLite page cache when set.
	CachePath string
	// Offline serves only from the cache.
	Offline bool
	// MaxAge serves cached pages younger than this without a request.
	MaxAge time.Duration
}

// Open builds the transport chain for opts. The returned closer releases the
// cache, if any.
func Open(opts Options) (api.Getter, io.Closer, error) {
	var origin api.Getter
	if opts.FixturesDir != "" {
		origin = NewDirSource(opts.FixturesDir)
	} else {
		origin = NewHTTPSource(opts.Timeout, opts.UserAgent)
	}
	if opts.CachePath == "" {
		if opts.Offline {
			return nil, nil, fmt.Errorf("offline mode needs a cache path")
		}
		return origin, nopCloser{}, nil
	}
	cache, err := OpenSQLiteCache(opts.CachePath, origin)
	if err != nil {
		return nil, nil, err
	}
	cache.Offline = opts.Offline
	cache.MaxAge = opts.MaxAge
	return cache, cache, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
