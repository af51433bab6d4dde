package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/motifscope/pkg/cache"
	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/observability"
)

const (
	httpTimeout     = 10 * time.Second
	jsonAPIMimeType = "application/vnd.api+json"
)

// client handles caching, retries and status mapping for HTTPProvider.
type client struct {
	base    *url.URL
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	backoff cache.Backoff
}

// cached returns the body stored under key or runs fetch with retries and
// stores its result. refresh bypasses the read.
func (c *client) cached(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			return data, nil
		}
	}
	var body []byte
	err := c.backoff.Retry(ctx, func() error {
		var err error
		body, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, body, c.ttl)
	return body, nil
}

func (c *client) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", jsonAPIMimeType)

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, u.Host, u.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// checkStatus maps a response status onto the transport errors. 429 and
// 503 responses may carry a Retry-After delay in seconds.
func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable:
		err := fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
		return cache.RetryAfter(err, retryAfter(resp.Header.Get("Retry-After")))
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// coded maps transport failures onto error codes.
func coded(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, cache.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "%s", op)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s", op)
	case stderrors.Is(err, context.Canceled):
		return err
	case errors.GetCode(err) != "":
		return err
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "%s", op)
	}
}
