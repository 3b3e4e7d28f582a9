package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
)

type HTTPSource struct {
	name      string
	url       string
	client    *http.Client
	attempts  int
	baseDelay time.Duration
	breaker   *gobreaker.CircuitBreaker
}

// breakerFailures consecutive failed retrievals open the breaker; it stays open
// for breakerCooldown before letting one probe through.
const (
	breakerFailures = 3
	breakerCooldown = 30 * time.Second
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Log.WithFields(logrus.Fields{
				"source":     name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("Dataset circuit breaker state changed")
		},
	})
}

func NewHTTPSource(name, url string, opts FetchOptions) *HTTPSource {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 200 * time.Millisecond
	}
	return &HTTPSource{
		name:      name,
		url:       url,
		client:    newClient(opts.Timeout),
		attempts:  opts.Attempts,
		baseDelay: opts.BaseDelay,
		breaker:   newBreaker(name),
	}
}

func (h *HTTPSource) Name() string { return h.name }

// Open downloads the full body before returning so a dropped connection surfaces
// as a retrieval failure rather than a truncated dataset. While the breaker is
// open no request is made.
func (h *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	var body []byte
	_, err := h.breaker.Execute(func() (interface{}, error) {
		return nil, retry(ctx, h.attempts, h.baseDelay, func() error {
			var fetchErr error
			body, fetchErr = h.fetch(ctx)
			if fetchErr != nil && !isRetriable(fetchErr) {
				return permanent{fetchErr}
			}
			return fetchErr
		})
	})
	if err != nil {
		var p permanent
		if errors.As(err, &p) {
			err = p.err
		}
		logger.Log.WithError(err).WithField("source", h.name).Error("dataset retrieval failed")
		return nil, &RetrievalError{Source: h.name, Err: err}
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (h *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError{code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

type permanent struct {
	err error
}

func (p permanent) Error() string { return p.err.Error() }

func newClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// retry runs fn up to attempts times with capped exponential backoff.
// A permanent error stops the loop immediately.
func retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}
		var p permanent
		if errors.As(err, &p) || i == attempts-1 {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay *= 2
		if delay > 2*time.Second {
			delay = 2 * time.Second
		}
	}
	return err
}

func isRetriable(err error) bool {
	var se statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
