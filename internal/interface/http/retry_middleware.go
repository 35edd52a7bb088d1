package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/carbonlens/internal/infra/config"
)

const retryBodyLimit = 1 << 20

var errBodyTooLarge = errors.New("request body exceeds retry limit")

// retryPolicy replays requests that failed with a 5xx. GET and HEAD are always
// eligible; a POST only when its path is listed, since compute and register
// write state and must run once.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
	posts    map[string]struct{}
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	p := retryPolicy{attempts: cfg.MaxAttempts, backoff: cfg.BaseBackoff, posts: make(map[string]struct{}, len(cfg.Routes))}
	for _, route := range cfg.Routes {
		p.posts[route] = struct{}{}
	}
	return p
}

func (p retryPolicy) eligible(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return true
	case http.MethodPost:
		_, ok := p.posts[r.URL.Path]
		return ok
	default:
		return false
	}
}

// delay doubles the base backoff after each failed attempt.
func (p retryPolicy) delay(failed int) time.Duration {
	return p.backoff << (failed - 1)
}

func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	policy := newRetryPolicy(cfg)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !policy.eligible(r) {
			handler.ServeHTTP(w, r)
			return
		}
		body, err := bufferBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		var last *bufferedResponse
		for attempt := 1; attempt <= policy.attempts; attempt++ {
			if attempt > 1 && !sleepCtx(r, policy.delay(attempt-1)) {
				break
			}
			last = newBufferedResponse()
			replay := r.Clone(r.Context())
			replay.Body = io.NopCloser(bytes.NewReader(body))
			replay.ContentLength = int64(len(body))
			handler.ServeHTTP(last, replay)
			if last.status < http.StatusInternalServerError {
				break
			}
			if attempt < policy.attempts {
				logger.Warn("transient failure, retrying request", "path", r.URL.Path, "status", last.status, "attempt", attempt)
			}
		}
		last.writeTo(w)
	})
}

// sleepCtx waits d unless the client goes away first.
func sleepCtx(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return r.Context().Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > retryBodyLimit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// bufferedResponse holds one attempt's response until it is known to be final.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
	wrote  bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wrote {
		return
	}
	b.status, b.wrote = status, true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wrote = true
	return b.body.Write(p)
}

func (b *bufferedResponse) writeTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = append([]string(nil), v...)
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
