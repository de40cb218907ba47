package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's
// Requests Per Second and Burst Rate
type Config struct {
	RPS   int
	Burst int
}

// Validate reports whether both limits are positive.
func (c Config) Validate() error {
	if c.RPS <= 0 || c.Burst <= 0 {
		return fmt.Errorf("rps[%d] and burst[%d] %w", c.RPS, c.Burst, ErrMustNotBeZero)
	}

	return nil
}

// throttle is an http.RoundTripper, using the time/rate token
// bucket limiter to restrict outbound calls.
type throttle struct {
	limiter *rate.Limiter
	cfg     Config
	next    http.RoundTripper
	logFn   func() *slog.Logger
}

// NewRoundTripper returns an http.RoundTripper that throttles outbound requests
// using a token bucket rate limiter. logFn lazily resolves the logger at request
// time, making option ordering irrelevant. A nil-returning logFn disables the
// exhaustion logs.
func NewRoundTripper(cfg Config, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if next == nil {
		next = http.DefaultTransport
	}

	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		cfg:     cfg,
		next:    next,
		logFn:   logFn,
	}

	return t, nil
}

// requestIDHeader is set by the fetch client on every outbound request.
const requestIDHeader = "X-Request-ID"

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	waited, err := t.wait(r)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w post-wait after %s: %w", ErrContextEnded, waited, err)
	}

	return t.next.RoundTrip(r)
}

// wait blocks until the limiter grants a token for r. Exhaustion is only
// logged when the bucket is empty on arrival, so requests within the
// burst stay quiet.
func (t *throttle) wait(r *http.Request) (time.Duration, error) {
	logger := t.logFn()
	if logger == nil || t.limiter.Tokens() >= 1 {
		if err := t.limiter.Wait(r.Context()); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
		}
		return 0, nil
	}

	logger = logger.With("host", r.URL.Host)
	if reqID := r.Header.Get(requestIDHeader); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	logger.Info("throttle tokens exhausted", "rate", t.cfg.RPS, "burst", t.cfg.Burst)

	start := time.Now()
	err := t.limiter.Wait(r.Context())
	waited := time.Since(start)
	if err != nil {
		logger.Warn("throttle wait abandoned", "waited", waited.String(), "error", err)
		return waited, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	logger.Info("throttle wait complete", "waited", waited.String())

	return waited, nil
}
