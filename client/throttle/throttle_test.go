package throttle

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    Config
		expErr error
	}{
		{name: "zero rps", cfg: Config{RPS: 0, Burst: 10}, expErr: ErrMustNotBeZero},
		{name: "negative rps", cfg: Config{RPS: -5, Burst: 10}, expErr: ErrMustNotBeZero},
		{name: "zero burst", cfg: Config{RPS: 10, Burst: 0}, expErr: ErrMustNotBeZero},
		{name: "negative burst", cfg: Config{RPS: 10, Burst: -5}, expErr: ErrMustNotBeZero},
		{name: "valid", cfg: Config{RPS: 10, Burst: 20}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rt, err := NewRoundTripper(tc.cfg, nil, http.DefaultTransport)

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("exp nil err, got: %v", err)
			}
			if rt == nil {
				t.Error("exp non-nil RoundTripper")
			}
		})
	}
}

func countingServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	return ts, &calls
}

func TestRoundTrip_PreCancelledContext(t *testing.T) {
	ts, calls := countingServer(t)

	rt, err := NewRoundTripper(Config{RPS: 20, Burst: 10}, nil, http.DefaultTransport)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = rt.RoundTrip(req)
	if !errors.Is(err, ErrContextEnded) {
		t.Errorf("expected ErrContextEnded, got: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}

	if n := calls.Load(); n != 0 {
		t.Errorf("expected no server calls, got %d", n)
	}
}

func TestRoundTrip_WithinBurst(t *testing.T) {
	ts, calls := countingServer(t)

	rt, err := NewRoundTripper(Config{RPS: 5, Burst: 5}, nil, http.DefaultTransport)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: rt}

	start := time.Now()
	for range 5 {
		resp, err := client.Get(ts.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
	}

	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("requests within burst should be fast; took %v", elapsed)
	}
	if n := calls.Load(); n != 5 {
		t.Errorf("expected 5 server calls, got %d", n)
	}
}

func TestRoundTrip_SlowsDownPastBurst(t *testing.T) {
	ts, _ := countingServer(t)

	rt, err := NewRoundTripper(Config{RPS: 10, Burst: 2}, nil, http.DefaultTransport)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: rt}

	start := time.Now()
	for range 5 {
		resp, err := client.Get(ts.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
	}

	// 3 requests past the burst at 10 RPS need at least ~300ms.
	if elapsed := time.Since(start); elapsed < 250*time.Millisecond {
		t.Errorf("expected throttling to slow requests down; took %v", elapsed)
	}
}

func TestRoundTrip_WaitTimesOut(t *testing.T) {
	ts, _ := countingServer(t)

	rt, err := NewRoundTripper(Config{RPS: 1, Burst: 1}, nil, http.DefaultTransport)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: rt}

	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Do(req); !errors.Is(err, ErrWaitingFailed) {
		t.Errorf("expected ErrWaitingFailed, got: %v", err)
	}
}

func TestRoundTrip_LogsExhaustion(t *testing.T) {
	ts, _ := countingServer(t)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	rt, err := NewRoundTripper(Config{RPS: 50, Burst: 1}, func() *slog.Logger { return logger }, http.DefaultTransport)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: rt}

	for range 2 {
		resp, err := client.Get(ts.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
	}

	out := logs.String()
	for _, want := range []string{"throttle tokens exhausted", "throttle wait complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log %q, got: %s", want, out)
		}
	}
}

func TestRoundTrip_LogsRequestID(t *testing.T) {
	ts, _ := countingServer(t)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	rt, err := NewRoundTripper(Config{RPS: 1, Burst: 1}, func() *slog.Logger { return logger }, http.DefaultTransport)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: rt}

	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Request-ID", "req-42")

	if _, err := client.Do(req); !errors.Is(err, ErrWaitingFailed) {
		t.Fatalf("expected ErrWaitingFailed, got: %v", err)
	}

	out := logs.String()
	for _, want := range []string{"throttle tokens exhausted", "throttle wait abandoned", "request_id=req-42"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log %q, got: %s", want, out)
		}
	}
}
