package httpx

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{statusErr(429), true},
		{statusErr(503), true},
		{statusErr(400), false},
		{fmt.Errorf("wrapped: %w", statusErr(500)), true},
		{context.DeadlineExceeded, true},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("IsRetryableError(%v)=%v want %v", tc.err, got, tc.want)
		}
	}
}

func TestRetryAfterDurationCapsAtMax(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "30")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("got %s", got)
	}
	if got := RetryAfterDuration(nil, 2*time.Second, 10*time.Second); got != 2*time.Second {
		t.Fatalf("got %s", got)
	}
}

func TestJitterSleepStaysInBand(t *testing.T) {
	base := 10 * time.Second
	for i := 0; i < 50; i++ {
		got := JitterSleep(base)
		if got < 8*time.Second || got > 12*time.Second {
			t.Fatalf("jitter out of band: %s", got)
		}
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func(ctx context.Context) (*http.Response, error) {
		calls++
		return nil, &StatusError{Service: "openai", StatusCode: 400, Body: "bad"}
	}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestRetryHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Retry(ctx, 3, func(ctx context.Context) (*http.Response, error) {
		calls++
		return nil, nil
	}, nil)
	if err == nil || calls != 0 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestStatusErrorTruncatesBody(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	e := &StatusError{Service: "openai", StatusCode: 500, Body: string(long)}
	if got := len(e.Error()); got > 600 {
		t.Fatalf("message too long: %d", got)
	}
}
