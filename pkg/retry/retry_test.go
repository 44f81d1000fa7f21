package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialInterval != 200*time.Millisecond {
		t.Errorf("InitialInterval = %v, want 200ms", config.InitialInterval)
	}
}

func TestNew_WithZeroValues(t *testing.T) {
	retrier := New(&Config{JitterFactor: 3})

	if retrier.config.InitialInterval != 200*time.Millisecond {
		t.Errorf("InitialInterval = %v, want 200ms (default)", retrier.config.InitialInterval)
	}
	if retrier.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0 (default)", retrier.config.Multiplier)
	}
	if retrier.config.JitterFactor != 1 {
		t.Errorf("JitterFactor = %f, want clamped to 1", retrier.config.JitterFactor)
	}
}

func TestRetrier_Do_SuccessAfterRetries(t *testing.T) {
	attempts := 0
	result := New(fastConfig(5)).Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
}

func TestRetrier_Do_MaxRetriesExceededKeepsCause(t *testing.T) {
	cause := errors.New("503 from storage")

	result := New(fastConfig(2)).Do(context.Background(), func(ctx context.Context) error {
		return cause
	})

	if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
		t.Errorf("Err = %v, want ErrMaxRetriesExceeded", result.Err)
	}
	if !errors.Is(result.Err, cause) {
		t.Errorf("Err = %v, want cause to be wrapped", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
}

func TestRetrier_Do_PermanentError(t *testing.T) {
	cause := errors.New("bad request")
	attempts := 0

	result := New(fastConfig(5)).Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(cause)
	})

	if result.Err != cause {
		t.Errorf("Err = %v, want %v", result.Err, cause)
	}
	if attempts != 1 {
		t.Errorf("Operation called %d times, want 1", attempts)
	}
}

func TestRetrier_Do_ShouldRetry(t *testing.T) {
	transient := errors.New("timeout")
	fatal := errors.New("unauthorized")

	cfg := fastConfig(5)
	cfg.ShouldRetry = func(err error) bool { return errors.Is(err, transient) }

	attempts := 0
	result := New(cfg).Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return transient
		}
		return fatal
	})

	if result.Err != fatal {
		t.Errorf("Err = %v, want %v", result.Err, fatal)
	}
	if attempts != 2 {
		t.Errorf("Operation called %d times, want 2", attempts)
	}
}

func TestRetrier_Do_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.InitialInterval = time.Second

	attempts := 0
	result := New(cfg).Do(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return errors.New("temporary")
	})

	if !errors.Is(result.Err, ErrContextCanceled) {
		t.Errorf("Err = %v, want ErrContextCanceled", result.Err)
	}
	if attempts != 1 {
		t.Errorf("Operation called %d times, want 1", attempts)
	}
}

func TestRetrier_DoWithCallback(t *testing.T) {
	var seen []int
	New(fastConfig(2)).DoWithCallback(context.Background(), func(ctx context.Context) error {
		return errors.New("temporary")
	}, func(attempt int, err error, next time.Duration) {
		seen = append(seen, attempt)
	})

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("callback attempts = %v, want [1 2]", seen)
	}
}

func TestCalculateInterval_ExponentialBackoff(t *testing.T) {
	r := New(&Config{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
	})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
	}

	for _, tt := range tests {
		if got := r.calculateInterval(tt.attempt); got != tt.want {
			t.Errorf("calculateInterval(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDo_ConvenienceFunction(t *testing.T) {
	if err := Do(context.Background(), fastConfig(1), func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("Do() = %v, want nil", err)
	}
}
