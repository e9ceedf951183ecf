package submitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"hoursync/aggregate"
	"hoursync/everhour"
)

var ErrRetryBudgetExhausted = errors.New("rate limit retry budget exhausted")

// RetryPolicy bounds how long one day summary may be retried while the sink
// answers 429. Zero limits mean unbounded.
type RetryPolicy struct {
	MaxAttempts  int
	MaxTotalWait time.Duration
	// DefaultWait is used when the sink sends no usable Retry-After header.
	DefaultWait time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  10,
		MaxTotalWait: 10 * time.Minute,
		DefaultWait:  time.Second,
	}
}

// Observer receives delivery events, typically for metrics.
type Observer interface {
	EntriesFetched(count int)
	DayDelivered(seconds int64)
	DayFailed()
	RateLimited()
	RetryWaited(waitSeconds float64)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) EntriesFetched(int) {}
func (NoopObserver) DayDelivered(int64) {}
func (NoopObserver) DayFailed() {}
func (NoopObserver) RateLimited() {}
func (NoopObserver) RetryWaited(float64) {}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// DayError reports the day whose delivery aborted the run.
type DayError struct {
	Date      string
	Delivered int
	Err       error
}

func (e *DayError) Error() string {
	return fmt.Sprintf("deliver day %s (after %d delivered day(s)): %v", e.Date, e.Delivered, e.Err)
}

func (e *DayError) Unwrap() error {
	return e.Err
}

type Result struct {
	Delivered    int
	RateLimited  int
	TotalSeconds int64
}

type DelivererConfig struct {
	Client   everhour.Client
	Policy   RetryPolicy
	Logger   *slog.Logger
	Observer Observer
	Sleep    SleepFunc
}

type Deliverer struct {
	client   everhour.Client
	policy   RetryPolicy
	logger   *slog.Logger
	observer Observer
	sleep    SleepFunc
}

func NewDeliverer(cfg DelivererConfig) (*Deliverer, error) {
	if cfg.Client == nil {
		return nil, errors.New("everhour client is required")
	}
	if cfg.Policy.MaxAttempts < 0 || cfg.Policy.MaxTotalWait < 0 || cfg.Policy.DefaultWait < 0 {
		return nil, fmt.Errorf("retry policy values must be >= 0: %+v", cfg.Policy)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	observer := cfg.Observer
	if observer == nil {
		observer = NoopObserver{}
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	return &Deliverer{
		client:   cfg.Client,
		policy:   cfg.Policy,
		logger:   logger.With(slog.String("component", "deliverer")),
		observer: observer,
		sleep:    sleep,
	}, nil
}

// Deliver submits summaries one after another in the given order. The first
// failure that is not a rate limit stops the run; days before it stay
// delivered.
func (d *Deliverer) Deliver(ctx context.Context, summaries []aggregate.DaySummary, taskID string) (Result, error) {
	var result Result
	for _, summary := range summaries {
		date := summary.Date.String()
		rateLimited, err := d.deliverDay(ctx, summary, taskID)
		result.RateLimited += rateLimited
		if err != nil {
			d.observer.DayFailed()
			d.logger.Error("day delivery failed", slog.String("date", date), slog.Any("err", err))
			return result, &DayError{Date: date, Delivered: result.Delivered, Err: err}
		}

		result.Delivered++
		result.TotalSeconds += summary.TotalSeconds
		d.observer.DayDelivered(summary.TotalSeconds)
		d.logger.Info("day delivered",
			slog.String("date", date),
			slog.Int64("seconds", summary.TotalSeconds),
			slog.Int("entries", summary.EntryCount),
		)
	}
	return result, nil
}

func (d *Deliverer) deliverDay(ctx context.Context, summary aggregate.DaySummary, taskID string) (int, error) {
	record := everhour.TimeRecord{
		Time:    summary.TotalSeconds,
		Date:    summary.Date.String(),
		Comment: summary.Comment,
	}

	rateLimited := 0
	var waited time.Duration
	for attempt := 1; ; attempt++ {
		err := d.client.AddTime(ctx, taskID, record)
		if err == nil {
			return rateLimited, nil
		}

		var rateErr *everhour.RateLimitedError
		if !errors.As(err, &rateErr) {
			return rateLimited, err
		}
		rateLimited++
		d.observer.RateLimited()

		wait := d.policy.DefaultWait
		if rateErr.HasRetryAfter {
			wait = rateErr.RetryAfter
		}
		if d.policy.MaxAttempts > 0 && attempt >= d.policy.MaxAttempts {
			return rateLimited, fmt.Errorf("%w: %d attempt(s): %w", ErrRetryBudgetExhausted, attempt, err)
		}
		if d.policy.MaxTotalWait > 0 && waited+wait > d.policy.MaxTotalWait {
			return rateLimited, fmt.Errorf("%w: waiting %s more would exceed %s: %w", ErrRetryBudgetExhausted, wait, d.policy.MaxTotalWait, err)
		}

		d.observer.RetryWaited(wait.Seconds())
		d.logger.Warn("rate limited, waiting before retry",
			slog.String("date", record.Date),
			slog.Duration("wait", wait),
			slog.Int("attempt", attempt),
		)
		if err := d.sleep(ctx, wait); err != nil {
			return rateLimited, fmt.Errorf("wait for retry: %w", err)
		}
		waited += wait
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
