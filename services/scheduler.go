package services

import (
	"context"
	"time"

	"rate-shopper/models"
	"rate-shopper/providers"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize       = 5
	DefaultInterBatchDelay = 100 * time.Millisecond
)

// SchedulerOption configures a BatchScheduler.
type SchedulerOption func(*BatchScheduler)

// WithBatchSize sets how many price fetches run at once. Values < 1 are ignored.
func WithBatchSize(n int) SchedulerOption {
	return func(s *BatchScheduler) {
		if n >= 1 {
			s.batchSize = n
		}
	}
}

// WithInterBatchDelay sets the pause between consecutive batches.
func WithInterBatchDelay(d time.Duration) SchedulerOption {
	return func(s *BatchScheduler) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithPause replaces the function used to wait between batches.
func WithPause(pause func(ctx context.Context, d time.Duration) error) SchedulerOption {
	return func(s *BatchScheduler) {
		if pause != nil {
			s.pause = pause
		}
	}
}

// BatchScheduler prices methods in fixed-size concurrent batches with a
// pacing delay between batches, to stay under the provider's rate limits.
type BatchScheduler struct {
	provider  providers.RateProvider
	batchSize int
	delay     time.Duration
	pause     func(ctx context.Context, d time.Duration) error
	logger    *zap.Logger
}

// NewBatchScheduler creates a BatchScheduler with the default batch size and delay.
func NewBatchScheduler(provider providers.RateProvider, logger *zap.Logger, opts ...SchedulerOption) *BatchScheduler {
	s := &BatchScheduler{
		provider:  provider,
		batchSize: DefaultBatchSize,
		delay:     DefaultInterBatchDelay,
		pause:     sleepContext,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BatchSize returns the configured batch size.
func (s *BatchScheduler) BatchSize() int { return s.batchSize }

// PriceAll returns one PricedMethod per input method, in input order. A
// method whose fetch fails keeps models.NoPrice; failures never stop the
// remaining fetches.
func (s *BatchScheduler) PriceAll(ctx context.Context, methods []models.ShippingMethod, req models.QuoteRequest) []models.PricedMethod {
	out := make([]models.PricedMethod, len(methods))
	for i, m := range methods {
		out[i] = models.PricedMethod{ShippingMethod: m, Price: models.NoPrice}
	}

	for start := 0; start < len(methods); start += s.batchSize {
		if start > 0 {
			if err := s.pause(ctx, s.delay); err != nil {
				s.logger.Warn("Pricing stopped before all batches ran",
					zap.Int("priced_up_to", start),
					zap.Int("methods", len(methods)),
					zap.Error(err),
				)
				break
			}
		}
		end := min(start+s.batchSize, len(methods))
		s.priceBatch(ctx, out[start:end], req)
	}
	return out
}

// priceBatch fetches every slot of batch concurrently; each goroutine writes
// only its own slot.
func (s *BatchScheduler) priceBatch(ctx context.Context, batch []models.PricedMethod, req models.QuoteRequest) {
	var g errgroup.Group
	for i := range batch {
		slot := &batch[i]
		g.Go(func() error {
			price, err := s.provider.FetchPrice(ctx, slot.ID, req.Origin, req.Destination, req.TotalWeightKg, req.Dimensions)
			if err != nil {
				s.logger.Warn("Price fetch failed",
					zap.String("method_id", slot.ID),
					zap.String("method", slot.Name),
					zap.Error(err),
				)
				return nil
			}
			slot.Price = price.Amount
			if price.Currency != "" {
				slot.Currency = price.Currency
			}
			return nil
		})
	}
	_ = g.Wait()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
