package services

import (
	"context"
	"errors"
	"fmt"

	"rate-shopper/models"
	"rate-shopper/providers"

	"go.uber.org/zap"
)

// ErrDiscoveryFailed wraps every error that aborts a quote. The underlying
// *providers.ProviderError stays reachable with errors.As.
var ErrDiscoveryFailed = errors.New("shipping method discovery failed")

// Stage is a step of the quote pipeline.
type Stage string

const (
	StageDiscovering   Stage = "discovering"
	StagePricing       Stage = "pricing"
	StageFiltering     Stage = "filtering"
	StageDeduplicating Stage = "deduplicating"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)

// Aggregator runs discovery, batched pricing, filtering and deduplication
// for a single quote. It keeps no state between quotes.
type Aggregator struct {
	provider  providers.RateProvider
	scheduler *BatchScheduler
	logger    *zap.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(provider providers.RateProvider, scheduler *BatchScheduler, logger *zap.Logger) *Aggregator {
	return &Aggregator{provider: provider, scheduler: scheduler, logger: logger}
}

// ProviderName returns the name of the underlying rate provider.
func (a *Aggregator) ProviderName() string { return a.provider.Name() }

// Quote returns the deduplicated priced methods for req. Only a discovery
// failure is returned as an error; an empty discovery yields an empty result.
func (a *Aggregator) Quote(ctx context.Context, req models.QuoteRequest) (models.QuoteResult, error) {
	a.enter(StageDiscovering)
	methods, err := a.provider.DiscoverMethods(ctx, req.Origin, req.Destination, req.MaxPackageWeightKg, req.Dimensions)
	if err != nil {
		a.enter(StageFailed)
		return models.QuoteResult{}, fmt.Errorf("%w: %w", ErrDiscoveryFailed, err)
	}
	if len(methods) == 0 {
		a.enter(StageDone)
		return models.QuoteResult{}, nil
	}

	a.enter(StagePricing)
	priced := a.scheduler.PriceAll(ctx, methods, req)

	a.enter(StageFiltering)
	valid := make([]models.PricedMethod, 0, len(priced))
	for _, m := range priced {
		if m.HasPrice() {
			valid = append(valid, m)
		}
	}

	a.enter(StageDeduplicating)
	deduped := Dedupe(valid)

	a.enter(StageDone)
	a.logger.Debug("Quote aggregated",
		zap.Int("discovered", len(methods)),
		zap.Int("priced", len(valid)),
		zap.Int("returned", len(deduped)),
	)

	return models.QuoteResult{
		Methods: deduped,
		Stats: models.QuoteStats{
			Discovered: len(methods),
			Priced:     len(valid),
			Unpriced:   len(priced) - len(valid),
			Returned:   len(deduped),
		},
	}, nil
}

func (a *Aggregator) enter(stage Stage) {
	a.logger.Debug("Quote stage", zap.String("stage", string(stage)))
}
