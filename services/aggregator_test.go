package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"rate-shopper/models"
	"rate-shopper/providers"
	"rate-shopper/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newAggregator(p providers.RateProvider, logger *zap.Logger) *services.Aggregator {
	scheduler := services.NewBatchScheduler(p, logger, services.WithInterBatchDelay(0))
	return services.NewAggregator(p, scheduler, logger)
}

func TestQuote_EmptyDiscovery(t *testing.T) {
	provider := &mockProvider{}
	agg := newAggregator(provider, zap.NewNop())

	result, err := agg.Quote(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Empty(t, result.Methods)
	assert.Equal(t, models.QuoteStats{}, result.Stats)
	assert.Zero(t, provider.fetchCount())
}

func TestQuote_DiscoveryFailure(t *testing.T) {
	provider := &mockProvider{discoverErr: &providers.ProviderError{
		Kind:       providers.KindProviderStatus,
		StatusCode: http.StatusUnprocessableEntity,
		Message:    "invalid postal code",
	}}
	core, logs := observer.New(zapcore.DebugLevel)
	agg := newAggregator(provider, zap.New(core))

	_, err := agg.Quote(context.Background(), testRequest)

	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrDiscoveryFailed))
	var perr *providers.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnprocessableEntity, perr.StatusCode)
	assert.Zero(t, provider.fetchCount())

	stages := []string{}
	for _, e := range logs.FilterMessage("Quote stage").All() {
		stages = append(stages, e.ContextMap()["stage"].(string))
	}
	assert.Equal(t, []string{string(services.StageDiscovering), string(services.StageFailed)}, stages)
}

func TestQuote_PartialPricingFailure(t *testing.T) {
	methods, prices := numberedMethods(6)
	delete(prices, "m3")
	agg := newAggregator(&mockProvider{methods: methods, prices: prices}, zap.NewNop())

	result, err := agg.Quote(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Equal(t, []string{"m0", "m1", "m2", "m4", "m5"}, ids(result.Methods))
	assert.Equal(t, models.QuoteStats{Discovered: 6, Priced: 5, Unpriced: 1, Returned: 5}, result.Stats)
}

func TestQuote_AllPricingFails(t *testing.T) {
	methods, _ := numberedMethods(3)
	agg := newAggregator(&mockProvider{methods: methods}, zap.NewNop())

	result, err := agg.Quote(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Empty(t, result.Methods)
	assert.Equal(t, 3, result.Stats.Unpriced)
}

func TestQuote_DeduplicatesWeightBands(t *testing.T) {
	provider := &mockProvider{
		methods: []models.ShippingMethod{
			{ID: "1", Carrier: "dhl", Name: "Europlus"},
			{ID: "2", Carrier: "ups", Name: "Standard"},
			{ID: "3", Carrier: "dhl", Name: "Europlus® 16-18kg"},
			{ID: "4", Carrier: "dhl", Name: "Europlus 18-20kg"},
		},
		prices: map[string]float64{"1": 30, "2": 25, "3": 32, "4": 35},
	}
	agg := newAggregator(provider, zap.NewNop())

	result, err := agg.Quote(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, ids(result.Methods))
	assert.Equal(t, 32.0, result.Methods[0].Price)
	assert.Equal(t, 2, result.Stats.Returned)
}

func TestQuote_FixtureEndToEnd(t *testing.T) {
	provider := providers.NewFixtureProvider(0)
	agg := newAggregator(provider, zap.NewNop())

	result, err := agg.Quote(context.Background(), testRequest)

	require.NoError(t, err)
	require.Len(t, result.Methods, 8)
	for _, m := range result.Methods {
		assert.Greater(t, m.Price, 0.0, m.ID)
		assert.Equal(t, "EUR", m.Currency, m.ID)
	}
	assert.Equal(t, "dhl_express_1", result.Methods[0].ID)
	assert.Equal(t, 45.90, result.Methods[0].Price)
	assert.Equal(t, "fixture", agg.ProviderName())
}

func TestQuote_FixtureInvalidPostalCode(t *testing.T) {
	agg := newAggregator(providers.NewFixtureProvider(0), zap.NewNop())
	req := testRequest
	req.Destination.PostalCode = providers.InvalidPostalCode

	_, err := agg.Quote(context.Background(), req)

	assert.ErrorIs(t, err, services.ErrDiscoveryFailed)
}
