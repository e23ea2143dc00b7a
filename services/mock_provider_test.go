package services_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"rate-shopper/models"
	"rate-shopper/providers"
)

// ---- mock provider ----

type mockProvider struct {
	methods     []models.ShippingMethod
	discoverErr error
	prices      map[string]float64 // ids missing here fail with a 503
	delay       func(id string) time.Duration

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	fetched     []string
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) DiscoverMethods(_ context.Context, _, _ models.Location, _ float64, _ *models.Dimensions) ([]models.ShippingMethod, error) {
	return m.methods, m.discoverErr
}

func (m *mockProvider) FetchPrice(ctx context.Context, methodID string, _, _ models.Location, _ float64, _ *models.Dimensions) (models.Price, error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.fetched = append(m.fetched, methodID)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.delay != nil {
		select {
		case <-time.After(m.delay(methodID)):
		case <-ctx.Done():
			return models.Price{}, ctx.Err()
		}
	}

	price, ok := m.prices[methodID]
	if !ok {
		return models.Price{}, &providers.ProviderError{
			Kind:       providers.KindProviderStatus,
			StatusCode: http.StatusServiceUnavailable,
			Message:    "price unavailable",
		}
	}
	return models.Price{Amount: price, Currency: "EUR"}, nil
}

func (m *mockProvider) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fetched)
}

// numberedMethods returns n methods m0..m(n-1), each priced at index+1.
func numberedMethods(n int) ([]models.ShippingMethod, map[string]float64) {
	methods := make([]models.ShippingMethod, n)
	prices := make(map[string]float64, n)
	for i := range methods {
		id := fmt.Sprintf("m%d", i)
		methods[i] = models.ShippingMethod{
			ID:      id,
			Name:    fmt.Sprintf("Service %d", i),
			Carrier: "carrier",
		}
		prices[id] = float64(i + 1)
	}
	return methods, prices
}

var testRequest = models.QuoteRequest{
	Origin:             models.Location{Country: "ES", PostalCode: "03203"},
	Destination:        models.Location{Country: "FR", PostalCode: "75001"},
	TotalWeightKg:      10,
	MaxPackageWeightKg: 10,
	PackageCount:       1,
}
