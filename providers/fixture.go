package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"rate-shopper/models"
)

// InvalidPostalCode is the destination postal code the fixture provider
// rejects, to exercise discovery failures end to end.
const InvalidPostalCode = "00000"

type fixtureMethod struct {
	method    models.ShippingMethod
	basePrice float64
}

// referenceMethods are priced for a 10 kg shipment.
var referenceMethods = []fixtureMethod{
	{models.ShippingMethod{ID: "dhl_express_1", Name: "DHL Express 12:00", Carrier: "DHL", ContractID: "V24059", Currency: "EUR", DeliveryTime: "1-2"}, 45.90},
	{models.ShippingMethod{ID: "dhl_standard_2", Name: "DHL Standard", Carrier: "DHL", ContractID: "V24060", Currency: "EUR", DeliveryTime: "3-5"}, 32.50},
	{models.ShippingMethod{ID: "dhl_ecommerce_3", Name: "DHL eCommerce", Carrier: "DHL", ContractID: "V24061", Currency: "EUR", DeliveryTime: "4-6"}, 28.90},
	{models.ShippingMethod{ID: "ups_saver_1", Name: "UPS Saver", Carrier: "UPS", ContractID: "U12345", Currency: "EUR", DeliveryTime: "2-3"}, 42.00},
	{models.ShippingMethod{ID: "ups_standard_2", Name: "UPS Standard", Carrier: "UPS", ContractID: "U12346", Currency: "EUR", DeliveryTime: "3-4"}, 36.75},
	{models.ShippingMethod{ID: "fedex_priority_1", Name: "FedEx Priority", Carrier: "FedEx", ContractID: "F99999", Currency: "EUR", DeliveryTime: "1-2"}, 48.50},
	{models.ShippingMethod{ID: "correos_express_1", Name: "Correos Express 24H", Carrier: "Correos Express", ContractID: "C88001", Currency: "EUR", DeliveryTime: "1"}, 25.90},
	{models.ShippingMethod{ID: "correos_standard_2", Name: "Correos Standard", Carrier: "Correos Express", ContractID: "C88002", Currency: "EUR", DeliveryTime: "2-3"}, 18.50},
}

// FixtureProvider is an in-process RateProvider serving the reference
// contract set. It never touches the network.
type FixtureProvider struct {
	methods []fixtureMethod
	index   map[string]int
	latency time.Duration
}

// NewFixtureProvider creates a FixtureProvider. latency is added to every call.
func NewFixtureProvider(latency time.Duration) *FixtureProvider {
	index := make(map[string]int, len(referenceMethods))
	for i, m := range referenceMethods {
		index[m.method.ID] = i
	}
	return &FixtureProvider{methods: referenceMethods, index: index, latency: latency}
}

// Name implements RateProvider.
func (f *FixtureProvider) Name() string { return "fixture" }

// DiscoverMethods returns the reference methods, or a 400 for InvalidPostalCode.
func (f *FixtureProvider) DiscoverMethods(ctx context.Context, origin, destination models.Location, maxPackageWeightKg float64, dims *models.Dimensions) ([]models.ShippingMethod, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if destination.PostalCode == InvalidPostalCode {
		return nil, &ProviderError{
			Kind:       KindProviderStatus,
			StatusCode: http.StatusBadRequest,
			Message:    "invalid destination postal code",
		}
	}

	out := make([]models.ShippingMethod, 0, len(f.methods))
	for _, m := range f.methods {
		out = append(out, m.method)
	}
	return out, nil
}

// FetchPrice scales the reference price by 5% per kg away from 10 kg.
func (f *FixtureProvider) FetchPrice(ctx context.Context, methodID string, origin, destination models.Location, totalWeightKg float64, dims *models.Dimensions) (models.Price, error) {
	if err := f.wait(ctx); err != nil {
		return models.Price{}, err
	}
	i, ok := f.index[methodID]
	if !ok {
		return models.Price{}, &ProviderError{
			Kind:       KindProviderStatus,
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("unknown shipping method %s", methodID),
		}
	}
	m := f.methods[i]
	amount := math.Round(m.basePrice*(1+(totalWeightKg-10)*0.05)*100) / 100
	return models.Price{Amount: amount, Currency: m.method.Currency}, nil
}

func (f *FixtureProvider) wait(ctx context.Context) error {
	if f.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(f.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return transportError(ctx.Err())
	case <-timer.C:
		return nil
	}
}
