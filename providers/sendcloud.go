package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"rate-shopper/models"
)

const (
	// DefaultSendcloudBaseURL is the production Sendcloud panel API.
	DefaultSendcloudBaseURL = "https://panel.sendcloud.sc"

	// DefaultCurrency is used when the provider omits a currency.
	DefaultCurrency = "EUR"
	// DefaultDeliveryTime is used when a method publishes lead times but no
	// delivery_time string.
	DefaultDeliveryTime = "2-3"
	// UnknownDeliveryTime is used when a method publishes no lead time at all.
	UnknownDeliveryTime = "N/D"

	productsPath = "/api/v2/shipping-products"
	pricePath    = "/api/v2/shipping-price"
)

// SendcloudProvider implements RateProvider using the Sendcloud v2 API.
type SendcloudProvider struct {
	baseURL   string
	transport Transport
}

// NewSendcloudProvider creates a new SendcloudProvider.
func NewSendcloudProvider(baseURL string, transport Transport) *SendcloudProvider {
	if baseURL == "" {
		baseURL = DefaultSendcloudBaseURL
	}
	return &SendcloudProvider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
	}
}

// Name implements RateProvider.
func (s *SendcloudProvider) Name() string { return "sendcloud" }

// DiscoverMethods lists the methods of every shipping product for the route.
func (s *SendcloudProvider) DiscoverMethods(ctx context.Context, origin, destination models.Location, maxPackageWeightKg float64, dims *models.Dimensions) ([]models.ShippingMethod, error) {
	q := routeQuery(origin, destination, maxPackageWeightKg, dims)

	var raw any
	if err := s.get(ctx, productsPath, q, &raw); err != nil {
		return nil, err
	}

	products, ok := raw.([]any)
	if !ok {
		return nil, invalidResponse("shipping-products: expected a JSON array", nil)
	}

	methods := make([]models.ShippingMethod, 0)
	for _, p := range products {
		product, ok := p.(map[string]any)
		if !ok {
			continue
		}
		carrier := toString(product["carrier"])
		rawMethods, _ := product["methods"].([]any)
		for _, m := range rawMethods {
			method, ok := m.(map[string]any)
			if !ok {
				continue
			}
			if sm, ok := toShippingMethod(carrier, method); ok {
				methods = append(methods, sm)
			}
		}
	}
	return methods, nil
}

// FetchPrice prices one method for the total shipment weight.
func (s *SendcloudProvider) FetchPrice(ctx context.Context, methodID string, origin, destination models.Location, totalWeightKg float64, dims *models.Dimensions) (models.Price, error) {
	q := routeQuery(origin, destination, totalWeightKg, dims)
	q.Set("shipping_method_id", methodID)

	var raw any
	if err := s.get(ctx, pricePath, q, &raw); err != nil {
		return models.Price{}, err
	}

	prices, ok := raw.([]any)
	if !ok || len(prices) == 0 {
		return models.Price{}, invalidResponse(fmt.Sprintf("shipping-price for method %s: empty or non-array response", methodID), nil)
	}
	first, ok := prices[0].(map[string]any)
	if !ok {
		return models.Price{}, invalidResponse(fmt.Sprintf("shipping-price for method %s: unexpected element", methodID), nil)
	}

	amount, ok := toF64(first["price"])
	if !ok {
		return models.Price{}, invalidResponse(fmt.Sprintf("shipping-price for method %s: missing price", methodID), nil)
	}
	currency := toString(first["currency"])
	if currency == "" {
		currency = DefaultCurrency
	}
	return models.Price{Amount: amount, Currency: currency}, nil
}

// ---- HTTP helper ----

func (s *SendcloudProvider) get(ctx context.Context, path string, q url.Values, out any) error {
	body, status, err := s.transport.Get(ctx, s.baseURL+path+"?"+q.Encode())
	if err != nil {
		return transportError(err)
	}
	if status < 200 || status >= 300 {
		return statusError(status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return invalidResponse("decode response", err)
	}
	return nil
}

func routeQuery(origin, destination models.Location, weightKg float64, dims *models.Dimensions) url.Values {
	q := url.Values{}
	q.Set("from_country", origin.Country)
	q.Set("to_country", destination.Country)
	q.Set("from_postal_code", origin.PostalCode)
	q.Set("to_postal_code", destination.PostalCode)
	q.Set("weight", formatFloat(weightKg))
	q.Set("weight_unit", "kilogram")

	if dims.Complete() {
		q.Set("parcel_length", formatFloat(dims.LengthCm))
		q.Set("parcel_width", formatFloat(dims.WidthCm))
		q.Set("parcel_height", formatFloat(dims.HeightCm))
		q.Set("parcel_length_unit", "centimeter")
		q.Set("parcel_width_unit", "centimeter")
		q.Set("parcel_height_unit", "centimeter")
	}
	return q
}

// ---- Conversion helpers ----

func toShippingMethod(carrier string, m map[string]any) (models.ShippingMethod, bool) {
	id := toString(m["id"])
	if id == "" {
		return models.ShippingMethod{}, false
	}

	contract := toString(m["contract_id"])
	if contract == "" {
		contract = id
	}

	delivery := toString(m["delivery_time"])
	if delivery == "" {
		if _, ok := m["lead_time_hours"].(map[string]any); ok {
			delivery = DefaultDeliveryTime
		} else {
			delivery = UnknownDeliveryTime
		}
	}

	currency := toString(m["currency"])
	if currency == "" {
		currency = DefaultCurrency
	}

	if c := toString(m["carrier"]); carrier == "" && c != "" {
		carrier = c
	}

	return models.ShippingMethod{
		ID:           id,
		Name:         toString(m["name"]),
		Carrier:      carrier,
		ContractID:   contract,
		Currency:     currency,
		DeliveryTime: delivery,
	}, true
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return formatFloat(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// toF64 accepts finite numbers only; ParseFloat would let "Infinity" and
// "NaN" through.
func toF64(v any) (float64, bool) {
	f, ok := parseF64(v)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseF64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
