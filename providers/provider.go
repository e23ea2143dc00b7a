package providers

import (
	"context"
	"fmt"
	"unicode/utf8"

	"rate-shopper/models"
)

// RateProvider defines the rate provider operations the quote pipeline needs.
type RateProvider interface {
	// Name identifies the provider in logs and responses.
	Name() string

	// DiscoverMethods lists the shipping methods available for a route. The
	// weight is the heaviest single package.
	DiscoverMethods(ctx context.Context, origin, destination models.Location, maxPackageWeightKg float64, dims *models.Dimensions) ([]models.ShippingMethod, error)

	// FetchPrice returns the total price of one method for the whole shipment.
	FetchPrice(ctx context.Context, methodID string, origin, destination models.Location, totalWeightKg float64, dims *models.Dimensions) (models.Price, error)
}

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindProviderStatus  ErrorKind = "provider_status"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindTransport       ErrorKind = "transport"
)

// ProviderError is returned by every RateProvider call that fails.
type ProviderError struct {
	Kind       ErrorKind
	StatusCode int // set for KindProviderStatus
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if e.Kind == KindProviderStatus {
		msg = fmt.Sprintf("provider API error (status %d): %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

const maxStatusMessage = 512

func statusError(status int, body []byte) *ProviderError {
	msg := string(body)
	if len(msg) > maxStatusMessage {
		n := maxStatusMessage
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
		msg = msg[:n]
	}
	return &ProviderError{Kind: KindProviderStatus, StatusCode: status, Message: msg}
}

func invalidResponse(msg string, err error) *ProviderError {
	return &ProviderError{Kind: KindInvalidResponse, Message: msg, Err: err}
}

func transportError(err error) *ProviderError {
	return &ProviderError{Kind: KindTransport, Message: "provider request failed", Err: err}
}
