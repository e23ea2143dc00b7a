package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Amount is a numeric field that accepts either a JSON number or a numeric
// string ("12.5"), as sent by the upload and manual-entry forms.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*a = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("invalid numeric value %q", s)
	}
	*a = Amount(f)
	return nil
}

// Party is the shipper or recipient of a shipment document.
type Party struct {
	CountryCode string `json:"countryCode" binding:"required,len=2,alpha,uppercase"`
	PostalCode  string `json:"postalCode" binding:"required"`
}

// Package is a single parcel of a shipment document.
type Package struct {
	Kg  Amount `json:"kg" binding:"gt=0"`
	Lar Amount `json:"lar" binding:"gt=0"` // length, cm
	Anc Amount `json:"anc" binding:"gt=0"` // width, cm
	Alt Amount `json:"alt" binding:"gt=0"` // height, cm
}

// ShipmentDocument is the payload of POST /api/get-rates.
type ShipmentDocument struct {
	Shipment  string    `json:"shipment" binding:"required"`
	Shipper   Party     `json:"shipper"`
	Recipient Party     `json:"recipient"`
	Packages  []Package `json:"packages" binding:"required,min=1,dive"`
}

// QuoteRequest derives the pipeline input: total and heaviest-package weight,
// and the per-axis maximum of the package dimensions.
func (d *ShipmentDocument) QuoteRequest() QuoteRequest {
	req := QuoteRequest{
		Origin:       Location{Country: d.Shipper.CountryCode, PostalCode: d.Shipper.PostalCode},
		Destination:  Location{Country: d.Recipient.CountryCode, PostalCode: d.Recipient.PostalCode},
		PackageCount: len(d.Packages),
	}

	var dims Dimensions
	for _, p := range d.Packages {
		kg := float64(p.Kg)
		req.TotalWeightKg += kg
		if kg > req.MaxPackageWeightKg {
			req.MaxPackageWeightKg = kg
		}
		dims.LengthCm = max(dims.LengthCm, float64(p.Lar))
		dims.WidthCm = max(dims.WidthCm, float64(p.Anc))
		dims.HeightCm = max(dims.HeightCm, float64(p.Alt))
	}
	if dims.Complete() {
		req.Dimensions = &dims
	}
	return req
}

// RateOption is a single priced shipping option returned to the client.
type RateOption struct {
	ID            string  `json:"id"`
	Carrier       string  `json:"carrier"`
	Service       string  `json:"service"`
	AccountNumber string  `json:"accountNumber"`
	DeliveryTime  string  `json:"deliveryTime"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
}

// QuoteMeta carries timing information about a quote.
type QuoteMeta struct {
	LatencyMs int64     `json:"latency"`
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"`
}

// QuoteResponse is the body of a successful POST /api/get-rates.
type QuoteResponse struct {
	Success     bool         `json:"success"`
	QuoteID     string       `json:"quoteId"`
	ShipmentID  string       `json:"shipmentId"`
	Origin      Location     `json:"origin"`
	Destination Location     `json:"destination"`
	WeightKg    float64      `json:"weight"`
	Packages    int          `json:"packages"`
	Results     []RateOption `json:"results"`
	Meta        QuoteMeta    `json:"meta"`
}

// RatesQuotedEvent is published to SNS after a successful quote.
type RatesQuotedEvent struct {
	EventType     string    `json:"event_type"`
	QuoteID       string    `json:"quote_id"`
	ShipmentID    string    `json:"shipment_id"`
	Origin        Location  `json:"origin"`
	Destination   Location  `json:"destination"`
	WeightKg      float64   `json:"weight_kg"`
	OptionCount   int       `json:"option_count"`
	CheapestPrice float64   `json:"cheapest_price,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
