package models

// NoPrice marks a method whose price could not be fetched or was unavailable.
const NoPrice = 0.0

// Location is one end of a shipment route.
type Location struct {
	Country    string `json:"country"` // ISO 3166-1 alpha-2, e.g. "ES"
	PostalCode string `json:"postalCode"`
}

// Dimensions describes a parcel in centimetres.
type Dimensions struct {
	LengthCm float64 `json:"length"`
	WidthCm  float64 `json:"width"`
	HeightCm float64 `json:"height"`
}

// Complete reports whether all three axes are known. Partial dimensions are
// never sent to the provider.
func (d *Dimensions) Complete() bool {
	return d != nil && d.LengthCm > 0 && d.WidthCm > 0 && d.HeightCm > 0
}

// QuoteRequest is the validated input of the rate aggregation pipeline.
type QuoteRequest struct {
	Origin             Location
	Destination        Location
	TotalWeightKg      float64
	MaxPackageWeightKg float64
	PackageCount       int
	Dimensions         *Dimensions
}

// ShippingMethod is a method published by the rate provider for a route.
type ShippingMethod struct {
	ID           string
	Name         string
	Carrier      string
	ContractID   string
	Currency     string
	DeliveryTime string
}

// Price is the total shipment price returned for one method.
type Price struct {
	Amount   float64
	Currency string
}

// PricedMethod is a ShippingMethod after the pricing step. Price is NoPrice
// when the fetch failed.
type PricedMethod struct {
	ShippingMethod
	Price float64
}

// HasPrice reports whether the method carries a usable price.
func (p PricedMethod) HasPrice() bool {
	return p.Price > NoPrice
}

// QuoteStats summarises what happened to the methods of one quote.
type QuoteStats struct {
	Discovered int
	Priced     int
	Unpriced   int
	Returned   int
}

// QuoteResult is the deduplicated, priced list of methods in discovery order.
type QuoteResult struct {
	Methods []PricedMethod
	Stats   QuoteStats
}
