package models_test

import (
	"encoding/json"
	"testing"

	"rate-shopper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	cases := map[string]float64{
		`12.5`:   12.5,
		`"12.5"`: 12.5,
		`" 7 "`:  7,
		`3`:      3,
		`null`:   0,
		`""`:     0,
		`"1e1"`:  10,
	}
	for in, want := range cases {
		var a models.Amount
		require.NoError(t, json.Unmarshal([]byte(in), &a), in)
		assert.Equal(t, models.Amount(want), a, in)
	}
}

func TestAmount_UnmarshalJSON_Invalid(t *testing.T) {
	for _, in := range []string{`"abc"`, `true`, `"12kg"`, `"Infinity"`, `"-inf"`, `"NaN"`, `"1e400"`} {
		var a models.Amount
		assert.Error(t, json.Unmarshal([]byte(in), &a), in)
	}
}

func TestShipmentDocument_QuoteRequest(t *testing.T) {
	doc := models.ShipmentDocument{
		Shipment:  "EXP-9",
		Shipper:   models.Party{CountryCode: "ES", PostalCode: "03203"},
		Recipient: models.Party{CountryCode: "FR", PostalCode: "75001"},
		Packages: []models.Package{
			{Kg: 2, Lar: 10, Anc: 50, Alt: 5},
			{Kg: 7.5, Lar: 60, Anc: 20, Alt: 5},
			{Kg: 0.5, Lar: 15, Anc: 15, Alt: 30},
		},
	}

	req := doc.QuoteRequest()

	assert.Equal(t, models.Location{Country: "ES", PostalCode: "03203"}, req.Origin)
	assert.Equal(t, models.Location{Country: "FR", PostalCode: "75001"}, req.Destination)
	assert.InDelta(t, 10.0, req.TotalWeightKg, 1e-9)
	assert.Equal(t, 7.5, req.MaxPackageWeightKg)
	assert.Equal(t, 3, req.PackageCount)
	assert.Equal(t, &models.Dimensions{LengthCm: 60, WidthCm: 50, HeightCm: 30}, req.Dimensions)
}

func TestShipmentDocument_QuoteRequest_NoDimensions(t *testing.T) {
	doc := models.ShipmentDocument{
		Packages: []models.Package{{Kg: 1, Lar: 10, Anc: 10}},
	}

	req := doc.QuoteRequest()

	assert.Nil(t, req.Dimensions)
	assert.Equal(t, 1.0, req.TotalWeightKg)
}

func TestDimensions_Complete(t *testing.T) {
	var nilDims *models.Dimensions
	assert.False(t, nilDims.Complete())
	assert.False(t, (&models.Dimensions{LengthCm: 1, WidthCm: 1}).Complete())
	assert.True(t, (&models.Dimensions{LengthCm: 1, WidthCm: 1, HeightCm: 1}).Complete())
}

func TestPricedMethod_HasPrice(t *testing.T) {
	assert.False(t, models.PricedMethod{Price: models.NoPrice}.HasPrice())
	assert.False(t, models.PricedMethod{Price: -1}.HasPrice())
	assert.True(t, models.PricedMethod{Price: 0.01}.HasPrice())
}

func TestQuoteResponse_JSONShape(t *testing.T) {
	resp := models.QuoteResponse{
		Success: true,
		Results: []models.RateOption{{ID: "1", AccountNumber: "V1", DeliveryTime: "N/D"}},
	}

	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"success", "quoteId", "shipmentId", "origin", "destination", "weight", "packages", "results", "meta"} {
		assert.Contains(t, m, k)
	}
	option := m["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "V1", option["accountNumber"])
	assert.Equal(t, "N/D", option["deliveryTime"])
}
