package services_test

import (
	"testing"

	"rate-shopper/services"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	cases := map[string]string{
		"Europlus 16-18kg":             "europlus",
		"DHL Europlus® 0-2kg":          "dhl europlus",
		"  UPS   Standard  ":           "ups standard",
		"Colissimo Home 2-5KG":         "colissimo home",
		"Correos Express 24H":          "correos express 24h",
		"Parcel 0-2kg 2-5kg":           "parcel",
		"Weight 0-2kg Economy":         "weight 0-2kg economy",
		"5-10kg":                       "5-10kg",
		"GLS Business Parcel 0-30kg ": "gls business parcel",
		"":                             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, services.Canonicalize(in), "Canonicalize(%q)", in)
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	names := []string{
		"Europlus 16-18kg",
		"DHL Europlus® 0-2kg",
		"Parcel  0-2kg 2-5kg",
		"Weight 0-2kg Economy",
		"5-10kg",
		" ®  Express ® 1-2kg ",
		"UPS Saver",
		"UPS Standard 1-2kg \u00a0 3-4kg",
		"Europlus\u00a016-18kg\u2003",
		"\u3000Colissimo\tHome\n2-5kg",
	}
	for _, n := range names {
		once := services.Canonicalize(n)
		assert.Equal(t, once, services.Canonicalize(once), "name %q", n)
	}
}

func TestCanonicalize_UnicodeSpaces(t *testing.T) {
	assert.Equal(t, "ups standard", services.Canonicalize("UPS Standard 1-2kg \u00a0 3-4kg"))
	assert.Equal(t, "ups standard", services.Canonicalize("UPS Standard\u00a016-18kg"))
	assert.Equal(t, services.Canonicalize("UPS Standard"), services.Canonicalize("UPS\u2009Standard\u00a016-18kg"))
}

func TestHasWeightRange(t *testing.T) {
	assert.True(t, services.HasWeightRange("Europlus 16-18kg"))
	assert.True(t, services.HasWeightRange("Weight 0-2KG economy"))
	assert.False(t, services.HasWeightRange("Europlus"))
	assert.False(t, services.HasWeightRange("Express 24H"))
	assert.False(t, services.HasWeightRange("Over 30kg"))
}
