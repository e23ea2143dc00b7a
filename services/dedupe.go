package services

import "rate-shopper/models"

type groupKey struct {
	carrier string
	name    string
}

// Dedupe keeps one method per (carrier, canonical name) among the methods
// with a usable price. Within a group the first weight-banded variant wins,
// otherwise the first member. Groups keep the order in which they were first
// seen.
func Dedupe(priced []models.PricedMethod) []models.PricedMethod {
	var order []groupKey
	groups := make(map[groupKey][]models.PricedMethod)

	for _, m := range priced {
		if !m.HasPrice() {
			continue
		}
		key := groupKey{carrier: m.Carrier, name: Canonicalize(m.Name)}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], m)
	}

	out := make([]models.PricedMethod, 0, len(order))
	for _, key := range order {
		out = append(out, pickRepresentative(groups[key]))
	}
	return out
}

func pickRepresentative(group []models.PricedMethod) models.PricedMethod {
	if len(group) > 1 {
		for _, m := range group {
			if HasWeightRange(m.Name) {
				return m
			}
		}
	}
	return group[0]
}
