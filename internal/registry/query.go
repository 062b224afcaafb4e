// Package registry talks to the openFDA drugsfda endpoint.
package registry

import (
	"math"
	"net/url"
	"strings"
)

// Search field prefixes understood by the registry. A clause is the field
// followed directly by the value, e.g. openfda.brand_name:Aspirin.
const (
	ManufacturerNameField  = "openfda.manufacturer_name:"
	BrandNameField         = "openfda.brand_name:"
	ApplicationNumberField = "openfda.application_number:"

	// AndOperator joins clauses. The registry decodes '+' as a space, so this
	// reads as " AND " upstream.
	AndOperator = "+AND+"
)

// BuildSearchQuery returns the manufacturer clause, followed by the brand
// clause when brand is non-empty.
func BuildSearchQuery(manufacturer, brand string) string {
	q := ManufacturerNameField + manufacturer
	if brand != "" {
		q += AndOperator + BrandNameField + brand
	}
	return q
}

// Pagination converts a 1-based page and a page size into the registry's
// skip and limit parameters.
func Pagination(page, size int) (skip, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt, size
	}
	return (page - 1) * size, size
}

// encodeSearch percent-encodes a search expression while keeping '+' and
// ':' literal, so clause separators survive the round trip.
func encodeSearch(q string) string {
	escaped := url.QueryEscape(q)
	return strings.NewReplacer("%2B", "+", "%3A", ":").Replace(escaped)
}
