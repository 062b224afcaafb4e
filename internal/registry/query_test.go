package registry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSearchQuery(t *testing.T) {
	assert.Equal(t,
		"openfda.manufacturer_name:Pfizer",
		BuildSearchQuery("Pfizer", ""))
	assert.Equal(t,
		"openfda.manufacturer_name:Pfizer+AND+openfda.brand_name:Aspirin",
		BuildSearchQuery("Pfizer", "Aspirin"))
}

func TestPagination(t *testing.T) {
	tests := []struct {
		page, size, skip, limit int
	}{
		{1, 10, 0, 10},
		{2, 10, 10, 10},
		{3, 25, 50, 25},
		{1, 1, 0, 1},
		{math.MaxInt / 10, 20, math.MaxInt, 20},
	}
	for _, tt := range tests {
		skip, limit := Pagination(tt.page, tt.size)
		assert.Equal(t, tt.skip, skip)
		assert.Equal(t, tt.limit, limit)
	}
}

func TestEncodeSearch(t *testing.T) {
	assert.Equal(t,
		"openfda.manufacturer_name:Pfizer+AND+openfda.brand_name:Aspirin",
		encodeSearch("openfda.manufacturer_name:Pfizer+AND+openfda.brand_name:Aspirin"))
	assert.Equal(t, "a%26b", encodeSearch("a&b"))
}
