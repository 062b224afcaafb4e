package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestSkip(t *testing.T) {
	assert.Equal(t, int64(0), PageRequest{Page: 1, Size: 10}.Skip())
	assert.Equal(t, int64(20), PageRequest{Page: 3, Size: 10}.Skip())
	assert.Equal(t, int64(0), PageRequest{Page: 0, Size: 10}.Skip())
	assert.Equal(t, int64(math.MaxInt64), PageRequest{Page: math.MaxInt / 10, Size: 20}.Skip())
}

func TestNewPage(t *testing.T) {
	p := NewPage[string](nil, PageRequest{Page: 1, Size: 20}, 0)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)

	p = NewPage([]string{"a"}, PageRequest{Page: 2, Size: 20}, 41)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(41), p.TotalItems)
}

func TestMapPage(t *testing.T) {
	p := NewPage([]int{1, 2}, PageRequest{Page: 1, Size: 2}, 5)
	out := MapPage(p, func(i int) int { return i * 10 })
	assert.Equal(t, []int{10, 20}, out.Items)
	assert.Equal(t, 3, out.TotalPages)
}
