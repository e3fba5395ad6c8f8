package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMaxScale(t *testing.T) {
	vectors := [][]float64{
		{167772161, 200, 7},
		{167772171, 404, 7},
		{167772166, 302, 7},
	}
	minMaxScale(vectors)
	assert.Equal(t, [][]float64{
		{0, 0, 0},
		{1, 1, 0},
		{0.5, 0.5, 0},
	}, vectors)

	minMaxScale(nil)
}
