package main

import (
	"gonum.org/v1/gonum/floats"
)

// minMaxScale maps every feature to [0, 1] in place. A constant feature becomes 0.
func minMaxScale(vectors [][]float64) {
	if len(vectors) == 0 {
		return
	}
	col := make([]float64, len(vectors))
	for j := range vectors[0] {
		for i, v := range vectors {
			col[i] = v[j]
		}
		lo, hi := floats.Min(col), floats.Max(col)
		span := hi - lo
		for _, v := range vectors {
			if span == 0 {
				v[j] = 0
				continue
			}
			v[j] = (v[j] - lo) / span
		}
	}
}
