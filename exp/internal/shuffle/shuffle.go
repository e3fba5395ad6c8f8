package shuffle

import (
	"math/rand"
	"slices"
)

func Shuffle[T any](data []T, seed int64) {
	rd := rand.New(rand.NewSource(seed))
	rd.Shuffle(len(data), func(i, j int) {
		data[i], data[j] = data[j], data[i]
	})
}

// Sample returns n elements of data picked with the seed, in their original order.
// data is left untouched. n <= 0 or n >= len(data) returns a copy of data.
func Sample[T any](data []T, n int, seed int64) []T {
	if n <= 0 || n >= len(data) {
		return slices.Clone(data)
	}
	index := make([]int, len(data))
	for i := range index {
		index[i] = i
	}
	Shuffle(index, seed)
	index = index[:n]
	slices.Sort(index)

	out := make([]T, n)
	for i, x := range index {
		out[i] = data[x]
	}
	return out
}
