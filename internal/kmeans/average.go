package kmeans

// AverageStore accumulates a running mean of vectors.
type AverageStore struct {
	sum   []float64
	count int
}

func NewAverageStore(dim int) *AverageStore {
	return &AverageStore{sum: make([]float64, dim)}
}

func (s *AverageStore) Add(value []float64) {
	for i, v := range value {
		s.sum[i] += v
	}
	s.count += 1
}

// Average writes the mean into dst. dst is left untouched when nothing was added.
func (s *AverageStore) Average(dst []float64) {
	if s.count == 0 {
		return
	}
	for i, v := range s.sum {
		dst[i] = v / float64(s.count)
	}
}

func (s *AverageStore) Count() int { return s.count }

func (s *AverageStore) Reset() {
	clear(s.sum)
	s.count = 0
}
