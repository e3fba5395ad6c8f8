package db

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Float64SliceToBytes converts []float64 to little-endian bytes
func Float64SliceToBytes(data []float64) []byte {
	buf := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// BytesToFloat64Slice converts little-endian bytes to []float64
func BytesToFloat64Slice(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("vector blob of %d bytes is not a multiple of 8", len(data))
	}
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return out, nil
}
