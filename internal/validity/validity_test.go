package validity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/fuzzyc/internal/errs"
	"gonum.org/v1/gonum/mat"
)

func TestCompute(t *testing.T) {
	test := []struct {
		name string
		u    *mat.Dense
		exp  Indices
	}{
		{
			name: "crisp",
			u:    mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 0}),
			exp:  Indices{PC: 1, PEC: 0},
		},
		{
			name: "uniform_k2",
			u:    mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5}),
			exp:  Indices{PC: 0.5, PEC: math.Ln2},
		},
		{
			name: "uniform_k4",
			u:    mat.NewDense(1, 4, []float64{0.25, 0.25, 0.25, 0.25}),
			exp:  Indices{PC: 0.25, PEC: math.Log(4)},
		},
		{
			name: "mixed",
			u:    mat.NewDense(2, 2, []float64{1, 0, 0.5, 0.5}),
			exp:  Indices{PC: 0.75, PEC: math.Ln2 / 2},
		},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := Compute(tt.u)
			require.NoError(t, err)
			assert.InDelta(t, tt.exp.PC, idx.PC, 1e-12)
			assert.InDelta(t, tt.exp.PEC, idx.PEC, 1e-12)

			pc, err := PC(tt.u)
			require.NoError(t, err)
			assert.Equal(t, idx.PC, pc)
			pec, err := PEC(tt.u)
			require.NoError(t, err)
			assert.Equal(t, idx.PEC, pec)

			// repeated calls see the same matrix
			again, err := Compute(tt.u)
			require.NoError(t, err)
			assert.Equal(t, idx, again)
		})
	}
}

func TestComputeRejectsMalformed(t *testing.T) {
	test := []struct {
		name string
		u    mat.Matrix
	}{
		{"nil", nil},
		{"empty", &mat.Dense{}},
		{"row_sum_low", mat.NewDense(2, 2, []float64{0.5, 0.4, 1, 0})},
		{"row_sum_high", mat.NewDense(1, 2, []float64{0.7, 0.7})},
		{"negative", mat.NewDense(1, 2, []float64{1.5, -0.5})},
		{"nan", mat.NewDense(1, 2, []float64{math.NaN(), 1})},
		{"inf", mat.NewDense(1, 2, []float64{math.Inf(1), 0})},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.u)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
			_, err = PC(tt.u)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
			_, err = PEC(tt.u)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}
}

func TestCheckTolerance(t *testing.T) {
	u := mat.NewDense(1, 2, []float64{0.5 + 1e-10, 0.5})
	assert.NoError(t, Check(u, DefaultTolerance))
	assert.ErrorIs(t, Check(u, 1e-12), errs.ErrInvalidInput)
}
