package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/fuzzyc"
)

func sweep(t *testing.T) ([]fuzzyc.SweepResult, *fuzzyc.Points) {
	t.Helper()
	ps, err := fuzzyc.NewPoints([][]float64{{0, 0}, {0, 1}, {10, 10}, {10, 11}})
	require.NoError(t, err)
	results, err := fuzzyc.Sweep(t.Context(), ps, []int{3, 2, 9}, fuzzyc.WithSeed(1))
	require.NoError(t, err)
	return results, ps
}

func TestValidity(t *testing.T) {
	results, _ := sweep(t)
	line := Validity(results)

	var buf bytes.Buffer
	require.NoError(t, line.Render(&buf))
	html := buf.String()
	assert.Contains(t, html, "Partition Validity by K")
	assert.Contains(t, html, "K=2")
	assert.Contains(t, html, "K=3")
	assert.NotContains(t, html, "K=9")
}

func TestScatter(t *testing.T) {
	results, ps := sweep(t)
	res := results[1].Result
	require.NotNil(t, res)

	scatter, err := Scatter("k=2", ps.Vectors(), res.Labels(), res.Centers())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, scatter.Render(&buf))
	assert.Contains(t, buf.String(), "Centers")
	assert.Contains(t, buf.String(), "Cluster 1")

	_, err = Scatter("bad", ps.Vectors(), []int{0}, res.Centers())
	assert.Error(t, err)
	_, err = Scatter("bad", ps.Vectors(), []int{0, 0, 0, 7}, res.Centers())
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	results, _ := sweep(t)
	heatmap := Memberships("memberships k=2", results[1].Result.Memberships(), 2)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Validity(results), heatmap))
	assert.Contains(t, buf.String(), "memberships k=2")
	assert.Contains(t, buf.String(), `"p1"`)
	assert.NotContains(t, buf.String(), `"p2"`)
}
