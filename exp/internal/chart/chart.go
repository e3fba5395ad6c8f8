package chart

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/yyyoichi/fuzzyc"
)

// Validity creates a dual-axis line chart of PC (left) and PEC (right) over K.
// Failed candidates are left out.
func Validity(results []fuzzyc.SweepResult) *charts.Line {
	ok := slices.DeleteFunc(slices.Clone(results), func(r fuzzyc.SweepResult) bool { return r.Err != nil })
	slices.SortFunc(ok, func(a, b fuzzyc.SweepResult) int { return a.K - b.K })

	var (
		xAxisData []string
		pcData    []opts.LineData
		pecData   []opts.LineData
		maxPEC    = 0.0
	)
	for _, r := range ok {
		xAxisData = append(xAxisData, fmt.Sprintf("K=%d", r.K))
		pcData = append(pcData, opts.LineData{
			Value: r.Indices.PC,
			Name:  fmt.Sprintf("K=%d: PC=%.4f (iter=%d)", r.K, r.Indices.PC, r.Result.Iterations),
		})
		pecData = append(pecData, opts.LineData{
			Value: r.Indices.PEC,
			Name:  fmt.Sprintf("K=%d: PEC=%.4f (iter=%d)", r.K, r.Indices.PEC, r.Result.Iterations),
		})
		maxPEC = math.Max(maxPEC, math.Log(float64(r.K)))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Partition Validity by K",
			Subtitle: "Higher PC and lower PEC mean a crisper partition",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "K",
			Type: "category",
			Data: xAxisData,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "PC",
			Type: "value",
			Min:  0,
			Max:  1,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "5%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)
	line.SetXAxis(xAxisData)

	line.AddSeries("PC", pcData).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth: opts.Bool(false),
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	// Extend Y-axis for dual axis (must be done before adding the second series)
	line.ExtendYAxis(opts.YAxis{
		Name: "PEC",
		Type: "value",
		Min:  0,
		Max:  math.Ceil(maxPEC*10) / 10,
	})
	line.AddSeries("PEC", pecData,
		charts.WithLineChartOpts(opts.LineChart{
			YAxisIndex: 1,
		}),
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(false),
		}),
	)
	return line
}

// Scatter plots the first two features of every point, one series per hard label,
// with the centers as a separate series.
func Scatter(title string, points [][]float64, labels []int, centers [][]float64) (*charts.Scatter, error) {
	if len(points) != len(labels) {
		return nil, fmt.Errorf("%d points but %d labels", len(points), len(labels))
	}
	groups := make([][]opts.ScatterData, len(centers))
	for i, p := range points {
		l := labels[i]
		if l < 0 || l >= len(centers) {
			return nil, fmt.Errorf("label %d of point %d outside %d clusters", l, i, len(centers))
		}
		groups[l] = append(groups[l], opts.ScatterData{
			Value:      xy(p),
			Symbol:     "circle",
			SymbolSize: 6,
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x0", Type: "value", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "x1", Type: "value", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "inside",
			Start: 0,
			End:   100,
		}),
	)
	for c, g := range groups {
		scatter.AddSeries(fmt.Sprintf("Cluster %d", c), g)
	}

	centerData := make([]opts.ScatterData, len(centers))
	for c, v := range centers {
		centerData[c] = opts.ScatterData{
			Value:      xy(v),
			Symbol:     "diamond",
			SymbolSize: 16,
			Name:       fmt.Sprintf("center %d", c),
		}
	}
	scatter.AddSeries("Centers", centerData)
	return scatter, nil
}

func xy(v []float64) []any {
	if len(v) == 1 {
		return []any{v[0], 0}
	}
	return []any{v[0], v[1]}
}

// Memberships creates a heatmap of the membership matrix; rows beyond maxRows are
// left out.
func Memberships(title string, u [][]float64, maxRows int) *charts.HeatMap {
	if maxRows > 0 && len(u) > maxRows {
		u = u[:maxRows]
	}
	var (
		xLabels []string
		yLabels []string
		data    []opts.HeatMapData
	)
	for i, row := range u {
		yLabels = append(yLabels, fmt.Sprintf("p%d", i))
		for c, v := range row {
			data = append(data, opts.HeatMapData{Value: [3]any{c, i, v}})
		}
	}
	if len(u) > 0 {
		for c := range u[0] {
			xLabels = append(xLabels, fmt.Sprintf("C%d", c))
		}
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Membership of each point in each cluster",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Cluster",
			Type:      "category",
			Data:      xLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Point",
			Type:      "category",
			Data:      yLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: []string{"#313695", "#74add1", "#fee090", "#f46d43", "#a50026"}},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	heatmap.AddSeries("Membership", data)
	return heatmap
}

// Render writes every chart to w as one HTML page.
func Render(w io.Writer, cs ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = "fuzzyc sweep"
	page.AddCharts(cs...)
	return page.Render(w)
}
