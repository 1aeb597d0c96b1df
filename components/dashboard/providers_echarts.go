package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// ChartScale selects the card or the enlarged modal rendering.
type ChartScale string

const (
	ScaleCard     ChartScale = "card"
	ScaleEnlarged ChartScale = "enlarged"
)

const (
	cardChartHeight     = "260px"
	enlargedChartHeight = "420px"

	// Shared tooltip: hovered category name and exact value.
	chartTooltipFormat = "{b}: {c}"
	pieCardLabel       = "{b} {d}%"
	pieEnlargedLabel   = "{b}: {c}"

	lineStrokeColor = "#355872"
	lineMarkerColor = "#7aaace"
)

// ErrEmptyDataset is returned when asked to render a dataset with no points.
var ErrEmptyDataset = errors.New("dashboard: dataset is empty")

var sharedChartCache = NewChartCache(5 * time.Minute)

// ChartRenderer renders server-side chart HTML for a card kind.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer.
func NewChartRenderer(options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: sharedChartCache,
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render converts a dataset into go-echarts markup.
func (r *ChartRenderer) Render(kind ChartKind, title string, dataset ChartDataset, scale ChartScale) (string, error) {
	if dataset.Empty() {
		return "", ErrEmptyDataset
	}
	renderFn := func() (string, error) {
		return r.render(kind, title, dataset, scale)
	}
	if r.cache == nil {
		return renderFn()
	}
	key := fmt.Sprintf("%s:%s:%s", kind, scale, datasetHash(title, dataset))
	return r.cache.GetOrRender(key, renderFn)
}

func (r *ChartRenderer) render(kind ChartKind, title string, dataset ChartDataset, scale ChartScale) (string, error) {
	switch kind {
	case ChartPie:
		return r.renderPieChart(title, dataset, scale)
	case ChartBar:
		return r.renderBarChart(title, dataset, scale)
	case ChartLine:
		return r.renderLineChart(title, dataset, scale)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", kind)
	}
}

func (r *ChartRenderer) renderPieChart(title string, dataset ChartDataset, scale ChartScale) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalChartOptions(title, scale)...)
	label := opts.Label{Show: opts.Bool(true), Formatter: pieCardLabel}
	if scale == ScaleEnlarged {
		label = opts.Label{Show: opts.Bool(true), Formatter: pieEnlargedLabel}
	}
	pie.AddSeries(seriesName(dataset, title), toPieData(dataset.Points), charts.WithLabelOpts(label))
	return renderChart(pie)
}

func (r *ChartRenderer) renderBarChart(title string, dataset ChartDataset, scale ChartScale) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalChartOptions(title, scale)...)
	bar.SetXAxis(pointNames(dataset.Points))
	bar.AddSeries(seriesName(dataset, title), toBarData(dataset.Points))
	return renderChart(bar)
}

func (r *ChartRenderer) renderLineChart(title string, dataset ChartDataset, scale ChartScale) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalChartOptions(title, scale)...)
	line.SetXAxis(pointNames(dataset.Points))
	line.AddSeries(seriesName(dataset, title), toLineData(dataset.Points))
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: lineStrokeColor}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: lineMarkerColor}),
	)
	return renderChart(line)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalChartOptions(title string, scale ChartScale) []charts.GlobalOpts {
	height := cardChartHeight
	if scale == ScaleEnlarged {
		height = enlargedChartHeight
	}
	initOpts := opts.Initialization{
		PageTitle: title,
		Theme:     r.theme,
		Width:     "100%",
		Height:    height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: chartTooltipFormat,
		}),
	}
}

func paletteColor(i int) string {
	return ChartPalette[i%len(ChartPalette)]
}

func seriesName(dataset ChartDataset, fallback string) string {
	if dataset.Label != "" {
		return dataset.Label
	}
	return fallback
}

func pointNames(points []ChartPoint) []string {
	names := make([]string, len(points))
	for i, point := range points {
		names[i] = point.Name
	}
	return names
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{
			Name:      point.Name,
			Value:     point.Value,
			ItemStyle: &opts.ItemStyle{Color: paletteColor(i)},
		}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{
			Name:  point.Name,
			Value: point.Value,
		}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Name
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:      name,
			Value:     point.Value,
			ItemStyle: &opts.ItemStyle{Color: paletteColor(i)},
		}
	}
	return data
}
