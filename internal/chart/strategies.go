package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"iipviz/internal/model"
)

var (
	priceColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	areaColor  = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
)

func metricColor(metric model.Metric) color.Color {
	if metric == model.MetricArea {
		return areaColor
	}
	return priceColor
}

// series extracts the values and labels of items in rank order.
// Items without a value read as 0; Render never passes them to single-metric strategies.
func series(items []model.RankedRecord, metric model.Metric) (plotter.Values, []string, float64) {
	values := make(plotter.Values, len(items))
	labels := make([]string, len(items))
	max := 0.0
	for i, it := range items {
		if v := it.Value(metric); v != nil {
			values[i] = *v
			max = math.Max(max, *v)
		}
		labels[i] = ItemLabel(it)
	}
	return values, labels, max
}

func barWidth(n int) vg.Length {
	w := 560 / float64(n)
	return vg.Points(math.Max(12, math.Min(48, w)))
}

// headroom leaves space above the tallest bar for its annotation
func headroom(max float64) float64 {
	if max <= 0 {
		return 1
	}
	return max * 1.15
}

func horizontalGrid() *plotter.Grid {
	g := plotter.NewGrid()
	g.Vertical.Color = nil
	return g
}

func slantTickLabels(a *plot.Axis) {
	a.Tick.Label.Rotation = math.Pi / 6
	a.Tick.Label.XAlign = draw.XRight
	a.Tick.Label.YAlign = draw.YCenter
}

// valueLabels annotates each point with its formatted value
func valueLabels(xys []plotter.XY, texts []string, xAlign text.XAlignment, yAlign text.YAlignment, offset vg.Point) (*plotter.Labels, error) {
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = xAlign
		lbl.TextStyle[i].YAlign = yAlign
		lbl.TextStyle[i].Font.Size = vg.Points(9)
	}
	lbl.Offset = offset
	return lbl, nil
}

// drawBar draws vertical bars, rank 1 on the left
func drawBar(p *plot.Plot, items []model.RankedRecord, metric model.Metric) error {
	values, labels, max := series(items, metric)

	bars, err := plotter.NewBarChart(values, barWidth(len(items)))
	if err != nil {
		return err
	}
	bars.Color = metricColor(metric)
	bars.LineStyle.Width = vg.Length(0)

	xys := make([]plotter.XY, len(values))
	texts := make([]string, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
		texts[i] = FormatValue(metric, v)
	}
	annotations, err := valueLabels(xys, texts, text.XCenter, text.YBottom, vg.Point{Y: vg.Points(3)})
	if err != nil {
		return err
	}

	p.Add(horizontalGrid(), bars, annotations)
	p.NominalX(labels...)
	slantTickLabels(&p.X)
	p.Y.Label.Text = AxisLabel(metric)
	p.Y.Min = 0
	p.Y.Max = headroom(max)
	return nil
}

// drawHorizontalBar draws horizontal bars with rank 1 on top
func drawHorizontalBar(p *plot.Plot, items []model.RankedRecord, metric model.Metric) error {
	ranked, rankedLabels, max := series(items, metric)

	// The y axis grows upwards, so rank 1 takes the highest position
	n := len(ranked)
	values := make(plotter.Values, n)
	labels := make([]string, n)
	xys := make([]plotter.XY, n)
	texts := make([]string, n)
	for i, v := range ranked {
		pos := n - 1 - i
		values[pos] = v
		labels[pos] = rankedLabels[i]
		xys[pos] = plotter.XY{X: v, Y: float64(pos)}
		texts[pos] = FormatValue(metric, v)
	}

	bars, err := plotter.NewBarChart(values, barWidth(n))
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.Color = metricColor(metric)
	bars.LineStyle.Width = vg.Length(0)

	annotations, err := valueLabels(xys, texts, text.XLeft, text.YCenter, vg.Point{X: vg.Points(4)})
	if err != nil {
		return err
	}

	grid := plotter.NewGrid()
	grid.Horizontal.Color = nil
	p.Add(grid, bars, annotations)
	p.NominalY(labels...)
	p.X.Label.Text = AxisLabel(metric)
	p.X.Min = 0
	p.X.Max = headroom(max)
	return nil
}

// drawLine connects the values in rank order
func drawLine(p *plot.Plot, items []model.RankedRecord, metric model.Metric) error {
	values, labels, max := series(items, metric)

	xys := make(plotter.XYs, len(values))
	texts := make([]string, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
		texts[i] = FormatValue(metric, v)
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = metricColor(metric)
	line.Width = vg.Points(2)
	points.GlyphStyle.Color = metricColor(metric)
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(3)

	annotations, err := valueLabels(xys, texts, text.XCenter, text.YBottom, vg.Point{Y: vg.Points(6)})
	if err != nil {
		return err
	}

	p.Add(horizontalGrid(), line, points, annotations)
	p.NominalX(labels...)
	slantTickLabels(&p.X)
	p.X.Min = -0.5
	p.X.Max = float64(len(values)) - 0.5
	p.Y.Label.Text = AxisLabel(metric)
	p.Y.Min = 0
	p.Y.Max = headroom(max)
	return nil
}

// drawPie draws slices clockwise from 12 o'clock in rank order
func drawPie(p *plot.Plot, items []model.RankedRecord, metric model.Metric) error {
	values, labels, _ := series(items, metric)

	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return ErrInsufficientData
	}

	pie := &pieChart{
		values: values,
		ranks:  make([]int, len(items)),
		colors: make([]color.Color, len(items)),
		style:  p.X.Tick.Label,
	}
	pie.style.Font.Size = vg.Points(11)
	pie.style.Rotation = 0

	for i, it := range items {
		pie.ranks[i] = it.Rank
		pie.colors[i] = plotutil.Color(i)
		share := math.Max(values[i], 0) / total * 100
		p.Legend.Add(fmt.Sprintf("%s: %s (%.1f%%)", labels[i], FormatValue(metric, values[i]), share), swatch{pie.colors[i]})
	}

	p.HideAxes()
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(10)
	p.Add(pie)
	return nil
}

// pieChart is a plot.Plotter drawing one wedge per value
type pieChart struct {
	values []float64
	ranks  []int
	colors []color.Color
	style  text.Style
}

// Plot implements plot.Plotter. The pie sits in the left part of the data
// area so the legend on the right does not cover it.
func (pc *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	total := 0.0
	for _, v := range pc.values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return
	}

	width, height := c.Max.X-c.Min.X, c.Max.Y-c.Min.Y
	center := vg.Point{X: c.Min.X + width*0.32, Y: c.Min.Y + height/2}
	radius := vg.Length(math.Min(float64(width)*0.28, float64(height)*0.42))

	outline := draw.LineStyle{Color: color.White, Width: vg.Points(1)}
	angle := math.Pi / 2
	for i, v := range pc.values {
		if v <= 0 {
			continue
		}
		sweep := v / total * 2 * math.Pi
		start := angle - sweep

		var wedge vg.Path
		wedge.Move(center)
		wedge.Line(polar(center, radius, start))
		wedge.Arc(center, radius, start, sweep)
		wedge.Close()

		c.SetColor(pc.colors[i])
		c.Fill(wedge)
		c.SetLineStyle(outline)
		c.Stroke(wedge)

		mid := start + sweep/2
		sty := pc.style
		sty.YAlign = text.YCenter
		if math.Cos(mid) >= 0 {
			sty.XAlign = text.XLeft
		} else {
			sty.XAlign = text.XRight
		}
		c.FillText(sty, polar(center, radius+vg.Points(8), mid), fmt.Sprintf("%d", pc.ranks[i]))

		angle = start
	}
}

// DataRange implements plot.DataRanger with a fixed unit square
func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1, 1, -1, 1
}

func polar(center vg.Point, r vg.Length, angle float64) vg.Point {
	return vg.Point{
		X: center.X + r*vg.Length(math.Cos(angle)),
		Y: center.Y + r*vg.Length(math.Sin(angle)),
	}
}

// swatch is a legend thumbnail filled with one color
type swatch struct {
	color color.Color
}

// Thumbnail implements plot.Thumbnailer
func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}

// drawDual draws grouped price and area bars. Area is rescaled onto the
// price axis and its own scale is drawn along the right edge.
func drawDual(p *plot.Plot, items []model.RankedRecord, _ model.Metric) error {
	prices, labels, priceMax := series(items, model.MetricPrice)
	areas, _, areaMax := series(items, model.MetricArea)

	scale := 1.0
	if priceMax > 0 && areaMax > 0 {
		scale = priceMax / areaMax
	}
	scaled := make(plotter.Values, len(areas))
	for i, v := range areas {
		scaled[i] = v * scale
	}

	w := barWidth(len(items)) * 0.8
	priceBars, err := plotter.NewBarChart(prices, w)
	if err != nil {
		return err
	}
	priceBars.Color = priceColor
	priceBars.LineStyle.Width = vg.Length(0)
	priceBars.Offset = -w / 2

	areaBars, err := plotter.NewBarChart(scaled, w)
	if err != nil {
		return err
	}
	areaBars.Color = areaColor
	areaBars.LineStyle.Width = vg.Length(0)
	areaBars.Offset = w / 2

	var priceXYs, areaXYs []plotter.XY
	var priceTexts, areaTexts []string
	for i, it := range items {
		if it.Price != nil {
			priceXYs = append(priceXYs, plotter.XY{X: float64(i), Y: *it.Price})
			priceTexts = append(priceTexts, FormatValue(model.MetricPrice, *it.Price))
		}
		if it.Area != nil {
			areaXYs = append(areaXYs, plotter.XY{X: float64(i), Y: *it.Area * scale})
			areaTexts = append(areaTexts, FormatValue(model.MetricArea, *it.Area))
		}
	}

	p.Add(horizontalGrid(), priceBars, areaBars)
	for _, s := range []struct {
		xys    []plotter.XY
		texts  []string
		offset vg.Length
	}{
		{priceXYs, priceTexts, -w / 2},
		{areaXYs, areaTexts, w / 2},
	} {
		if len(s.xys) == 0 {
			continue
		}
		lbl, err := valueLabels(s.xys, s.texts, text.XCenter, text.YBottom, vg.Point{X: s.offset, Y: vg.Points(3)})
		if err != nil {
			return err
		}
		p.Add(lbl)
	}

	p.Legend.Add(AxisLabel(model.MetricPrice), priceBars)
	p.Legend.Add(AxisLabel(model.MetricArea), areaBars)
	p.Legend.Top = true

	p.NominalX(labels...)
	slantTickLabels(&p.X)
	p.Y.Min = 0
	p.Y.Max = headroom(math.Max(priceMax, areaMax*scale))

	switch {
	case priceMax > 0 && areaMax > 0:
		p.Y.Label.Text = AxisLabel(model.MetricPrice)
		p.X.Max = float64(len(items)) + 0.4 // room for the right-hand scale
		axisStyle := p.Y.Tick.Label
		p.Add(&rightAxis{max: areaMax, scale: scale, title: AxisLabel(model.MetricArea), style: axisStyle, line: p.Y.LineStyle})
	case priceMax > 0:
		p.Y.Label.Text = AxisLabel(model.MetricPrice)
	default:
		p.Y.Label.Text = AxisLabel(model.MetricArea)
	}
	return nil
}

// rightAxis draws the area scale of a dual chart along the right edge of the data area
type rightAxis struct {
	max   float64
	scale float64
	title string
	style text.Style
	line  draw.LineStyle
}

// Plot implements plot.Plotter
func (a *rightAxis) Plot(c draw.Canvas, plt *plot.Plot) {
	_, trY := plt.Transforms(&c)
	x := c.Max.X

	c.StrokeLine2(a.line, x, c.Min.Y, x, c.Max.Y)

	sty := a.style
	sty.Rotation = 0
	sty.XAlign = text.XRight
	sty.YAlign = text.YCenter
	for _, t := range (plot.DefaultTicks{}).Ticks(0, a.max) {
		if t.Label == "" {
			continue
		}
		y := trY(t.Value * a.scale)
		if y < c.Min.Y || y > c.Max.Y {
			continue
		}
		c.StrokeLine2(a.line, x-vg.Points(4), y, x, y)
		c.FillText(sty, vg.Point{X: x - vg.Points(6), Y: y}, t.Label)
	}

	sty.YAlign = text.YTop
	c.FillText(sty, vg.Point{X: x - vg.Points(6), Y: c.Max.Y}, a.title)
}
