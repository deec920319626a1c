// Package chart renders ranked records as PNG charts. One strategy exists per
// (metric, chart kind) pair; every drawn element carries the record's rank.
package chart

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"iipviz/internal/model"
)

// ErrInsufficientData is returned when no record has a value to plot
var ErrInsufficientData = errors.New("no plottable values")

// MIMETypePNG is the only output format
const MIMETypePNG = "image/png"

// Options configures the dispatcher
type Options struct {
	MaxItems     int // single-metric charts
	DualMaxItems int // dual-axis charts
	Width        vg.Length
	Height       vg.Length
	// Now stamps the footer; tests inject a fixed clock
	Now      func() time.Time
	Location *time.Location
}

// DefaultOptions returns the production settings
func DefaultOptions() Options {
	return Options{
		MaxItems:     15,
		DualMaxItems: 10,
		Width:        14 * vg.Inch,
		Height:       9 * vg.Inch,
		Now:          time.Now,
		Location:     time.FixedZone("ICT", 7*60*60),
	}
}

// Request is everything a strategy needs to draw
type Request struct {
	Metric     model.Metric
	Kind       model.ChartKind
	TargetType model.TargetType
	Province   string
	Records    []model.RankedRecord
}

// Artifact is a rendered chart
type Artifact struct {
	Kind     model.ChartKind
	Metric   model.Metric
	MIMEType string
	Data     []byte
	// Items is the number of ranked records drawn, always the lowest ranks
	Items int
}

// Base64 returns the image encoded for the JSON payload
func (a *Artifact) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

type strategyKey struct {
	metric model.Metric
	kind   model.ChartKind
}

// strategy adds the plotters for items to p
type strategy func(p *plot.Plot, items []model.RankedRecord, metric model.Metric) error

// Dispatcher selects and runs the strategy for a request
type Dispatcher struct {
	opts       Options
	strategies map[strategyKey]strategy
}

// NewDispatcher creates a dispatcher; zero option fields take their defaults
func NewDispatcher(opts Options) *Dispatcher {
	def := DefaultOptions()
	if opts.MaxItems <= 0 {
		opts.MaxItems = def.MaxItems
	}
	if opts.DualMaxItems <= 0 {
		opts.DualMaxItems = def.DualMaxItems
	}
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	if opts.Location == nil {
		opts.Location = def.Location
	}

	d := &Dispatcher{opts: opts, strategies: make(map[strategyKey]strategy)}
	for _, m := range []model.Metric{model.MetricPrice, model.MetricArea} {
		d.strategies[strategyKey{m, model.ChartBar}] = drawBar
		d.strategies[strategyKey{m, model.ChartHorizontalBar}] = drawHorizontalBar
		d.strategies[strategyKey{m, model.ChartLine}] = drawLine
		d.strategies[strategyKey{m, model.ChartPie}] = drawPie
	}
	d.strategies[strategyKey{model.MetricDual, model.ChartBar}] = drawDual
	return d
}

// Resolve maps a requested pair onto one with a strategy. Dual has only the
// grouped bar form: a pie is drawn over area, other kinds become bars.
func Resolve(metric model.Metric, kind model.ChartKind) (model.Metric, model.ChartKind) {
	if metric != model.MetricDual {
		return metric, kind
	}
	switch kind {
	case model.ChartPie:
		return model.MetricArea, model.ChartPie
	default:
		return model.MetricDual, model.ChartBar
	}
}

// Limit returns how many ranked records a chart of metric draws
func (d *Dispatcher) Limit(metric model.Metric) int {
	if metric == model.MetricDual {
		return d.opts.DualMaxItems
	}
	return d.opts.MaxItems
}

// Render draws the request. Records without a value for the metric are
// skipped; the remaining ones keep their ranks as labels.
func (d *Dispatcher) Render(req Request) (*Artifact, error) {
	metric, kind := Resolve(req.Metric, req.Kind)
	strat, ok := d.strategies[strategyKey{metric, kind}]
	if !ok {
		return nil, fmt.Errorf("no chart strategy for %s/%s", metric, kind)
	}

	items := make([]model.RankedRecord, 0, len(req.Records))
	for _, r := range req.Records {
		if r.HasValue(metric) {
			items = append(items, r)
		}
	}
	if len(items) == 0 {
		return nil, ErrInsufficientData
	}
	if limit := d.Limit(metric); len(items) > limit {
		items = items[:limit]
	}

	p := plot.New()
	p.Title.Text = Title(metric, req.TargetType, req.Province)
	p.Title.TextStyle.Font.Size = vg.Points(16)
	if err := strat(p, items, metric); err != nil {
		return nil, err
	}

	data, err := d.encode(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}

	return &Artifact{
		Kind:     kind,
		Metric:   metric,
		MIMEType: MIMETypePNG,
		Data:     data,
		Items:    len(items),
	}, nil
}
