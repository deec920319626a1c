package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"iipviz/internal/model"
)

// UI prints human-readable results. In JSON mode only errors are printed,
// to stderr, so stdout stays machine-readable.
type UI struct {
	out      io.Writer
	errOut   io.Writer
	jsonMode bool

	success *color.Color
	failure *color.Color
	header  *color.Color
	dim     *color.Color
}

// NewUI creates a UI writing to out and errOut
func NewUI(out, errOut io.Writer, jsonMode, noColor bool) *UI {
	ui := &UI{
		out:      out,
		errOut:   errOut,
		jsonMode: jsonMode,
		success:  color.New(color.FgGreen),
		failure:  color.New(color.FgRed),
		header:   color.New(color.FgCyan, color.Bold),
		dim:      color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{ui.success, ui.failure, ui.header, ui.dim} {
			c.DisableColor()
		}
	}
	return ui
}

// Success prints a success message
func (ui *UI) Success(format string, args ...any) {
	if ui.jsonMode {
		return
	}
	ui.success.Fprintf(ui.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message to stderr
func (ui *UI) Error(format string, args ...any) {
	ui.failure.Fprintf(ui.errOut, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Fail prints err and returns it
func (ui *UI) Fail(err error) error {
	ui.Error("%v", err)
	return err
}

// Payload prints the summary sentence and the ranked items
func (ui *UI) Payload(p *model.VisualizationPayload) {
	if ui.jsonMode {
		return
	}
	ui.header.Fprintln(ui.out, p.Text)
	ui.dim.Fprintf(ui.out, "%s · %s · %s\n", p.Metric, p.ChartKind, p.IndustrialType.Label())

	for _, item := range p.Items {
		fmt.Fprintf(ui.out, "%3d. %s", item.Index, item.Name)
		if item.Province != "" {
			ui.dim.Fprintf(ui.out, " (%s)", item.Province)
		}
		var values []string
		if item.Price != nil {
			values = append(values, fmt.Sprintf("%.1f USD/m²", *item.Price))
		}
		if item.Area != nil {
			values = append(values, fmt.Sprintf("%.1f ha", *item.Area))
		}
		if len(values) > 0 {
			fmt.Fprintf(ui.out, "  %s", strings.Join(values, ", "))
		}
		fmt.Fprintln(ui.out)
	}
}

// Provinces prints the province list
func (ui *UI) Provinces(resp *model.ProvincesResponse) {
	if ui.jsonMode {
		return
	}
	ui.header.Fprintf(ui.out, "%d provinces, %d records\n", len(resp.Provinces), resp.Records)
	for _, p := range resp.Provinces {
		fmt.Fprintf(ui.out, "  %s\n", p)
	}
}
