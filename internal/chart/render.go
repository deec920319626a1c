package chart

import (
	"bytes"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// footerHeight is reserved below the plot for the credit line
var footerHeight = vg.Points(26)

// encode draws p above the footer and returns the PNG bytes
func (d *Dispatcher) encode(p *plot.Plot) ([]byte, error) {
	img := vgimg.New(d.opts.Width, d.opts.Height)
	dc := draw.New(img)

	p.Draw(draw.Crop(dc, 0, 0, footerHeight, 0))

	sty := p.Title.TextStyle
	sty.Font.Size = vg.Points(10)
	sty.Color = color.Gray{Y: 0x55}
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter
	sty.Rotation = 0

	now := d.opts.Now().In(d.opts.Location)
	dc.FillText(sty, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Min.Y + footerHeight/2}, Footer(now))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
