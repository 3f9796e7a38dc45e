package chart

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart draws slices counter-clockwise from twelve o'clock. Non-positive
// values get no slice.
type pieChart struct {
	values []float64
	labels []string
}

func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	var total float64
	for _, v := range pc.values {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return
	}

	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	radius := c.Max.X - c.Min.X
	if h := c.Max.Y - c.Min.Y; h < radius {
		radius = h
	}
	radius = radius / 2 * 0.7

	sty := plt.Title.TextStyle
	sty.Font.Size = vg.Points(10)
	sty.YAlign = draw.YCenter

	start := math.Pi / 2
	for i, v := range pc.values {
		if v <= 0 {
			continue
		}
		sweep := 2 * math.Pi * v / total

		var slice vg.Path
		slice.Move(center)
		slice.Arc(center, radius, start, sweep)
		slice.Close()
		c.SetColor(plotutil.Color(i))
		c.Fill(slice)

		mid := start + sweep/2
		cos, sin := math.Cos(mid), math.Sin(mid)
		at := vg.Point{
			X: center.X + radius*1.12*vg.Length(cos),
			Y: center.Y + radius*1.12*vg.Length(sin),
		}
		if cos >= 0 {
			sty.XAlign = draw.XLeft
		} else {
			sty.XAlign = draw.XRight
		}
		c.FillText(sty, at, fmt.Sprintf("%s (%.1f%%)", pc.labels[i], 100*v/total))

		start += sweep
	}
}
