package chart

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/config"
	"go-analytics/internal/features/artifact"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

type Renderer interface {
	Render(ctx context.Context, in RenderInput) (*RenderedChart, error)
}

type PlotRenderer struct {
	Backend *Backend
	Store   artifact.ArtifactStore
	Width   vg.Length
	Height  vg.Length
	Now     func() time.Time
}

func NewRenderer(backend *Backend, store artifact.ArtifactStore, cfg *config.Config) Renderer {
	return &PlotRenderer{
		Backend: backend,
		Store:   store,
		Width:   vg.Points(float64(cfg.ChartWidth)),
		Height:  vg.Points(float64(cfg.ChartHeight)),
		Now:     time.Now,
	}
}

var titleCaser = cases.Title(language.English)

// AxisLabel turns a field name into an axis caption: "total_revenue" -> "Total Revenue".
func AxisLabel(field string) string {
	return titleCaser.String(strings.TrimSpace(strings.ReplaceAll(field, "_", " ")))
}

func (r *PlotRenderer) Render(ctx context.Context, in RenderInput) (*RenderedChart, error) {
	if len(in.Points) == 0 {
		return nil, common_models.NewError(common_models.KindNoValidData, "nothing to plot")
	}
	chartType := NormalizeChartType(in.ChartType)
	if chartType == ChartTypePie && !hasPositive(in.Points) {
		return nil, common_models.NewError(common_models.KindDegenerateChart, "all pie values are zero")
	}

	now := r.Now()
	data, err := r.Backend.Do(func() ([]byte, error) {
		return r.draw(in, chartType, now)
	})
	if err != nil {
		return nil, err
	}

	name, path, err := artifact.PutUnique(ctx, r.Store, "chart", ".png", data, artifact.ContentTypePNG, now)
	if err != nil {
		return nil, common_models.WrapError(common_models.KindRenderError, err, "saving chart")
	}
	return &RenderedChart{FileID: name, Path: path, ChartType: chartType, StorageType: r.Store.Type()}, nil
}

func hasPositive(points []DataPoint) bool {
	for _, p := range points {
		if p.Y > 0 {
			return true
		}
	}
	return false
}

func (r *PlotRenderer) draw(in RenderInput, chartType ChartType, now time.Time) ([]byte, error) {
	p := plot.New()
	p.Title.Text = in.Title
	p.Title.Padding = vg.Points(10)

	labels := make([]string, len(in.Points))
	values := make(plotter.Values, len(in.Points))
	for i, pt := range in.Points {
		labels[i] = pt.Label()
		values[i] = pt.Y
	}

	var err error
	switch chartType {
	case ChartTypePie:
		p.HideAxes()
		p.Add(&pieChart{values: values, labels: labels})
	case ChartTypeLine:
		err = drawLine(p, in, labels)
	case ChartTypeHorizontalBar:
		err = drawBars(p, in.Points, values, labels, true)
		p.X.Label.Text = AxisLabel(in.YLabel)
		p.Y.Label.Text = AxisLabel(in.XLabel)
	default:
		err = drawBars(p, in.Points, values, labels, false)
	}
	if err != nil {
		return nil, err
	}
	if chartType == ChartTypeBar || chartType == ChartTypeLine {
		p.X.Label.Text = AxisLabel(in.XLabel)
		p.Y.Label.Text = AxisLabel(in.YLabel)
	}
	if chartType != ChartTypePie {
		p.Add(plotter.NewGrid())
	}

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)
	p.Draw(dc)
	stamp(dc, p.Title.TextStyle, now)

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func barWidth(n int) vg.Length {
	w := 480.0 / float64(n)
	return vg.Points(math.Max(6, math.Min(40, w)))
}

// xPositions places points on the category axis. Numeric x values are used
// directly; any textual x puts every point at its ordinal position.
func xPositions(points []DataPoint) ([]float64, bool) {
	positions := make([]float64, len(points))
	for i, pt := range points {
		x, ok := pt.X.(float64)
		if !ok {
			for j := range positions {
				positions[j] = float64(j)
			}
			return positions, false
		}
		positions[i] = x
	}
	return positions, true
}

func drawBars(p *plot.Plot, points []DataPoint, values plotter.Values, labels []string, horizontal bool) error {
	positions, numeric := xPositions(points)
	width := barWidth(len(values))

	if numeric {
		for i, v := range values {
			bar, err := plotter.NewBarChart(plotter.Values{v}, width)
			if err != nil {
				return err
			}
			bar.XMin = positions[i]
			styleBars(bar, horizontal)
			p.Add(bar)
		}
	} else {
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		styleBars(bars, horizontal)
		p.Add(bars)
	}

	xys := make(plotter.XYs, len(values))
	captions := make([]string, len(values))
	for i, v := range values {
		if horizontal {
			xys[i] = plotter.XY{X: v, Y: positions[i]}
		} else {
			xys[i] = plotter.XY{X: positions[i], Y: v}
		}
		captions[i] = groupThousands(int64(math.Round(v)))
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: captions})
	if err != nil {
		return err
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].Font.Size = vg.Points(9)
		if horizontal {
			annotations.TextStyle[i].XAlign = draw.XLeft
			annotations.TextStyle[i].YAlign = draw.YCenter
		} else {
			annotations.TextStyle[i].XAlign = draw.XCenter
			annotations.TextStyle[i].YAlign = draw.YBottom
		}
	}
	if horizontal {
		annotations.Offset = vg.Point{X: vg.Points(3)}
		if !numeric {
			p.NominalY(labels...)
		}
	} else {
		annotations.Offset = vg.Point{Y: vg.Points(3)}
		if !numeric {
			p.NominalX(labels...)
			rotateTicks(p)
		}
	}
	p.Add(annotations)
	return nil
}

func styleBars(bars *plotter.BarChart, horizontal bool) {
	bars.Horizontal = horizontal
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
}

func drawLine(p *plot.Plot, in RenderInput, labels []string) error {
	positions, numeric := xPositions(in.Points)

	xys := make(plotter.XYs, len(in.Points))
	for i, pt := range in.Points {
		xys[i] = plotter.XY{X: positions[i], Y: pt.Y}
	}

	line, markers, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	line.Width = vg.Points(2)
	markers.Color = plotutil.Color(0)
	markers.Shape = draw.CircleGlyph{}
	markers.Radius = vg.Points(3)
	p.Add(line, markers)

	if !numeric {
		p.NominalX(labels...)
	}
	rotateTicks(p)
	return nil
}

func rotateTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// stamp writes the generation time into the bottom right corner.
func stamp(dc draw.Canvas, base text.Style, now time.Time) {
	sty := base
	sty.Font.Size = vg.Points(8)
	sty.Color = color.Gray{Y: 120}
	sty.XAlign = draw.XRight
	sty.YAlign = draw.YBottom
	pt := vg.Point{X: dc.Max.X - vg.Points(4), Y: dc.Min.Y + vg.Points(4)}
	dc.FillText(sty, pt, "Generated: "+now.Format("2006-01-02 15:04"))
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
