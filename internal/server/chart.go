package server

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"github.com/iwvelando/gearing-dashboard/internal/gearing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var errNoPoints = errors.New("section has no values to plot")

// renderChart draws a section series as a PNG line chart. Ratio sections plot
// the ratio, all others plot the amount in trillions.
func renderChart(section gearing.SectionResult) ([]byte, error) {
	var (
		points plotter.XYs
		labels []string
	)
	for _, row := range section.Rows {
		y := row.AmountT
		if section.Section.Kind == gearing.KindRatio {
			y = row.Ratio
		}
		if !y.Valid {
			continue
		}
		points = append(points, plotter.XY{X: float64(len(points)), Y: y.Value})
		labels = append(labels, row.Label)
	}
	if len(points) == 0 {
		return nil, errNoPoints
	}

	p := plot.New()
	p.Title.Text = section.Section.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Periode"
	p.Y.Label.Text = "Triliun Rupiah"
	if section.Section.Kind == gearing.KindRatio {
		p.Y.Label.Text = "Gearing Ratio (x)"
	}
	p.NominalX(labels...)
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("failed to build line: %w", err)
	}
	line.Width = vg.Points(2)
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(line)

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return nil, fmt.Errorf("failed to build markers: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)

	writer, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
