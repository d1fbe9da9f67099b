package analysis

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotActionHistogram saves a bar chart of an action histogram to
// path. The image format is taken from the extension of path.
func PlotActionHistogram(hist []float64, title, path string) error {
	if len(hist) == 0 {
		return errors.New("plotActionHistogram: empty histogram")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Action"
	p.Y.Label.Text = "Count"

	bars, err := plotter.NewBarChart(plotter.Values(hist), vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "plotActionHistogram")
	}
	p.Add(bars)

	names := make([]string, len(hist))
	for i := range names {
		names[i] = fmt.Sprintf("A%d", i)
	}
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "plotActionHistogram")
	}
	return nil
}
