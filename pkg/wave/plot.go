package wave

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// WritePlot renders the named series of a recorder into an image file.
// The output format follows the file extension (png, svg, pdf). When no
// names are given, every recorded series is plotted.
func WritePlot(r *Recorder, title, path string, names ...string) error {
	if r.Len() == 0 {
		return errors.New("nothing recorded")
	}
	if len(names) == 0 {
		names = r.Names()
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t (s)"
	p.Legend.Top = true

	times := r.Times()
	for i, name := range names {
		values := r.Series(name)
		if values == nil {
			return errors.Errorf("no series named %q", name)
		}

		xys := make(plotter.XYs, len(values))
		for j := range values {
			xys[j].X = times[j]
			xys[j].Y = values[j]
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return errors.Wrapf(err, "building line for %s", name)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving plot to %s", path)
	}
	return nil
}
