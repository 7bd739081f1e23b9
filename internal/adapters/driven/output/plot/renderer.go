// Package plot renders projections as PNG scatter plots using gonum/plot.
package plot

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.PlotRenderer = (*Renderer)(nil)

// Marker defaults: a 10pt² circle at 60% opacity.
const (
	DefaultMarkerArea = 10.0
	DefaultOpacity    = 0.6
)

// markerColor is the familiar steel blue used for single-series scatters.
var markerColor = color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4}

// Renderer draws scatter plots with a fixed title, labels and canvas size.
type Renderer struct {
	settings domain.PlotSettings
}

// NewRenderer creates a renderer. Zero-valued settings fall back to the
// pipeline defaults.
func NewRenderer(settings domain.PlotSettings) *Renderer {
	defaults := domain.DefaultPipelineConfig().Plot
	if settings.Title == "" {
		settings.Title = defaults.Title
	}
	if settings.XLabel == "" {
		settings.XLabel = defaults.XLabel
	}
	if settings.YLabel == "" {
		settings.YLabel = defaults.YLabel
	}
	if settings.WidthIn <= 0 {
		settings.WidthIn = defaults.WidthIn
	}
	if settings.HeightIn <= 0 {
		settings.HeightIn = defaults.HeightIn
	}
	if settings.DPI <= 0 {
		settings.DPI = defaults.DPI
	}
	return &Renderer{settings: settings}
}

// Settings returns the effective plot settings.
func (r *Renderer) Settings() domain.PlotSettings {
	return r.settings
}

// PixelSize returns the output image dimensions in pixels.
func (r *Renderer) PixelSize() (width, height int) {
	width = int(math.Round(r.settings.WidthIn * float64(r.settings.DPI)))
	height = int(math.Round(r.settings.HeightIn * float64(r.settings.DPI)))
	return width, height
}

// RenderScatter draws points and writes a PNG to path, creating parent
// directories.
func (r *Renderer) RenderScatter(ctx context.Context, path string, points []domain.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := r.build(points)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.settings.WidthIn)*vg.Inch, vg.Length(r.settings.HeightIn)*vg.Inch),
		vgimg.UseDPI(r.settings.DPI),
	)
	p.Draw(draw.New(c))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

func (r *Renderer) build(points []domain.Point) (*gplot.Plot, error) {
	p := gplot.New()
	p.Title.Text = r.settings.Title
	p.X.Label.Text = r.settings.XLabel
	p.Y.Label.Text = r.settings.YLabel

	if len(points) == 0 {
		return p, nil
	}

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			return nil, fmt.Errorf("%w: point %d is not finite", domain.ErrInvalidInput, i)
		}
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("build scatter: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(math.Sqrt(DefaultMarkerArea / math.Pi))
	scatter.GlyphStyle.Color = withOpacity(markerColor, DefaultOpacity)

	p.Add(scatter)
	return p, nil
}

func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(math.Round(opacity * 255))
	return c
}
