package curve

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/floats"
)

// PlotView selects which coordinate frame a plot is drawn in
type PlotView int

const (
	// ViewData draws observations and the fitted curve in data coordinates.
	ViewData PlotView = iota
	// ViewModelFrame draws (u', v') against f(u'), the residual view.
	ViewModelFrame
)

func (v PlotView) String() string {
	if v == ViewModelFrame {
		return "model-frame"
	}
	return "data"
}

// PlotRenderer draws a fit result as SVG or PNG
type PlotRenderer struct {
	Result       FitResult
	View         PlotView
	Size         float64           // square canvas side in mm
	Margin       float64           // mm between canvas edge and plot area
	Resolution   canvas.Resolution // PNG resolution
	PointRadius  float64           // mm
	CurveWidth   float64           // mm
	CurveSamples int
	CurveMinT    float64
	CurveMaxT    float64
	Simplify     float64 // Douglas-Peucker tolerance in mm; 0 disables
	DataColor    color.NRGBA
	CurveColor   color.NRGBA
}

// NewPlotRenderer creates a renderer with defaults close to a 6in square
// figure at 160 DPI.
func NewPlotRenderer(r FitResult) *PlotRenderer {
	return &PlotRenderer{
		Result:       r,
		View:         ViewData,
		Size:         152.4,
		Margin:       12.0,
		Resolution:   canvas.DPI(160),
		PointRadius:  0.35,
		CurveWidth:   0.5,
		CurveSamples: DefaultCurveSamples,
		CurveMinT:    DefaultCurveMinT,
		CurveMaxT:    DefaultCurveMaxT,
		Simplify:     0.02,
		DataColor:    color.NRGBA{R: 31, G: 119, B: 180, A: 179},
		CurveColor:   color.NRGBA{R: 255, G: 127, B: 14, A: 255},
	}
}

// Title summarizes the fit the same way the report does
func (p *PlotRenderer) Title() string {
	r := p.Result
	return fmt.Sprintf("theta=%.3f deg, M=%.5f, X=%.3f  L1=%.3e, MSE=%.3e",
		r.Params.Theta, r.Params.M, r.Params.X, r.MAE, r.MSE)
}

// nrgbaToRGBA converts color.NRGBA to color.RGBA by premultiplying alpha
// This is needed for the canvas library which expects premultiplied RGBA
func nrgbaToRGBA(c color.NRGBA) color.RGBA {
	if c.A == 0 {
		return color.RGBA{0, 0, 0, 0}
	}
	if c.A == 255 {
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	alpha32 := uint32(c.A)
	return color.RGBA{
		R: uint8((uint32(c.R) * alpha32) / 255),
		G: uint8((uint32(c.G) * alpha32) / 255),
		B: uint8((uint32(c.B) * alpha32) / 255),
		A: c.A,
	}
}

// canvasRenderer is an interface that both svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the plot as an SVG to the provided writer.
// Text needs a loaded font face in tdewolff/canvas, so SVG output carries no title.
func (p *PlotRenderer) RenderToSVG(w io.Writer) error {
	observed, fitted := p.scene()
	if len(observed) == 0 {
		return fmt.Errorf("no points to plot")
	}

	svgRenderer := svg.New(w, p.Size, p.Size, nil)
	p.renderToCanvas(svgRenderer, observed, fitted)
	return svgRenderer.Close()
}

// RenderToPNG writes the plot as a PNG with a title and legend
func (p *PlotRenderer) RenderToPNG(w io.Writer) error {
	observed, fitted := p.scene()
	if len(observed) == 0 {
		return fmt.Errorf("no points to plot")
	}

	rast := rasterizer.New(p.Size, p.Size, p.Resolution, canvas.DefaultColorSpace)
	p.renderToCanvas(rast, observed, fitted)

	black := color.RGBA{0, 0, 0, 255}
	drawText(rast, 8, 16, p.Title(), black)

	// Legend labels sit next to the swatches drawn in renderToCanvas.
	lx, ly := p.legendOrigin()
	px := int(lx*p.Resolution.DPMM()) + 14
	py := int((p.Size-ly)*p.Resolution.DPMM()) + 4
	drawText(rast, px, py, "data", black)
	drawText(rast, px, py+16, "fit", black)

	return png.Encode(w, rast)
}

// SaveFile renders to path, choosing SVG or PNG from the file extension
func (p *PlotRenderer) SaveFile(path string) error {
	var render func(io.Writer) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		render = p.RenderToSVG
	case ".png":
		render = p.RenderToPNG
	default:
		return fmt.Errorf("unsupported plot extension %q (want .png or .svg)", ext)
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating plot file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s plot: %w", p.View, err)
	}
	return f.Close()
}

// scene returns the observed points and the fitted curve in the selected view
func (p *PlotRenderer) scene() (observed, fitted []Point) {
	r := p.Result
	switch p.View {
	case ViewModelFrame:
		observed = make([]Point, len(r.U))
		for i := range r.U {
			observed[i] = Point{X: r.U[i], Y: r.V[i]}
		}
		if len(r.U) == 0 || p.CurveSamples < 2 {
			return observed, nil
		}
		ts := floats.Span(make([]float64, p.CurveSamples), floats.Min(r.U), floats.Max(r.U))
		fitted = make([]Point, len(ts))
		for i, t := range ts {
			fitted[i] = Point{X: t, Y: r.Family.Predict(r.Params.M, t)}
		}
	default:
		observed = r.Points
		lo, hi := CurveWindow(r.U, p.CurveMinT, p.CurveMaxT)
		fitted = r.Family.SampleCurve(r.Params, lo, hi, p.CurveSamples)
	}
	return observed, fitted
}

func (p *PlotRenderer) renderToCanvas(renderer canvasRenderer, observed, fitted []Point) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(p.Size, p.Size), bgStyle, canvas.Identity)

	bound := plotBounds(observed, fitted)
	plotW := p.Size - 2*p.Margin
	plotH := p.Size - 2*p.Margin
	spanX := bound.Max[0] - bound.Min[0]
	spanY := bound.Max[1] - bound.Min[1]

	toCanvas := func(pt Point) (float64, float64) {
		cx := p.Margin + (pt.X-bound.Min[0])/spanX*plotW
		cy := p.Margin + (pt.Y-bound.Min[1])/spanY*plotH
		return cx, cy
	}

	// Grid
	gridStyle := canvas.DefaultStyle
	gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	gridStyle.Stroke = canvas.Paint{Color: color.RGBA{R: 211, G: 211, B: 211, A: 255}}
	gridStyle.StrokeWidth = 0.15
	gridStyle.Dashes = []float64{0.8, 0.8}

	stepX := niceStep(spanX)
	for x := math.Ceil(bound.Min[0]/stepX) * stepX; x <= bound.Max[0]; x += stepX {
		gridPath := &canvas.Path{}
		x1, y1 := toCanvas(Point{X: x, Y: bound.Min[1]})
		x2, y2 := toCanvas(Point{X: x, Y: bound.Max[1]})
		gridPath.MoveTo(x1, y1)
		gridPath.LineTo(x2, y2)
		renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
	}
	stepY := niceStep(spanY)
	for y := math.Ceil(bound.Min[1]/stepY) * stepY; y <= bound.Max[1]; y += stepY {
		gridPath := &canvas.Path{}
		x1, y1 := toCanvas(Point{X: bound.Min[0], Y: y})
		x2, y2 := toCanvas(Point{X: bound.Max[0], Y: y})
		gridPath.MoveTo(x1, y1)
		gridPath.LineTo(x2, y2)
		renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
	}

	// Axes frame
	frameStyle := canvas.DefaultStyle
	frameStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	frameStyle.Stroke = canvas.Paint{Color: canvas.Black}
	frameStyle.StrokeWidth = 0.25
	renderer.RenderPath(canvas.Rectangle(plotW, plotH).Translate(p.Margin, p.Margin), frameStyle, canvas.Identity)

	// Observations
	pointStyle := canvas.DefaultStyle
	pointStyle.Fill = canvas.Paint{Color: nrgbaToRGBA(p.DataColor)}
	pointStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
	for _, pt := range observed {
		cx, cy := toCanvas(pt)
		renderer.RenderPath(canvas.Circle(p.PointRadius).Translate(cx, cy), pointStyle, canvas.Identity)
	}

	// Fitted curve, simplified in canvas space so dropped vertices are sub-pixel
	curveStyle := canvas.DefaultStyle
	curveStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	curveStyle.Stroke = canvas.Paint{Color: nrgbaToRGBA(p.CurveColor)}
	curveStyle.StrokeWidth = p.CurveWidth

	if len(fitted) >= 2 {
		ls := make(orb.LineString, len(fitted))
		for i, pt := range fitted {
			cx, cy := toCanvas(pt)
			ls[i] = orb.Point{cx, cy}
		}
		ls = simplifyLine(ls, p.Simplify)

		cp := &canvas.Path{}
		for i, pt := range ls {
			if i == 0 {
				cp.MoveTo(pt[0], pt[1])
			} else {
				cp.LineTo(pt[0], pt[1])
			}
		}
		renderer.RenderPath(cp, curveStyle, canvas.Identity)
	}

	// Legend swatches
	lx, ly := p.legendOrigin()
	renderer.RenderPath(canvas.Circle(1.0).Translate(lx+2, ly), pointStyle, canvas.Identity)
	swatch := &canvas.Path{}
	swatch.MoveTo(lx, ly-2.5)
	swatch.LineTo(lx+4, ly-2.5)
	renderer.RenderPath(swatch, curveStyle, canvas.Identity)
}

// legendOrigin returns the legend anchor in canvas coordinates (y up)
func (p *PlotRenderer) legendOrigin() (float64, float64) {
	return p.Margin + 3, p.Size - p.Margin - 4
}

// plotBounds returns the padded bounding box of everything drawn. Degenerate
// extents are widened so the canvas mapping never divides by zero.
func plotBounds(sets ...[]Point) orb.Bound {
	var mp orb.MultiPoint
	for _, set := range sets {
		for _, pt := range set {
			mp = append(mp, orb.Point{pt.X, pt.Y})
		}
	}
	b := mp.Bound()

	padX := 0.05 * (b.Max[0] - b.Min[0])
	padY := 0.05 * (b.Max[1] - b.Min[1])
	if padX == 0 {
		padX = 1
	}
	if padY == 0 {
		padY = 1
	}
	return orb.Bound{
		Min: orb.Point{b.Min[0] - padX, b.Min[1] - padY},
		Max: orb.Point{b.Max[0] + padX, b.Max[1] + padY},
	}
}

// simplifyLine drops vertices closer than tolerance to the running chord.
// Endpoints are always kept.
func simplifyLine(ls orb.LineString, tolerance float64) orb.LineString {
	if tolerance <= 0 || len(ls) < 3 {
		return ls
	}
	simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(ls.Clone()).(orb.LineString)
	if !ok || len(simplified) < 2 {
		return ls
	}
	return simplified
}

// niceStep picks a 1, 2 or 5 times power-of-ten grid step giving roughly
// five to ten lines across span.
func niceStep(span float64) float64 {
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 1
	}
	raw := span / 6
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm < 1.5:
		return mag
	case norm < 3.5:
		return 2 * mag
	case norm < 7.5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// drawText renders text onto an image at the specified pixel position
func drawText(img draw.Image, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
