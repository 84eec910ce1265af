package curve

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdewolff/canvas"
)

func newTestRenderer(view PlotView) *PlotRenderer {
	r := NewPlotRenderer(fitFixture())
	r.View = view
	r.Resolution = canvas.DPI(40)
	r.CurveSamples = 200
	return r
}

func TestPlotRenderer_Title(t *testing.T) {
	r := NewPlotRenderer(fitFixture())
	title := r.Title()
	assert.True(t, strings.HasPrefix(title, "theta=30.000 deg, M=0.02000, X=55.000"), title)
	assert.Contains(t, title, "MSE=")
}

func TestRenderToSVG(t *testing.T) {
	for _, view := range []PlotView{ViewData, ViewModelFrame} {
		t.Run(view.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, newTestRenderer(view).RenderToSVG(&buf))

			out := buf.String()
			assert.Contains(t, out, "<svg")
			assert.Contains(t, out, "</svg>")
			assert.Contains(t, out, "<path")
		})
	}
}

func TestRenderToPNG(t *testing.T) {
	r := newTestRenderer(ViewData)

	var buf bytes.Buffer
	require.NoError(t, r.RenderToPNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, b.Dx(), b.Dy(), "plot is square")
	assert.Greater(t, b.Dx(), 100)

	// Corner pixel is the white background.
	cr, cg, cb, _ := img.At(b.Max.X-1, b.Max.Y-1).RGBA()
	assert.Equal(t, uint32(0xffff), cr)
	assert.Equal(t, uint32(0xffff), cg)
	assert.Equal(t, uint32(0xffff), cb)
}

func TestRender_EmptyResult(t *testing.T) {
	r := NewPlotRenderer(FitResult{Family: DefaultModelFamily()})

	assert.Error(t, r.RenderToSVG(&bytes.Buffer{}))
	assert.Error(t, r.RenderToPNG(&bytes.Buffer{}))

	r.View = ViewModelFrame
	assert.Error(t, r.RenderToSVG(&bytes.Buffer{}))
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	r := newTestRenderer(ViewData)

	svgPath := filepath.Join(dir, "plots", "fit_plot.svg")
	require.NoError(t, r.SaveFile(svgPath))
	info, err := os.Stat(svgPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	pngPath := filepath.Join(dir, "fit_plot.PNG")
	require.NoError(t, r.SaveFile(pngPath))
	_, err = os.Stat(pngPath)
	assert.NoError(t, err)

	err = r.SaveFile(filepath.Join(dir, "fit_plot.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported plot extension")
}

func TestScene_DataViewClipsCurveToWindow(t *testing.T) {
	r := newTestRenderer(ViewData)
	observed, fitted := r.scene()

	assert.Len(t, observed, len(r.Result.Points))
	require.Len(t, fitted, r.CurveSamples)

	// The fixture spans exactly [6, 60] in the model frame, so the curve
	// endpoints coincide with the first and last observation.
	assertPointNear(t, r.Result.Points[0], fitted[0])
	assertPointNear(t, r.Result.Points[len(r.Result.Points)-1], fitted[len(fitted)-1])
}

func TestScene_ModelFrameView(t *testing.T) {
	r := newTestRenderer(ViewModelFrame)
	observed, fitted := r.scene()

	require.Len(t, observed, len(r.Result.U))
	assert.Equal(t, Point{X: r.Result.U[0], Y: r.Result.V[0]}, observed[0])
	require.Len(t, fitted, r.CurveSamples)
	for _, pt := range fitted {
		assert.Equal(t, r.Result.Family.Predict(r.Result.Params.M, pt.X), pt.Y)
	}
}

func TestPlotBounds(t *testing.T) {
	b := plotBounds([]Point{{X: 0, Y: 0}, {X: 10, Y: 20}}, nil)
	assert.InDelta(t, -0.5, b.Min[0], 1e-12)
	assert.InDelta(t, 10.5, b.Max[0], 1e-12)
	assert.InDelta(t, -1, b.Min[1], 1e-12)
	assert.InDelta(t, 21, b.Max[1], 1e-12)

	single := plotBounds([]Point{{X: 3, Y: 4}})
	assert.Equal(t, orb.Bound{Min: orb.Point{2, 3}, Max: orb.Point{4, 5}}, single)
}

func TestSimplifyLine(t *testing.T) {
	straight := orb.LineString{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}
	got := simplifyLine(straight, 0.01)
	assert.Equal(t, orb.LineString{{0, 0}, {4, 4}}, got)
	assert.Len(t, straight, 5, "input is not modified")

	zigzag := orb.LineString{{0, 0}, {1, 5}, {2, 0}}
	assert.Equal(t, zigzag, simplifyLine(zigzag, 0.01))

	assert.Equal(t, straight, simplifyLine(straight, 0), "zero tolerance disables")
}

func TestNiceStep(t *testing.T) {
	tests := []struct {
		span float64
		want float64
	}{
		{span: 6, want: 1},
		{span: 12, want: 2},
		{span: 30, want: 5},
		{span: 54, want: 10},
		{span: 0.06, want: 0.01},
		{span: 0, want: 1},
		{span: -3, want: 1},
	}

	for _, tc := range tests {
		assert.InDelta(t, tc.want, niceStep(tc.span), tc.want*1e-9, "span %g", tc.span)
	}
}

func TestNRGBAToRGBA(t *testing.T) {
	r := NewPlotRenderer(FitResult{})
	got := nrgbaToRGBA(r.CurveColor)
	assert.Equal(t, uint8(255), got.A)
	assert.Equal(t, r.CurveColor.R, got.R)

	half := nrgbaToRGBA(r.DataColor)
	assert.Equal(t, r.DataColor.A, half.A)
	assert.LessOrEqual(t, half.R, half.A, "premultiplied channels never exceed alpha")
	assert.LessOrEqual(t, half.B, half.A)
}
