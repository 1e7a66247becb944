package layout

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridPositionsTenCardsTwoColumns(t *testing.T) {
	pts, err := GridPositions(GridSpec{Count: 10, Columns: 2, Width: 0.8, Height: 0.85, RowGap: 0.03, ColumnGap: 0.05})
	require.NoError(t, err)
	require.Len(t, pts, 10)

	assert.InDelta(t, 0.0, pts[0].X, 1e-9)
	assert.InDelta(t, 0.0, pts[0].Y, 1e-9)
	assert.Greater(t, pts[1].X, pts[0].X)
	assert.Equal(t, pts[0].Y, pts[1].Y)
	assert.Equal(t, pts[0].X, pts[2].X)
	assert.Greater(t, pts[2].Y, pts[1].Y)
	assert.Equal(t, pts[1].X, pts[3].X)
	assert.Equal(t, pts[2].Y, pts[3].Y)
}

func TestGridPositionsSpacing(t *testing.T) {
	pts, err := GridPositions(GridSpec{Count: 4, Columns: 2, Width: 1, Height: 1, RowGap: 0.1, ColumnGap: 0.1})
	require.NoError(t, err)
	assert.InDelta(t, 0.55, pts[1].X, 1e-9)
	assert.InDelta(t, 0.55, pts[2].Y, 1e-9)
}

func TestGridPositionsEdges(t *testing.T) {
	pts, err := GridPositions(GridSpec{Count: 0, Columns: 2})
	require.NoError(t, err)
	assert.Empty(t, pts)

	pts, err = GridPositions(GridSpec{Count: 1, Columns: 2, Width: 0.8, Height: 0.85})
	require.NoError(t, err)
	assert.Equal(t, []Point{{X: 0, Y: 0}}, pts)

	_, err = GridPositions(GridSpec{Count: -1, Columns: 2})
	assert.Error(t, err)

	_, err = GridPositions(GridSpec{Count: 10, Columns: 0})
	assert.Error(t, err)
}

func TestCenteredGridPositions(t *testing.T) {
	pts, err := CenteredGridPositions(4, 0.2, 0.25, 0.05, 0.05, 2)
	require.NoError(t, err)
	require.Len(t, pts, 4)
	// grid is 0.45 x 0.55
	assert.InDelta(t, 0.275, pts[0].X, 1e-9)
	assert.InDelta(t, 0.225, pts[0].Y, 1e-9)
	assert.InDelta(t, 0.525, pts[1].X, 1e-9)
}

func TestSizingHelpers(t *testing.T) {
	assert.InDelta(t, 400.0/1920.0, WidthFraction(400, 1920), 1e-9)
	assert.Equal(t, 0.05, WidthFraction(10, 1920))
	assert.Equal(t, 1.0, WidthFraction(4000, 1920))
	assert.Equal(t, 0.2, WidthFraction(400, 0))

	assert.InDelta(t, 0.5, HeightForWidth(1920, 1080, 0.5, 1920, 1080), 1e-9)
	assert.InDelta(t, 16.0/9.0, AspectRatio(1920, 1080), 1e-9)
	assert.Equal(t, 1.0, AspectRatio(10, 0))
}

func TestProbeDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	w, h, format, err := ProbeDimensions(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
	assert.Equal(t, "png", format)

	_, _, _, err = ProbeDimensions(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
