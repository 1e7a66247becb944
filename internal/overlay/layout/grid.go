package layout

import (
	"fmt"
	"math"
)

// Point is a top-left position as fractions of the overlay.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GridSpec describes a grid that fills Width x Height of the overlay.
type GridSpec struct {
	Count     int
	Columns   int
	Width     float64
	Height    float64
	RowGap    float64
	ColumnGap float64
}

// Cell returns the size of one grid cell for spec.
func (g GridSpec) Cell() (w, h float64) {
	if g.Columns <= 0 || g.Count <= 0 {
		return 0, 0
	}
	rows := int(math.Ceil(float64(g.Count) / float64(g.Columns)))
	w = (g.Width - float64(g.Columns-1)*g.ColumnGap) / float64(g.Columns)
	h = (g.Height - float64(rows-1)*g.RowGap) / float64(rows)
	return w, h
}

// GridPositions lays Count cells out row-major starting at (0, 0). Gaps sit
// between cells only.
func GridPositions(g GridSpec) ([]Point, error) {
	if g.Count < 0 {
		return nil, fmt.Errorf("count must be non-negative, got %d", g.Count)
	}
	if g.Count == 0 {
		return []Point{}, nil
	}
	if g.Columns <= 0 {
		return nil, fmt.Errorf("columns must be positive, got %d", g.Columns)
	}
	cw, ch := g.Cell()
	out := make([]Point, g.Count)
	for i := range out {
		col := i % g.Columns
		row := i / g.Columns
		out[i] = Point{
			X: float64(col) * (cw + g.ColumnGap),
			Y: float64(row) * (ch + g.RowGap),
		}
	}
	return out, nil
}

// CenteredGridPositions lays out count cells of a fixed size and shifts the
// grid so it is centered on the overlay.
func CenteredGridPositions(count int, cellW, cellH, rowGap, colGap float64, columns int) ([]Point, error) {
	if count < 0 {
		return nil, fmt.Errorf("count must be non-negative, got %d", count)
	}
	if count == 0 {
		return []Point{}, nil
	}
	if columns <= 0 {
		return nil, fmt.Errorf("columns must be positive, got %d", columns)
	}
	usedCols := columns
	if count < columns {
		usedCols = count
	}
	rows := int(math.Ceil(float64(count) / float64(columns)))
	spec := GridSpec{
		Count:     count,
		Columns:   columns,
		Width:     float64(columns)*cellW + float64(columns-1)*colGap,
		Height:    float64(rows)*cellH + float64(rows-1)*rowGap,
		RowGap:    rowGap,
		ColumnGap: colGap,
	}
	pts, err := GridPositions(spec)
	if err != nil {
		return nil, err
	}
	usedW := float64(usedCols)*cellW + float64(usedCols-1)*colGap
	offX := (1 - usedW) / 2
	offY := (1 - spec.Height) / 2
	for i := range pts {
		pts[i].X += offX
		pts[i].Y += offY
	}
	return pts, nil
}
