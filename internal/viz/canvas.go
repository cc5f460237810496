package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a dot grid of (Width*2) x (Height*4) pixels backed by braille
// characters.
type Canvas struct {
	Width, Height int
	grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, grid: make([][]rune, h)}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = brailleBlank
		}
	}
}

// Fill sets every pixel in the inclusive rectangle.
func (c *Canvas) Fill(x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.Set(x, y)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// DrawTank draws an open-topped tank with its walls on the canvas edges and
// water filled to the given fraction of its height.
func (c *Canvas) DrawTank(fraction float64) {
	c.Clear()
	pw, ph := c.Width*2, c.Height*4
	if pw < 6 || ph < 3 {
		return
	}

	c.Fill(0, 0, 0, ph-1)
	c.Fill(pw-1, 0, pw-1, ph-1)
	c.Fill(0, ph-1, pw-1, ph-1)

	if math.IsNaN(fraction) || fraction <= 0 {
		return
	}
	fraction = math.Min(fraction, 1)
	inner := ph - 1
	rows := int(math.Round(fraction * float64(inner)))
	if rows == 0 {
		return
	}
	c.Fill(2, ph-1-rows, pw-3, ph-2)
}
