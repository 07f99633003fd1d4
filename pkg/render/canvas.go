package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
)

// canvas strokes antialiased paths onto an imaging background.
type canvas struct {
	dc *gg.Context
}

func newCanvas(width, height int, bg color.Color) *canvas {
	dc := gg.NewContextForImage(imaging.New(width, height, bg))
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	return &canvas{dc: dc}
}

// segments strokes every a-b pair as one path so overlaps do not darken.
func (c *canvas) segments(pairs [][2]orb.Point, width float64, col color.Color) {
	if len(pairs) == 0 {
		return
	}
	for _, s := range pairs {
		c.dc.MoveTo(s[0][0], s[0][1])
		c.dc.LineTo(s[1][0], s[1][1])
	}
	c.stroke(width, col)
}

// polyline strokes pts as a single joined path.
func (c *canvas) polyline(pts []orb.Point, width float64, col color.Color) {
	if len(pts) < 2 {
		return
	}
	c.dc.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		c.dc.LineTo(p[0], p[1])
	}
	c.stroke(width, col)
}

func (c *canvas) stroke(width float64, col color.Color) {
	c.dc.SetLineWidth(width)
	c.dc.SetColor(col)
	c.dc.Stroke()
}

// disc fills a circle of radius r centred on p.
func (c *canvas) disc(p orb.Point, r float64, col color.Color) {
	c.dc.DrawCircle(p[0], p[1], r)
	c.dc.SetColor(col)
	c.dc.Fill()
}

func (c *canvas) image() *image.NRGBA {
	return imaging.Clone(c.dc.Image())
}
