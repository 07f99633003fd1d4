package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/paulmach/orb"

	"network_analysis/pkg/geo"
	"network_analysis/pkg/graph"
)

// Options controls how a graph and its routes are drawn.
type Options struct {
	Width, Height int // output size in pixels
	Padding       int // pixels kept free around the network

	Background color.Color
	EdgeColor  color.Color
	EdgeWidth  float64
	NodeColor  color.Color
	NodeSize   float64 // diameter in pixels, 0 hides nodes

	RouteColors []color.Color // cycled when there are more routes than colors
	RouteWidth  float64

	// Supersample draws at this multiple of the output size and scales
	// down with a Lanczos filter to smooth lines.
	Supersample int
}

// DefaultOptions returns a dark map with grey roads and red and yellow
// routes.
func DefaultOptions() Options {
	return Options{
		Width:       1200,
		Height:      1200,
		Padding:     20,
		Background:  color.NRGBA{0x11, 0x11, 0x11, 0xff},
		EdgeColor:   color.NRGBA{0x99, 0x99, 0x99, 0xff},
		EdgeWidth:   1,
		NodeColor:   color.NRGBA{0xff, 0xff, 0xff, 0xff},
		NodeSize:    0,
		RouteColors: []color.Color{color.NRGBA{0xff, 0x00, 0x00, 0xff}, color.NRGBA{0xff, 0xff, 0x00, 0xff}},
		RouteWidth:  6,
		Supersample: 2,
	}
}

// Image draws every edge of g, then each route (a node index sequence) on
// top in its own color.
func Image(g *graph.Graph, routes [][]uint32, opts Options) (*image.NRGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	ss := max(opts.Supersample, 1)

	c := newCanvas(opts.Width*ss, opts.Height*ss, orTransparent(opts.Background))
	t := newTransform(g, opts.Width*ss, opts.Height*ss, float64(opts.Padding*ss))

	edges := make([][2]orb.Point, 0, g.NumEdges)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			edges = append(edges, [2]orb.Point{t.pixel(u), t.pixel(g.Head[e])})
		}
	}
	c.segments(edges, opts.EdgeWidth*float64(ss), orTransparent(opts.EdgeColor))

	if opts.NodeSize > 0 {
		nodeColor := orTransparent(opts.NodeColor)
		for u := uint32(0); u < g.NumNodes; u++ {
			c.disc(t.pixel(u), opts.NodeSize*float64(ss)/2, nodeColor)
		}
	}

	for i, route := range routes {
		if len(opts.RouteColors) == 0 {
			break
		}
		pts := make([]orb.Point, len(route))
		for j, u := range route {
			pts[j] = t.pixel(u)
		}
		c.polyline(pts, opts.RouteWidth*float64(ss), orTransparent(opts.RouteColors[i%len(opts.RouteColors)]))
	}

	img := c.image()
	if ss == 1 {
		return img, nil
	}
	return imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos), nil
}

// Save writes img to path, picking the format from the file extension.
func Save(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save image %s: %w", path, err)
	}
	return nil
}

// transform maps planar node positions to pixels, preserving aspect ratio
// and flipping Y so north is up.
type transform struct {
	g          *graph.Graph
	toPlane    orb.Projection
	minX, maxY float64
	scale      float64
	offX, offY float64
}

func newTransform(g *graph.Graph, width, height int, pad float64) *transform {
	t := &transform{g: g, toPlane: func(p orb.Point) orb.Point { return p }}
	if !g.IsProjected() {
		t.toPlane = geo.Equirectangular(g.Centroid()[1])
	}
	if g.NumNodes == 0 {
		return t
	}

	b := orb.Bound{Min: t.toPlane(g.Point(0)), Max: t.toPlane(g.Point(0))}
	for u := uint32(1); u < g.NumNodes; u++ {
		b = b.Extend(t.toPlane(g.Point(u)))
	}

	dx := b.Max[0] - b.Min[0]
	dy := b.Max[1] - b.Min[1]
	availW := float64(width) - 2*pad
	availH := float64(height) - 2*pad
	switch {
	case dx == 0 && dy == 0:
		t.scale = 1
	case dx == 0:
		t.scale = availH / dy
	case dy == 0:
		t.scale = availW / dx
	default:
		t.scale = math.Min(availW/dx, availH/dy)
	}

	t.minX, t.maxY = b.Min[0], b.Max[1]
	t.offX = pad + (availW-dx*t.scale)/2
	t.offY = pad + (availH-dy*t.scale)/2
	return t
}

func (t *transform) pixel(u uint32) orb.Point {
	p := t.toPlane(t.g.Point(u))
	return orb.Point{
		t.offX + (p[0]-t.minX)*t.scale,
		t.offY + (t.maxY-p[1])*t.scale,
	}
}

// orTransparent substitutes transparent black for a nil color.
func orTransparent(c color.Color) color.Color {
	if c == nil {
		return color.NRGBA{}
	}
	return c
}
