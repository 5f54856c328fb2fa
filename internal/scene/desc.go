package scene

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/l1jgo/guestsync/internal/geom"
)

// Geometry is a mesh shape.
type Geometry interface {
	Validate() error
	String() string
}

// Capsule is a pill shape: a cylinder of Length capped by hemispheres.
type Capsule struct {
	Radius         float64
	Length         float64
	CapSegments    int
	RadialSegments int
}

func (c Capsule) Validate() error {
	if c.Radius <= 0 || c.Length < 0 || c.CapSegments < 1 || c.RadialSegments < 3 {
		return fmt.Errorf("%w: %s", ErrInvalidDesc, c)
	}
	return nil
}

func (c Capsule) String() string {
	return fmt.Sprintf("capsule(r=%g l=%g caps=%d radial=%d)", c.Radius, c.Length, c.CapSegments, c.RadialSegments)
}

// Box is an axis-aligned cuboid by full width, height and depth.
type Box struct {
	Width, Height, Depth float64
}

func (b Box) Validate() error {
	if b.Width <= 0 || b.Height <= 0 || b.Depth <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDesc, b)
	}
	return nil
}

func (b Box) String() string {
	return fmt.Sprintf("box(%gx%gx%g)", b.Width, b.Height, b.Depth)
}

// Material is a surface description. Color is a CSS-style hex string.
type Material struct {
	Color     string
	Roughness float64
	Unlit     bool
}

// RGB parses Color.
func (m Material) RGB() (colorful.Color, error) {
	return ParseColor(m.Color)
}

// ParseColor accepts "#rgb" and "#rrggbb".
func ParseColor(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: color %q: %v", ErrInvalidDesc, s, err)
	}
	return c, nil
}

// Anchor is the label pivot in its own unit square: (0.5, 1) centers it
// horizontally and hangs it from its bottom edge, so it sits above the point.
type Anchor struct {
	X, Y float64
}

// AnchorAbove is the anchor used for name labels.
var AnchorAbove = Anchor{X: 0.5, Y: 1}

// LabelSpec describes a screen-space billboard.
type LabelSpec struct {
	Text   string
	Swatch string // optional color dot before the text
	Anchor Anchor
	Offset geom.Vec3
	Layer  int
}

func (l LabelSpec) Validate() error {
	if l.Text == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidDesc)
	}
	if l.Swatch != "" {
		if _, err := ParseColor(l.Swatch); err != nil {
			return err
		}
	}
	return nil
}
