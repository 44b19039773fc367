package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// fancyShadowOffset is the shadow displacement of DrawFancyString in pixels.
const fancyShadowOffset = 2

// fancyShadowColor is the shadow color of DrawFancyString.
var fancyShadowColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// TextStyle selects the face used for a string.
type TextStyle struct {
	Family string
	Style  FontStyle
	Size   float64
}

// DefaultTextStyle is the face used when no style is set.
var DefaultTextStyle = TextStyle{Family: FamilySansSerif, Style: FontStyleRegular, Size: DefaultFontSize}

// SetFont sets the face used by DrawString.
func (p *Painter) SetFont(style TextStyle) {
	if style.Size <= 0 {
		style.Size = DefaultFontSize
	}
	if style.Family == "" {
		style.Family = FamilySansSerif
	}
	p.font = style
}

// Font returns the face used by DrawString.
func (p *Painter) Font() TextStyle { return p.font }

// DrawString draws s with its baseline starting at (x, y) in the current
// color and font.
func (p *Painter) DrawString(x, y int, s string) (bool, error) {
	return p.drawText(x, y, s, p.color, p.font)
}

// DrawStringStyled draws s in the given color and style without changing
// the painter state.
func (p *Painter) DrawStringStyled(x, y int, s string, c color.Color, style TextStyle) (bool, error) {
	return p.drawText(x, y, s, color.RGBAModel.Convert(c).(color.RGBA), style)
}

// DrawFancyString draws s in bold with a gray drop shadow.
func (p *Painter) DrawFancyString(x, y int, s string, c color.Color, size float64) (bool, error) {
	style := TextStyle{Family: FamilySansSerif, Style: FontStyleBold, Size: size}
	shadow, err := p.drawText(x+fancyShadowOffset, y+fancyShadowOffset, s, fancyShadowColor, style)
	if err != nil {
		return false, err
	}
	visible, err := p.drawText(x, y, s, color.RGBAModel.Convert(c).(color.RGBA), style)
	return shadow || visible, err
}

// MeasureString returns the advance width and line height of s in style.
func (p *Painter) MeasureString(s string, style TextStyle) (width, height int, err error) {
	face, err := p.fonts.Face(style.Family, style.Style, style.Size, p.highQuality)
	if err != nil {
		return 0, 0, err
	}
	m := face.Metrics()
	return font.MeasureString(face, s).Ceil(), m.Height.Ceil(), nil
}

func (p *Painter) drawText(x, y int, s string, c color.RGBA, style TextStyle) (bool, error) {
	face, err := p.fonts.Face(style.Family, style.Style, style.Size, p.highQuality)
	if err != nil {
		return false, err
	}
	return DrawText(p.surface.Image(), face, x, y, s, c), nil
}

// DrawText draws s onto dst with face, baseline at (x, y). It reports false
// when the text falls entirely outside dst.
func DrawText(dst draw.Image, face font.Face, x, y int, s string, c color.Color) bool {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	bounds, _ := d.BoundString(s)
	r := image.Rect(bounds.Min.X.Floor(), bounds.Min.Y.Floor(), bounds.Max.X.Ceil(), bounds.Max.Y.Ceil())
	if !r.Overlaps(dst.Bounds()) {
		return false
	}
	d.DrawString(s)
	return true
}
