package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	bgEdge         = color.NRGBA{0x0a, 0x0a, 0x0a, 0xff}
	bgMid          = color.NRGBA{0x1a, 0x1a, 0x2e, 0xff}
	cyan           = color.NRGBA{6, 182, 212, 0xff}
	sky            = color.NRGBA{14, 165, 233, 0xff}
	panelFill      = color.NRGBA{0xff, 0xff, 0xff, 13}
	panelBorder    = color.NRGBA{0xff, 0xff, 0xff, 26}
	captionColor   = color.NRGBA{0xff, 0xff, 0xff, 242}
	watermarkColor = color.NRGBA{6, 182, 212, 204}
	badgeColor     = color.NRGBA{6, 182, 212, 51}
)

const (
	panelMaxWidth = 1000
	panelPadding  = 80
	panelRadius   = 40
	panelMargin   = 20
	captionGap    = 40
	lineSpacing   = 1.4
	watermarkSize = 24
	badgeSize     = 32
	badgeRadius   = 8
	badgeGap      = 12
	accentBlur    = 80
	accentScale   = 4
	backdropBlur  = 10
)

// captionSizes are tried in order until the caption fits on the card.
var captionSizes = []float64{48, 40, 34, 28, 24}

type accent struct {
	x, y, size int
	c          color.NRGBA
}

var accents = []accent{
	{x: Width * 20 / 100, y: Height * 20 / 100, size: 400, c: cyan},
	{x: Width - Width*20/100 - 350, y: Height - Height*20/100 - 350, size: 350, c: sky},
}

type fontSet struct {
	bold, regular *opentype.Font
}

var (
	fontsOnce sync.Once
	fonts     fontSet
	fontsErr  error
)

func loadFonts() (fontSet, error) {
	fontsOnce.Do(func() {
		fonts.bold, fontsErr = opentype.Parse(gobold.TTF)
		if fontsErr != nil {
			return
		}
		fonts.regular, fontsErr = opentype.Parse(goregular.TTF)
	})
	return fonts, fontsErr
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// RasterRenderer draws preview cards in pure Go.
type RasterRenderer struct {
	log logrus.FieldLogger
}

// NewRasterRenderer creates a raster card renderer.
func NewRasterRenderer(logger logrus.FieldLogger) *RasterRenderer {
	return &RasterRenderer{log: logger.WithField("component", "preview_raster")}
}

// Render draws the card for content and encodes it as PNG.
func (r *RasterRenderer) Render(ctx context.Context, content string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	caption := Caption(content)

	img, err := r.Draw(caption)
	if err != nil {
		r.log.WithError(err).Error("Failed to draw preview card")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		r.log.WithError(err).Error("Failed to encode preview card")
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	r.log.WithField("caption_chars", utf8.RuneCountInString(caption)).Debug("Preview card rendered")
	return buf.Bytes(), nil
}

// Draw lays out caption on a Width x Height card.
func (r *RasterRenderer) Draw(caption string) (*image.RGBA, error) {
	fs, err := loadFonts()
	if err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))
	paintBackground(canvas)
	for _, a := range accents {
		paintAccent(canvas, a)
	}

	layout, err := layoutCard(fs, caption)
	if err != nil {
		return nil, err
	}
	defer layout.close()

	paintPanel(canvas, layout.panel)
	layout.drawCaption(canvas)
	layout.drawWatermark(canvas)

	return canvas, nil
}

// paintBackground fills dst with the 135 degree edge-mid-edge gradient.
func paintBackground(dst *image.RGBA) {
	b := dst.Bounds()
	span := float64(b.Dx() + b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := float64(x+y) / span
			var c color.NRGBA
			if t < 0.5 {
				c = lerp(bgEdge, bgMid, t/0.5)
			} else {
				c = lerp(bgMid, bgEdge, (t-0.5)/0.5)
			}
			dst.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, 0xff})
		}
	}
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(p, q uint8) uint8 {
		return uint8(math.Round(float64(p) + (float64(q)-float64(p))*t))
	}
	return color.NRGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}

// paintAccent draws a blurred radial glow. The glow is rasterised and blurred
// at reduced resolution, then scaled back up.
func paintAccent(dst *image.RGBA, a accent) {
	pad := accentBlur * 2
	full := a.size + 2*pad
	small := full / accentScale

	layer := image.NewNRGBA(image.Rect(0, 0, small, small))
	center := float64(small) / 2
	// radial-gradient(circle, color 0%, transparent 70%) sized to the farthest corner
	radius := float64(a.size) / 2 * math.Sqrt2 * 0.7 / accentScale
	for y := 0; y < small; y++ {
		for x := 0; x < small; x++ {
			alpha := 0.0
			if d := math.Hypot(float64(x)+0.5-center, float64(y)+0.5-center); d < radius {
				alpha = 0.3 * (1 - d/radius)
			}
			layer.SetNRGBA(x, y, color.NRGBA{a.c.R, a.c.G, a.c.B, uint8(alpha * 255)})
		}
	}

	blurred := imaging.Blur(layer, accentBlur/accentScale)
	glow := imaging.Resize(blurred, full, full, imaging.Linear)

	at := image.Rect(a.x-pad, a.y-pad, a.x-pad+full, a.y-pad+full)
	draw.Draw(dst, at, glow, image.Point{}, draw.Over)
}

// paintPanel draws the frosted rounded panel: blurred backdrop, translucent
// fill and a hairline border.
func paintPanel(dst *image.RGBA, panel image.Rectangle) {
	mask := roundedRect{r: panel, radius: panelRadius}

	backdrop := imaging.Crop(dst, panel)
	backdrop = imaging.Resize(backdrop, panel.Dx()/2, panel.Dy()/2, imaging.Linear)
	backdrop = imaging.Blur(backdrop, backdropBlur/2)
	backdrop = imaging.Resize(backdrop, panel.Dx(), panel.Dy(), imaging.Linear)
	draw.DrawMask(dst, panel, backdrop, image.Point{}, mask, panel.Min, draw.Over)

	draw.DrawMask(dst, panel, image.NewUniform(panelFill), image.Point{}, mask, panel.Min, draw.Over)

	border := ring{
		outer: mask,
		inner: roundedRect{r: panel.Inset(1), radius: panelRadius - 1},
	}
	draw.DrawMask(dst, panel, image.NewUniform(panelBorder), image.Point{}, border, panel.Min, draw.Over)
}

type cardLayout struct {
	face       font.Face
	mark       font.Face
	lines      []string
	lineHeight int
	panel      image.Rectangle
}

func (l *cardLayout) close() {
	l.face.Close()
	l.mark.Close()
}

// layoutCard picks the largest caption size whose wrapped lines fit on the
// card and sizes the panel around them. At the smallest size, lines that
// still do not fit are dropped.
func layoutCard(fs fontSet, caption string) (*cardLayout, error) {
	mark, err := newFace(fs.regular, watermarkSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermark face: %w", err)
	}
	markWidth := badgeSize + badgeGap + font.MeasureString(mark, Watermark).Ceil()

	textWidth := panelMaxWidth - 2*panelPadding
	maxPanelHeight := Height - 2*panelMargin
	chrome := 2*panelPadding + captionGap + badgeSize

	for i, size := range captionSizes {
		face, err := newFace(fs.bold, size)
		if err != nil {
			mark.Close()
			return nil, fmt.Errorf("failed to create caption face: %w", err)
		}

		lines := wrap(face, caption, textWidth)
		lineHeight := int(math.Round(size * lineSpacing))
		last := i == len(captionSizes)-1
		if chrome+len(lines)*lineHeight > maxPanelHeight && !last {
			face.Close()
			continue
		}
		if fit := (maxPanelHeight - chrome) / lineHeight; len(lines) > fit {
			lines = lines[:fit]
		}

		contentWidth := markWidth
		for _, line := range lines {
			if w := font.MeasureString(face, line).Ceil(); w > contentWidth {
				contentWidth = w
			}
		}
		w := contentWidth + 2*panelPadding
		if w > panelMaxWidth {
			w = panelMaxWidth
		}
		h := chrome + len(lines)*lineHeight
		x0 := (Width - w) / 2
		y0 := (Height - h) / 2

		return &cardLayout{
			face:       face,
			mark:       mark,
			lines:      lines,
			lineHeight: lineHeight,
			panel:      image.Rect(x0, y0, x0+w, y0+h),
		}, nil
	}

	mark.Close()
	return nil, fmt.Errorf("no caption size configured")
}

func (l *cardLayout) drawCaption(dst draw.Image) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(captionColor), Face: l.face}
	m := l.face.Metrics()
	glyph := (m.Ascent + m.Descent).Ceil()

	x := l.panel.Min.X + panelPadding
	y := l.panel.Min.Y + panelPadding
	for _, line := range l.lines {
		baseline := y + (l.lineHeight-glyph)/2 + m.Ascent.Ceil()
		d.Dot = fixed.P(x, baseline)
		d.DrawString(line)
		y += l.lineHeight
	}
}

func (l *cardLayout) drawWatermark(dst draw.Image) {
	x := l.panel.Min.X + panelPadding
	y := l.panel.Max.Y - panelPadding - badgeSize

	badge := image.Rect(x, y, x+badgeSize, y+badgeSize)
	draw.DrawMask(dst, badge, image.NewUniform(badgeColor), image.Point{}, roundedRect{r: badge, radius: badgeRadius}, badge.Min, draw.Over)

	m := l.mark.Metrics()
	baseline := y + (badgeSize-(m.Ascent+m.Descent).Ceil())/2 + m.Ascent.Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(watermarkColor),
		Face: l.mark,
		Dot:  fixed.P(x+badgeSize+badgeGap, baseline),
	}
	d.DrawString(Watermark)
}

// wrap breaks text into lines no wider than width pixels. Words wider than a
// line are split between runes.
func wrap(face font.Face, text string, width int) []string {
	limit := fixed.I(width)
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for font.MeasureString(face, word) > limit {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				cut := fitPrefix(face, word, limit)
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			if word == "" {
				continue
			}
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if font.MeasureString(face, candidate) <= limit {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = word
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// fitPrefix returns the byte length of the longest prefix of s narrower than
// limit, and at least one rune.
func fitPrefix(face font.Face, s string, limit fixed.Int26_6) int {
	end := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if font.MeasureString(face, s[:next]) > limit {
			break
		}
		end = next
	}
	if end == 0 {
		_, end = utf8.DecodeRuneInString(s)
	}
	return end
}

// roundedRect is an alpha mask covering a rectangle with rounded corners.
type roundedRect struct {
	r      image.Rectangle
	radius int
}

func (m roundedRect) ColorModel() color.Model { return color.AlphaModel }

func (m roundedRect) Bounds() image.Rectangle { return m.r }

func (m roundedRect) At(x, y int) color.Color {
	if m.contains(x, y) {
		return color.Opaque
	}
	return color.Transparent
}

func (m roundedRect) contains(x, y int) bool {
	if !(image.Point{X: x, Y: y}).In(m.r) {
		return false
	}
	rad := float64(m.radius)
	px, py := float64(x)+0.5, float64(y)+0.5
	dx := math.Max(0, math.Max(float64(m.r.Min.X)+rad-px, px-(float64(m.r.Max.X)-rad)))
	dy := math.Max(0, math.Max(float64(m.r.Min.Y)+rad-py, py-(float64(m.r.Max.Y)-rad)))
	return dx*dx+dy*dy <= rad*rad
}

// ring masks the band between two rounded rectangles.
type ring struct {
	outer, inner roundedRect
}

func (m ring) ColorModel() color.Model { return color.AlphaModel }

func (m ring) Bounds() image.Rectangle { return m.outer.r }

func (m ring) At(x, y int) color.Color {
	if m.outer.contains(x, y) && !m.inner.contains(x, y) {
		return color.Opaque
	}
	return color.Transparent
}
