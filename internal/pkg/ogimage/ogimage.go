package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/frame"
)

const (
	Width       = 1200
	Height      = 630
	ContentType = "image/png"
)

// Card describes what is painted on one screen image.
type Card struct {
	From     color.RGBA
	To       color.RGBA
	Title    string
	Subtitle string
	Footer   string
}

var (
	purple = hex(0x8b5cf6)
	pink   = hex(0xec4899)
	red    = hex(0xef4444)
	orange = hex(0xf97316)
	green  = hex(0x10b981)
	blue   = hex(0x3b82f6)
	slate  = hex(0x64748b)
)

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// CardFor returns the card for a screen. Unknown screens get the error card.
func CardFor(s frame.Screen, channel string) Card {
	switch s {
	case frame.ScreenEntry:
		return Card{From: purple, To: pink, Title: "/" + channel + " Channel", Subtitle: "Exclusive Airdrop", Footer: "Opt in now!"}
	case frame.ScreenEnterAddress:
		return Card{From: purple, To: pink, Title: "Almost There!", Subtitle: "Enter your ETH wallet address", Footer: "0x..."}
	case frame.ScreenInvalidAddress:
		return Card{From: red, To: orange, Title: "Invalid Address", Subtitle: "That does not look like an ETH address", Footer: "Use 0x followed by 40 hex characters"}
	case frame.ScreenNotMember:
		return Card{From: slate, To: purple, Title: "Members Only", Subtitle: "Join /" + channel + " to opt in", Footer: "Then come back and try again"}
	case frame.ScreenSuccess:
		return Card{From: green, To: blue, Title: "Success!", Subtitle: "You've opted into the /" + channel + " airdrop", Footer: "Stay tuned for updates"}
	case frame.ScreenAlreadyOptedIn:
		return Card{From: green, To: blue, Title: "Already In!", Subtitle: "You've already opted into the /" + channel + " airdrop", Footer: "Stay tuned for updates"}
	default:
		return Card{From: red, To: orange, Title: "Error", Subtitle: "Something went wrong with your opt-in", Footer: "Please try again"}
	}
}

// Renderer paints screen cards and keeps the encoded PNGs in memory. Cards
// only depend on the screen and the channel name, so each is rendered once.
type Renderer struct {
	channel string
	cache   sync.Map
}

func NewRenderer(channel string) *Renderer {
	return &Renderer{channel: channel}
}

// Render returns the PNG bytes for a screen.
func (r *Renderer) Render(s frame.Screen) ([]byte, error) {
	if cached, ok := r.cache.Load(s); ok {
		return cached.([]byte), nil
	}

	img := Paint(CardFor(s, r.channel))
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode %s card: %w", s, err)
	}

	data := buf.Bytes()
	actual, _ := r.cache.LoadOrStore(s, data)
	log.Debugf("[OGImage] Rendered %s card (%d bytes)", s, len(data))
	return actual.([]byte), nil
}

// Warm renders every screen up front.
func (r *Renderer) Warm() error {
	for _, s := range frame.Screens {
		if _, err := r.Render(s); err != nil {
			return err
		}
	}
	return nil
}

// Paint draws a card onto a new Width x Height canvas.
func Paint(c Card) *image.NRGBA {
	canvas := imaging.New(Width, Height, c.From)
	gradient(canvas, c.From, c.To)

	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	lines := []struct {
		text  string
		scale int
	}{
		{c.Title, 6},
		{c.Subtitle, 4},
		{c.Footer, 3},
	}

	// lay the block out vertically centered
	const gap = 40
	total := 0
	rendered := make([]*image.NRGBA, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.text) == "" {
			continue
		}
		scale := fitScale(l.text, l.scale)
		img := textImage(l.text, white, scale)
		rendered = append(rendered, img)
		total += img.Bounds().Dy()
	}
	if len(rendered) > 1 {
		total += gap * (len(rendered) - 1)
	}

	y := (Height - total) / 2
	for _, img := range rendered {
		x := (Width - img.Bounds().Dx()) / 2
		canvas = imaging.Overlay(canvas, img, image.Pt(x, y), 1.0)
		y += img.Bounds().Dy() + gap
	}
	return canvas
}

// gradient fills dst left to right from one color to another.
func gradient(dst *image.NRGBA, from, to color.RGBA) {
	b := dst.Bounds()
	w := b.Dx() - 1
	if w <= 0 {
		w = 1
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		t := float64(x-b.Min.X) / float64(w)
		col := color.NRGBA{
			R: lerp(from.R, to.R, t),
			G: lerp(from.G, to.G, t),
			B: lerp(from.B, to.B, t),
			A: 0xff,
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			dst.SetNRGBA(x, y, col)
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// asciiOnly drops runes the bitmap face cannot draw.
func asciiOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= 0x20 && r < 0x7f {
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

// fitScale shrinks the scale until the text fits with a margin.
func fitScale(text string, scale int) int {
	face := basicfont.Face7x13
	width := font.MeasureString(face, asciiOnly(text)).Ceil()
	for scale > 1 && width*scale > Width-120 {
		scale--
	}
	return scale
}

// textImage draws text with the 7x13 bitmap face and scales it up with
// nearest neighbour so the glyphs stay crisp.
func textImage(text string, col color.Color, scale int) *image.NRGBA {
	text = asciiOnly(text)
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()
	if w == 0 {
		w = 1
	}

	small := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.Transparent, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	return imaging.Resize(small, w*scale, h*scale, imaging.NearestNeighbor)
}
