// Package banner renders the shareable image announcing a top contributor,
// and the captions that go with it.
package banner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register decoder for avatars
	_ "image/jpeg" // register decoder for avatars
	"image/png"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/spiffcs/spotlight/internal/constants"
	"github.com/spiffcs/spotlight/internal/log"
	"github.com/spiffcs/spotlight/internal/model"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp" // register decoder for avatars
)

// maxAvatarBytes caps avatar downloads.
const maxAvatarBytes = 5 << 20

var (
	background = color.RGBA{0x0d, 0x11, 0x17, 0xff}
	panel      = color.RGBA{0x16, 0x1b, 0x22, 0xff}
	border     = color.RGBA{0x30, 0x36, 0x3d, 0xff}
	white      = color.RGBA{0xff, 0xff, 0xff, 0xff}
	muted      = color.RGBA{0xb7, 0xb7, 0xb7, 0xff}
	missing    = color.RGBA{0x48, 0x4f, 0x58, 0xff}
)

// Renderer draws contributor banners.
type Renderer struct {
	client *http.Client
	width  int
	height int
	quote  func() string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHTTPClient sets the client used to download avatars.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Renderer) {
		if c != nil {
			r.client = c
		}
	}
}

// WithSize sets the output dimensions. The banner is laid out at its native
// size and scaled to fit.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithQuote sets the source of the quote printed on the banner.
func WithQuote(f func() string) Option {
	return func(r *Renderer) {
		if f != nil {
			r.quote = f
		}
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		client: &http.Client{Timeout: constants.DefaultAvatarTimeout},
		width:  constants.BannerWidth,
		height: constants.BannerHeight,
		quote:  RandomQuote,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// layout positions the elements that move depending on whether the
// contributor opened any issues.
type layout struct {
	orgAvatar image.Rectangle
	orgLabel  image.Point
	panels    []image.Rectangle
}

func layoutFor(withIssues bool) layout {
	if withIssues {
		return layout{
			orgAvatar: image.Rect(60, 28, 60+constants.OrgAvatarSmall, 28+constants.OrgAvatarSmall),
			orgLabel:  image.Pt(150, 50),
			panels: []image.Rectangle{
				image.Rect(60, 250, 340, 470),
				image.Rect(860, 250, 1140, 470),
			},
		}
	}
	return layout{
		orgAvatar: image.Rect(123, 146, 123+constants.OrgAvatarLarge, 146+constants.OrgAvatarLarge),
		orgLabel:  image.Pt(130, 350),
		panels: []image.Rectangle{
			image.Rect(60, 120, 346, 420),
			image.Rect(860, 250, 1140, 470),
		},
	}
}

var avatarRect = image.Rect(500, 270, 500+constants.AvatarSize, 270+constants.AvatarSize)

// Render draws the banner for c and returns it PNG-encoded. Avatars that
// cannot be downloaded are replaced with a placeholder.
func (r *Renderer) Render(ctx context.Context, c *model.Contributor, windowDays int) ([]byte, error) {
	if c == nil {
		return nil, errors.New("no contributor to render")
	}

	f, err := loadFaces()
	if err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}
	// font faces are shared and not safe for concurrent use
	f.mu.Lock()
	defer f.mu.Unlock()

	canvas := image.NewRGBA(image.Rect(0, 0, constants.BannerWidth, constants.BannerHeight))
	withIssues := c.Issues > 0
	lay := layoutFor(withIssues)

	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	for _, p := range lay.panels {
		fillRect(canvas, p.Inset(-2), border)
		fillRect(canvas, p, panel)
	}

	avatar, err := r.fetchImage(ctx, c.Profile.AvatarURL)
	if err != nil {
		log.Warn("contributor avatar unavailable", "handle", c.Handle, "error", err)
		avatar = solid(constants.AvatarSize, missing)
	}
	fillRect(canvas, avatarRect.Inset(-4), border)
	draw.CatmullRom.Scale(canvas, avatarRect, avatar, avatar.Bounds(), draw.Over, nil)

	if c.Organization != nil {
		orgAvatar, err := r.fetchImage(ctx, c.Organization.AvatarURL)
		if err != nil {
			log.Warn("organization avatar unavailable", "org", c.Organization.Login, "error", err)
			orgAvatar = solid(lay.orgAvatar.Dx(), missing)
		}
		drawCircle(canvas, lay.orgAvatar, orgAvatar)
		drawText(canvas, f.org, white, "@"+strings.ToLower(c.Organization.Login), lay.orgLabel, anchorTopLeft)
	}

	mid := constants.BannerWidth / 2
	drawText(canvas, f.title, white, Title(windowDays), image.Pt(mid, 165), anchorMiddle)
	drawText(canvas, f.login, white, c.Handle, image.Pt(mid, 210), anchorMiddle)
	if c.Profile.Bio != "" {
		drawText(canvas, f.bio, white, Bio(c.Profile.Bio), image.Pt(mid, 540), anchorMiddle)
	}
	drawText(canvas, f.quote, white, r.quote(), image.Pt(mid, 640), anchorMiddle)

	if withIssues {
		drawText(canvas, f.count, muted, fmt.Sprint(c.Issues), image.Pt(200, 280), anchorTopCenter)
		drawText(canvas, f.label, muted, "OPENED ISSUES", image.Pt(200, 440), anchorMiddle)
	}
	drawText(canvas, f.count, muted, fmt.Sprint(c.MergedPRs), image.Pt(1000, 280), anchorTopCenter)
	drawText(canvas, f.label, muted, "MERGED PRS", image.Pt(1000, 440), anchorMiddle)

	var out image.Image = canvas
	if r.width != constants.BannerWidth || r.height != constants.BannerHeight {
		scaled := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode banner: %w", err)
	}
	log.Debug("rendered banner", "handle", c.Handle, "bytes", buf.Len(), "width", r.width, "height", r.height)
	return buf.Bytes(), nil
}

func (r *Renderer) fetchImage(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, errors.New("no avatar url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build avatar request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download avatar: unexpected status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar: %w", err)
	}
	return img, nil
}

type faces struct {
	mu sync.Mutex

	title, login, bio, quote, count, org, label font.Face
}

var loadFaces = sync.OnceValues(func() (*faces, error) {
	type sized struct {
		dst  *font.Face
		ttf  []byte
		size float64
	}
	f := &faces{}
	sizes := []sized{
		{&f.title, goregular.TTF, 28},
		{&f.login, gobold.TTF, 40},
		{&f.bio, goregular.TTF, 30},
		{&f.quote, goitalic.TTF, 21},
		{&f.count, gobold.TTF, 120},
		{&f.org, goregular.TTF, 30},
		{&f.label, gomedium.TTF, 18},
	}

	for _, s := range sizes {
		otf, err := opentype.Parse(s.ttf)
		if err != nil {
			return nil, err
		}
		face, err := opentype.NewFace(otf, &opentype.FaceOptions{
			Size:    s.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, err
		}
		*s.dst = face
	}
	return f, nil
})

type anchor int

const (
	// anchorMiddle centers the text on the point both ways.
	anchorMiddle anchor = iota
	// anchorTopCenter centers horizontally with the ascender line at the point.
	anchorTopCenter
	// anchorTopLeft puts the left edge and ascender line at the point.
	anchorTopLeft
)

func drawText(dst *image.RGBA, face font.Face, col color.Color, s string, at image.Point, a anchor) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	m := face.Metrics()
	width := d.MeasureString(s)

	dot := fixed.P(at.X, at.Y)
	switch a {
	case anchorMiddle:
		dot.X -= width / 2
		dot.Y += (m.Ascent - m.Descent) / 2
	case anchorTopCenter:
		dot.X -= width / 2
		dot.Y += m.Ascent
	case anchorTopLeft:
		dot.Y += m.Ascent
	}
	d.Dot = dot
	d.DrawString(s)
}

// drawCircle scales src into r and clips it to the inscribed circle.
func drawCircle(dst *image.RGBA, r image.Rectangle, src image.Image) {
	scaled := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)
	draw.DrawMask(dst, r, scaled, image.Point{}, circleMask(r.Dx()), image.Point{}, draw.Over)
}

// circleMask builds an anti-aliased disc by 3x3 supersampling each pixel.
func circleMask(size int) *image.Alpha {
	const ss = 3
	mask := image.NewAlpha(image.Rect(0, 0, size, size))
	radius := float64(size) / 2
	for y := range size {
		for x := range size {
			hits := 0
			for sy := range ss {
				for sx := range ss {
					px := float64(x) + (float64(sx)+0.5)/ss - radius
					py := float64(y) + (float64(sy)+0.5)/ss - radius
					if px*px+py*py <= radius*radius {
						hits++
					}
				}
			}
			mask.SetAlpha(x, y, color.Alpha{A: uint8(hits * 255 / (ss * ss))})
		}
	}
	return mask
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func solid(size int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	fillRect(img, img.Bounds(), c)
	return img
}
