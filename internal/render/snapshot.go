package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"sync"

	"github.com/hailam/pvschess/internal/board"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Theme defines the color scheme for snapshots.
type Theme struct {
	LightSquare   color.RGBA
	DarkSquare    color.RGBA
	LastMoveColor color.RGBA
	CheckColor    color.RGBA
	WhitePiece    color.RGBA
	BlackPiece    color.RGBA
	Coordinates   color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:   color.RGBA{240, 217, 181, 255}, // Tan
		DarkSquare:    color.RGBA{181, 136, 99, 255},  // Brown
		LastMoveColor: color.RGBA{180, 190, 100, 90},  // Soft yellow-green
		CheckColor:    color.RGBA{255, 100, 100, 180}, // Red
		WhitePiece:    color.RGBA{248, 248, 244, 255},
		BlackPiece:    color.RGBA{40, 40, 44, 255},
		Coordinates:   color.RGBA{90, 70, 50, 255},
	}
}

// MinSnapshotSize is the smallest board edge in pixels.
const MinSnapshotSize = 64

var (
	parseFonts = sync.OnceValues(func() ([2]*opentype.Font, error) {
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			return [2]*opentype.Font{}, fmt.Errorf("parse bold font: %w", err)
		}
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return [2]*opentype.Font{}, fmt.Errorf("parse regular font: %w", err)
		}
		return [2]*opentype.Font{bold, regular}, nil
	})
)

// Snapshot renders p with the default theme as a size×size image.
func Snapshot(p board.Position, size int) (*image.RGBA, error) {
	return DefaultTheme().Snapshot(p, nil, size)
}

// WritePNG renders p with the default theme and writes it to path.
func WritePNG(path string, p board.Position, size int) error {
	return DefaultTheme().WritePNG(path, p, nil, size)
}

// Snapshot renders p as a size×size image. last, if not nil, is
// highlighted.
func (t *Theme) Snapshot(p board.Position, last *board.Move, size int) (*image.RGBA, error) {
	if size < MinSnapshotSize {
		return nil, fmt.Errorf("snapshot size %d below minimum %d", size, MinSnapshotSize)
	}
	// Whole squares only; the remainder stays in the right and bottom margin
	sq := size / 8

	// Squares and piece discs are vector shapes
	doc := t.svg(p, last, size, sq)
	icon, err := oksvg.ReadIconStream(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	if err := t.drawText(img, p, sq); err != nil {
		return nil, err
	}
	return img, nil
}

// WritePNG renders p and writes it to path as a PNG.
func (t *Theme) WritePNG(path string, p board.Position, last *board.Move, size int) error {
	img, err := t.Snapshot(p, last, size)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(c color.RGBA) string {
	return fmt.Sprintf("%.3f", float64(c.A)/255)
}

// svg builds the board document: squares, highlights and piece discs.
func (t *Theme) svg(p board.Position, last *board.Move, size, sq int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, size, size, size, size)

	// Background fills the margin left by integer square sizes
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, size, size, hex(t.DarkSquare))

	rect := func(s board.Square, c color.RGBA) {
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" fill-opacity="%s"/>`,
			s.Col()*sq, s.Row()*sq, sq, sq, hex(c), opacity(c))
	}

	for s := board.Square(0); s < 64; s++ {
		if (s.Col()+s.Row())%2 == 0 {
			rect(s, t.LightSquare)
		} else {
			rect(s, t.DarkSquare)
		}
	}

	if last != nil {
		rect(last.From, t.LastMoveColor)
		rect(last.To, t.LastMoveColor)
	}

	for _, side := range []board.Side{board.White, board.Black} {
		king := p.KingSquare(side)
		if king != board.NoSquare && p.InCheck(side) {
			rect(king, t.CheckColor)
		}
	}

	radius := float64(sq) * 0.38
	stroke := float64(sq) / 24
	for s := board.Square(0); s < 64; s++ {
		pc := p[s]
		if pc == board.NoPiece {
			continue
		}
		fill, edge := t.WhitePiece, t.BlackPiece
		if pc.Side() == board.Black {
			fill, edge = t.BlackPiece, t.WhitePiece
		}
		cx := float64(s.Col()*sq) + float64(sq)/2
		cy := float64(s.Row()*sq) + float64(sq)/2
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="%.2f"/>`,
			cx, cy, radius, hex(fill), hex(edge), stroke)
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// drawText draws piece letters and board coordinates.
func (t *Theme) drawText(img *image.RGBA, p board.Position, sq int) error {
	fonts, err := parseFonts()
	if err != nil {
		return err
	}

	pieceFace, err := opentype.NewFace(fonts[0], &opentype.FaceOptions{
		Size:    float64(sq) * 0.45,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("piece face: %w", err)
	}
	defer pieceFace.Close()

	labelFace, err := opentype.NewFace(fonts[1], &opentype.FaceOptions{
		Size:    float64(sq) * 0.18,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("label face: %w", err)
	}
	defer labelFace.Close()

	// Piece letters, centred in their discs
	d := &font.Drawer{Dst: img, Face: pieceFace}
	metrics := pieceFace.Metrics()
	capHeight := metrics.Ascent - metrics.Descent
	for s := board.Square(0); s < 64; s++ {
		pc := p[s]
		if pc == board.NoPiece {
			continue
		}
		ink := t.BlackPiece
		if pc.Side() == board.Black {
			ink = t.WhitePiece
		}
		letter := string(rune(board.NewPiece(pc.Kind(), board.White)))
		width := d.MeasureString(letter)

		d.Src = image.NewUniform(ink)
		d.Dot = fixed.Point26_6{
			X: fixed.I(s.Col()*sq+sq/2) - width/2,
			Y: fixed.I(s.Row()*sq+sq/2) + capHeight/2,
		}
		d.DrawString(letter)
	}

	// Rank numbers down the a-file, file letters along the first rank
	d = &font.Drawer{Dst: img, Src: image.NewUniform(t.Coordinates), Face: labelFace}
	pad := sq / 16
	ascent := labelFace.Metrics().Ascent
	for row := 0; row < 8; row++ {
		d.Dot = fixed.Point26_6{X: fixed.I(pad), Y: fixed.I(row*sq+pad) + ascent}
		d.DrawString(fmt.Sprint(8 - row))
	}
	for col := 0; col < 8; col++ {
		label := string(rune('a' + col))
		d.Dot = fixed.Point26_6{
			X: fixed.I((col+1)*sq-pad) - d.MeasureString(label),
			Y: fixed.I(8*sq - pad),
		}
		d.DrawString(label)
	}

	return nil
}
