// Package chessgif renders the move history of a chess game as an animation.
package chessgif

import (
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/notnil/chess"
	"github.com/razzie/chessimage"
	"github.com/razzie/fig/pkg/fig"
	"golang.org/x/image/draw"
)

const (
	BoardSize = 512
	// Delay between moves in 1/100 s.
	Delay = 100
)

var Palette = getPalette()

// ParseGame reads a game given as "fen:<FEN>", "pgn:<PGN>" or a bare FEN.
// An empty string is the standard starting position.
func ParseGame(game string) (*chess.Game, error) {
	var opt func(*chess.Game)
	var err error
	switch {
	case len(game) == 0:
		return chess.NewGame(), nil
	case strings.HasPrefix(game, "fen:"):
		opt, err = chess.FEN(game[4:])
	case strings.HasPrefix(game, "pgn:"):
		opt, err = chess.PGN(strings.NewReader(game[4:]))
	default:
		opt, err = chess.FEN(game)
	}
	if err != nil {
		return nil, err
	}
	return chess.NewGame(opt), nil
}

// WriteGIF encodes the move history of game as a GIF stream.
func WriteGIF(w io.Writer, game *chess.Game) error {
	anim, err := MoveHistoryToAnimation(game.Moves(), game.Positions())
	if err != nil {
		return err
	}
	return fig.SaveGIF(w, anim)
}

// MoveHistoryToAnimation renders one frame per position. The first frame
// covers the board, the others only the region changed by the move.
func MoveHistoryToAnimation(moves []*chess.Move, positions []*chess.Position) (*fig.Animation, error) {
	renderers := make([]*chessimage.Renderer, 0, len(positions))
	initialPos := positions[0]
	positions = positions[1:]

	r, err := prepareMoveRenderer(initialPos, nil)
	if err != nil {
		return nil, err
	}
	renderers = append(renderers, r)

	for i, move := range moves {
		r, err := prepareMoveRenderer(positions[i], move)
		if err != nil {
			return nil, err
		}
		renderers = append(renderers, r)
	}

	images := make(chan *image.Paletted)
	go func() {
		for _, r := range renderers {
			img, _ := r.Render(chessimage.Options{
				PieceRatio: 1,
				BoardSize:  BoardSize,
			})
			bounds := image.Rect(0, 0, BoardSize, BoardSize)
			palettedImage := image.NewPaletted(bounds, Palette)
			if img != nil {
				draw.Draw(palettedImage, bounds, img, image.Point{}, draw.Over)
			}
			images <- palettedImage
		}
		close(images)
	}()

	return convertImagesToAnimation(images, Delay)
}

func prepareMoveRenderer(pos *chess.Position, move *chess.Move) (*chessimage.Renderer, error) {
	r, err := chessimage.NewRendererFromFEN(pos.String())
	if err != nil {
		return nil, err
	}

	if move != nil {
		from, _ := chessimage.TileFromAN(move.S1().String())
		to, _ := chessimage.TileFromAN(move.S2().String())
		r.SetLastMove(chessimage.LastMove{
			From: from,
			To:   to,
		})
		if move.HasTag(chess.Check) {
			kingSq, _ := chessimage.TileFromAN(pos.Board().KingSquare(pos.Turn()).String())
			r.SetCheckTile(kingSq)
		}
	}

	return r, nil
}

func convertImagesToAnimation(images <-chan *image.Paletted, delay int) (*fig.Animation, error) {
	anim := fig.NewAnimation(BoardSize, BoardSize)
	pal, err := fig.PaletteFromColors(Palette)
	if err != nil {
		// drain the renderer
		for range images {
		}
		return nil, err
	}
	*anim.Palette() = *pal

	var prev *image.Paletted
	for img := range images {
		rect := img.Bounds()
		if prev != nil {
			rect = changedBounds(prev, img)
		}
		f := anim.AddFrame()
		f.X, f.Y = rect.Min.X, rect.Min.Y
		f.Delay = delay
		f.Disposal = fig.DisposalNone
		if err := f.ResizeIndexed(rect.Dx(), rect.Dy()); err != nil {
			return nil, err
		}
		pixels := f.Indexed()
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			row := img.Pix[img.PixOffset(rect.Min.X, y):img.PixOffset(rect.Max.X, y)]
			copy(pixels[(y-rect.Min.Y)*rect.Dx():], row)
		}
		prev = img
	}
	return anim, nil
}

// changedBounds returns the smallest rectangle containing every pixel that
// differs between a and b. Identical images give a single pixel at the
// origin so that the frame still carries its delay.
func changedBounds(a, b *image.Paletted) image.Rectangle {
	bounds := b.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X-1, bounds.Min.Y-1
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if a.ColorIndexAt(x, y) == b.ColorIndexAt(x, y) {
				continue
			}
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+1, bounds.Min.Y+1)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

func rgb(r, g, b uint8) color.Color {
	return &color.RGBA{R: r, G: g, B: b, A: 255}
}

func mix(c1, c2 color.Color) color.Color {
	r1, g1, b1, _ := c1.RGBA()
	r2, g2, b2, _ := c2.RGBA()
	return &color.RGBA{
		R: uint8((r1 + r2) / 2 >> 8),
		G: uint8((g1 + g2) / 2 >> 8),
		B: uint8((b1 + b2) / 2 >> 8),
		A: 255,
	}
}

func getPalette() []color.Color {
	lightSq := rgb(240, 217, 181)
	darkSq := rgb(181, 136, 99)
	lightSqHigh := rgb(247, 193, 99)
	darkSqHigh := rgb(215, 149, 54)
	check := rgb(255, 0, 0)

	var palette []color.Color
	pieceColors := []color.Color{color.White, color.Black, &color.Gray{Y: 128}}
	sqColors := []color.Color{lightSq, darkSq, lightSqHigh, darkSqHigh, check}

	palette = append(palette, pieceColors...)
	palette = append(palette, sqColors...)
	for _, pieceColor := range pieceColors {
		for _, sqColor := range sqColors {
			palette = append(palette, mix(pieceColor, sqColor))
		}
	}
	return palette
}
