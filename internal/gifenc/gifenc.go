// Package gifenc assembles an ordered frame sequence into an animated GIF.
package gifenc

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"math"
	"os"
	"sort"

	"github.com/nfnt/resize"
	"github.com/v0xg/mgbacap/internal/sampler"
)

// Options configures GIF encoding.
type Options struct {
	FPS      float64
	MaxWidth uint // downscale frames wider than this; 0 keeps native size
}

// Encode writes frames to outputPath as an infinitely looping GIF and
// returns the file size. Frame delay comes from the target fps, matching
// the sampler's logical timeline. Encoding is attempted once; failures are
// reported, never retried.
func Encode(frames []sampler.Frame, outputPath string, opts Options) (int64, error) {
	if len(frames) == 0 {
		return 0, fmt.Errorf("no frames to encode")
	}

	delay := int(math.Round(100 / opts.FPS)) // centiseconds per frame
	if delay < 1 {
		delay = 1
	}

	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: 0,
	}

	palette := buildPalette(frames[0].Image)

	for i, frame := range frames {
		img := frame.Image
		if opts.MaxWidth > 0 && uint(frame.Width) > opts.MaxWidth {
			img = resize.Resize(opts.MaxWidth, 0, img, resize.Lanczos3)
		}

		paletted := image.NewPaletted(img.Bounds(), palette)
		draw.FloydSteinberg.Draw(paletted, img.Bounds(), img, image.Point{})

		g.Image[i] = paletted
		g.Delay[i] = delay
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := gif.EncodeAll(f, g); err != nil {
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// buildPalette ranks the sampled colors of img by frequency and keeps the
// top 256. GBA output uses few distinct colors, so the first frame is a
// good proxy for the whole animation.
func buildPalette(img image.Image) color.Palette {
	bounds := img.Bounds()
	counts := make(map[color.RGBA]int)

	const step = 2
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			c := color.RGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			}
			counts[c]++
		}
	}

	ranked := make([]color.RGBA, 0, len(counts))
	for c := range counts {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		// Stable order for equal counts so palettes are deterministic.
		a, b := ranked[i], ranked[j]
		return uint32(a.R)<<24|uint32(a.G)<<16|uint32(a.B)<<8|uint32(a.A) <
			uint32(b.R)<<24|uint32(b.G)<<16|uint32(b.B)<<8|uint32(b.A)
	})

	palette := make(color.Palette, 0, 256)
	for _, c := range ranked {
		if len(palette) == 256 {
			break
		}
		palette = append(palette, c)
	}
	for len(palette) < 2 {
		gray := uint8(len(palette) * 255)
		palette = append(palette, color.RGBA{gray, gray, gray, 255})
	}
	return palette
}
