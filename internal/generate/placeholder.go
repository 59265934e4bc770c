package generate

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/vincent-petithory/dataurl"
)

const placeholderSize = 512

// Placeholder draws deterministic line art for req and returns it as a PNG data URI.
// The same request always yields the same image.
func Placeholder(req Request) (string, error) {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%s|%s|%s", req.Prompt, req.Style, req.Complexity, req.Theme)
	seed := h.Sum64()

	img := image.NewGray(image.Rect(0, 0, placeholderSize, placeholderSize))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	ink := color.Gray{Y: 0}
	stroke := 3

	// frame
	for i := 0; i < placeholderSize; i++ {
		for w := 0; w < stroke; w++ {
			img.SetGray(i, 8+w, ink)
			img.SetGray(i, placeholderSize-9-w, ink)
			img.SetGray(8+w, i, ink)
			img.SetGray(placeholderSize-9-w, i, ink)
		}
	}

	rings := map[string]int{"simple": 3, "medium": 6, "complex": 10}[req.Complexity]
	if rings == 0 {
		rings = 4
	}
	petals := 5 + int(seed%7)
	center := float64(placeholderSize) / 2
	for ring := 1; ring <= rings; ring++ {
		r := float64(ring) * (center - 32) / float64(rings)
		drawCircle(img, center, center, r, stroke, ink)
		if req.Style == "mandala" || req.Style == "geometric" || ring == rings {
			for p := 0; p < petals; p++ {
				a := 2 * math.Pi * float64(p) / float64(petals)
				drawCircle(img, center+r*math.Cos(a), center+r*math.Sin(a), r/float64(rings+1), stroke, ink)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("generate: encode placeholder: %w", err)
	}
	return dataurl.New(buf.Bytes(), "image/png").String(), nil
}

func drawCircle(img *image.Gray, cx, cy, r float64, stroke int, c color.Gray) {
	if r <= 0 {
		return
	}
	steps := int(2*math.Pi*r) + 1
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := int(math.Round(cx + r*math.Cos(a)))
		y := int(math.Round(cy + r*math.Sin(a)))
		for dx := 0; dx < stroke; dx++ {
			for dy := 0; dy < stroke; dy++ {
				if (image.Point{X: x + dx, Y: y + dy}).In(img.Rect) {
					img.SetGray(x+dx, y+dy, c)
				}
			}
		}
	}
}
