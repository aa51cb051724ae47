package extract

import (
	"bytes"
	"image"
	"image/png"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/image/draw"
)

// thumbnailMaxEdge is the longest edge of generated thumbnails in pixels
const thumbnailMaxEdge = 256

// Thumbnail scales an image down so its longest edge is at most 256 pixels
// and encodes it as PNG. Images already small enough are re-encoded as-is.
func Thumbnail(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode image for thumbnail")
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > thumbnailMaxEdge || h > thumbnailMaxEdge {
		if w >= h {
			h = h * thumbnailMaxEdge / w
			w = thumbnailMaxEdge
		} else {
			w = w * thumbnailMaxEdge / h
			h = thumbnailMaxEdge
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, goerr.Wrap(err, "failed to encode thumbnail")
	}
	return buf.Bytes(), nil
}
