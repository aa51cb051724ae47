package extract_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/sensei-tutor/sensei/pkg/extract"
	"github.com/sensei-tutor/sensei/pkg/model"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTextPlain(t *testing.T) {
	result, err := extract.Text("notes.txt", "text/plain", []byte("hello tutor"))
	gt.NoError(t, err)
	gt.Equal(t, result.Kind, model.FileKindText)
	gt.Equal(t, result.Text, "hello tutor")
}

func TestTextWithCharset(t *testing.T) {
	result, err := extract.Text("notes.md", "text/markdown; charset=utf-8", []byte("# heading"))
	gt.NoError(t, err)
	gt.Equal(t, result.Kind, model.FileKindText)
}

func TestTextImage(t *testing.T) {
	data := encodePNG(t, 40, 30)
	result, err := extract.Text("diagram.png", "image/png", data)
	gt.NoError(t, err)
	gt.Equal(t, result.Kind, model.FileKindImage)
	gt.V(t, result.Width).Equal(40)
	gt.V(t, result.Height).Equal(30)
	gt.S(t, result.Text).Contains("diagram.png")
	gt.S(t, result.Text).Contains("40x30")
}

func TestTextCorruptImage(t *testing.T) {
	_, err := extract.Text("broken.png", "image/png", []byte("not an image"))
	gt.Error(t, err)
}

func TestTextUnsupported(t *testing.T) {
	_, err := extract.Text("archive.zip", "application/zip", []byte{0x50, 0x4b})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagValidation))
}

func TestTextCorruptPDF(t *testing.T) {
	_, err := extract.Text("doc.pdf", "application/pdf", []byte("definitely not a pdf"))
	gt.Error(t, err)
}

func TestThumbnailDownscales(t *testing.T) {
	data := encodePNG(t, 512, 256)

	thumb, err := extract.Thumbnail(data)
	gt.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(thumb))
	gt.NoError(t, err)
	gt.V(t, img.Bounds().Dx()).Equal(256)
	gt.V(t, img.Bounds().Dy()).Equal(128)
}

func TestThumbnailSmallImageKeepsSize(t *testing.T) {
	data := encodePNG(t, 64, 48)

	thumb, err := extract.Thumbnail(data)
	gt.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(thumb))
	gt.NoError(t, err)
	gt.V(t, img.Bounds().Dx()).Equal(64)
	gt.V(t, img.Bounds().Dy()).Equal(48)
}

func TestThumbnailInvalidData(t *testing.T) {
	_, err := extract.Thumbnail([]byte("garbage"))
	gt.Error(t, err)
}
