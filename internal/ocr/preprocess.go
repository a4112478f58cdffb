package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// ErrUnsupportedImage is returned when the bytes cannot be decoded as an image.
var ErrUnsupportedImage = errors.New("unsupported image data")

const maxUpscale = 4

// Preprocess decodes an image, rotates it upright according to its EXIF
// orientation, converts it to grayscale, upscales narrow images to minWidth and
// returns the result as PNG.
func Preprocess(data []byte, minWidth int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	return prepare(img, exifOrientation(data), minWidth)
}

func prepare(img image.Image, orientation, minWidth int) ([]byte, error) {
	gray := Grayscale(img)
	gray = Orient(gray, orientation)
	gray = upscale(gray, minWidth)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

// Grayscale converts img into an 8-bit grayscale image anchored at the origin.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(gray, gray.Bounds(), img, b.Min, xdraw.Src)
	return gray
}

// exifOrientation returns the EXIF orientation tag (1-8), or 1 when absent.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// Orient applies an EXIF orientation so the returned image is upright.
// imaging rotates counter-clockwise, so orientation 6 maps to Rotate270.
func Orient(src *image.Gray, orientation int) *image.Gray {
	var out image.Image
	switch orientation {
	case 2:
		out = imaging.FlipH(src)
	case 3:
		out = imaging.Rotate180(src)
	case 4:
		out = imaging.FlipV(src)
	case 5:
		out = imaging.Transpose(src)
	case 6:
		out = imaging.Rotate270(src)
	case 7:
		out = imaging.Transverse(src)
	case 8:
		out = imaging.Rotate90(src)
	default:
		return src
	}
	return Grayscale(out)
}

func upscale(src *image.Gray, minWidth int) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if minWidth <= 0 || w == 0 || w >= minWidth {
		return src
	}

	targetW := minWidth
	if targetW > w*maxUpscale {
		targetW = w * maxUpscale
	}
	targetH := h * targetW / w

	dst := image.NewGray(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
