package fsutil

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// thumbnailMaxSize bounds the longest edge of a converted thumbnail. The
// in-game addon list renders small previews, so anything larger is waste.
const thumbnailMaxSize = 512

// ConvertThumbnailToJPEG decodes an image and re-encodes it as JPEG,
// downscaling so that neither edge exceeds the thumbnail bound. The aspect
// ratio is preserved.
//
// Used by the importer to turn non-JPEG preview images bundled in archives
// into the .jpg siblings the game and the scanner expect.
func ConvertThumbnailToJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > thumbnailMaxSize || height > thumbnailMaxSize {
		ratio := float64(width) / float64(height)
		if ratio > 1 {
			width = thumbnailMaxSize
			height = int(float64(thumbnailMaxSize) / ratio)
		} else {
			height = thumbnailMaxSize
			width = int(float64(thumbnailMaxSize) * ratio)
		}

		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
