package thumbnailer

import (
	"bytes"
	"image"

	"github.com/gen2brain/heic"
)

// decode turns source bytes into an image. HEIF/HEIC container images are not
// covered by the standard decoder registry, so they are detected by their
// ftyp brand and transcoded through the HEIC decoder before the pipeline
// runs.
func decode(src []byte) (image.Image, error) {
	if isHEIF(src) {
		img, err := heic.Decode(bytes.NewReader(src))
		if err != nil {
			return nil, ErrUnsupportedImageFormat
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, ErrUnsupportedImageFormat
	}
	return img, nil
}

// isHEIF sniffs the ISO BMFF ftyp box for a HEIF-family brand.
func isHEIF(b []byte) bool {
	if len(b) < 12 || string(b[4:8]) != "ftyp" {
		return false
	}
	switch string(b[8:12]) {
	case "heic", "heix", "hevc", "hevx", "heim", "heis", "hevm", "hevs", "mif1", "msf1":
		return true
	}
	return false
}
