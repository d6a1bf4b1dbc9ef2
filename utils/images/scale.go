// Package images keeps image transformations applied before embedding.
package images

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Downscale makes PNG or JPEG image no wider than maxWidth keeping aspect
// ratio. Other formats and images which already fit are returned untouched,
// second return value tells if data was changed.
func Downscale(data []byte, maxWidth, jpegQuality int) ([]byte, bool, error) {
	if maxWidth <= 0 {
		return data, false, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("unable to decode image: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return data, false, nil
	}
	if cfg.Width <= maxWidth {
		return data, false, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, fmt.Errorf("unable to decode %s image: %w", format, err)
	}
	img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	buf := new(bytes.Buffer)
	switch format {
	case "png":
		err = imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case "jpeg":
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	}
	if err != nil {
		return nil, false, fmt.Errorf("unable to encode processed %s image: %w", format, err)
	}
	if format == "jpeg" {
		return ensureJFIF(buf.Bytes()), true, nil
	}
	return buf.Bytes(), true, nil
}

// ensureJFIF inserts JFIF APP0 segment (300 dpi) if encoder did not produce
// one, some readers refuse to show JPEG images without it.
func ensureJFIF(data []byte) []byte {
	marker := []byte{0xFF, 0xE0}
	if len(data) < 4 || bytes.Equal(data[2:4], marker) {
		return data
	}

	buf := new(bytes.Buffer)
	buf.Write(data[:2])
	buf.Write(marker)
	_ = binary.Write(buf, binary.BigEndian, uint16(0x10))        // length
	buf.Write([]byte{0x4A, 0x46, 0x49, 0x46, 0x00, 0x01, 0x02})  // jfif + version
	_ = binary.Write(buf, binary.BigEndian, uint8(1))            // pixels per inch
	_ = binary.Write(buf, binary.BigEndian, [2]uint16{300, 300}) // density
	_ = binary.Write(buf, binary.BigEndian, uint16(0))           // no thumbnail
	buf.Write(data[2:])
	return buf.Bytes()
}
