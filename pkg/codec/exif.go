package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/akale22/Image-Manipulator/pkg/raster"
)

const tagOrientation = 0x0112

var errNoOrientation = errors.New("no exif orientation")

// jpegOrientation returns the EXIF orientation (1..8) stored in JPEG bytes.
func jpegOrientation(data []byte) (int, error) {
	tiffStart, err := exifTIFFStart(data)
	if err != nil {
		return 0, err
	}
	return readOrientation(data, tiffStart)
}

// exifTIFFStart walks the JPEG marker segments up to the start of scan and
// returns the offset of the TIFF header inside the APP1 "Exif" segment.
func exifTIFFStart(data []byte) (int, error) {
	if len(data) < 4 || !bytes.Equal(data[:2], []byte{0xFF, 0xD8}) {
		return -1, fmt.Errorf("not a jpeg stream")
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xDA {
			break
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if marker == 0xE1 && segLen >= 8 && i+10 <= len(data) && string(data[i+4:i+10]) == "Exif\x00\x00" {
			return i + 10, nil
		}
		if segLen <= 2 {
			i += 2
		} else {
			i += 2 + segLen
		}
	}
	return -1, errNoOrientation
}

// readOrientation scans IFD0 for the orientation SHORT.
func readOrientation(data []byte, tiffStart int) (int, error) {
	if tiffStart+8 > len(data) {
		return 0, fmt.Errorf("tiff header truncated")
	}
	var order binary.ByteOrder
	switch string(data[tiffStart : tiffStart+2]) {
	case "MM":
		order = binary.BigEndian
	case "II":
		order = binary.LittleEndian
	default:
		return 0, fmt.Errorf("unknown tiff byte order")
	}
	if order.Uint16(data[tiffStart+2:tiffStart+4]) != 0x002A {
		return 0, fmt.Errorf("invalid tiff magic")
	}
	ifd := tiffStart + int(order.Uint32(data[tiffStart+4:tiffStart+8]))
	if ifd+2 > len(data) || ifd <= tiffStart {
		return 0, errNoOrientation
	}
	n := int(order.Uint16(data[ifd : ifd+2]))
	for e := 0; e < n; e++ {
		ent := ifd + 2 + e*12
		if ent+12 > len(data) {
			break
		}
		if order.Uint16(data[ent:ent+2]) != tagOrientation {
			continue
		}
		// SHORT, count 1: value sits left-justified in the offset field.
		if order.Uint16(data[ent+2:ent+4]) != 3 {
			return 0, fmt.Errorf("orientation tag has type %d", order.Uint16(data[ent+2:ent+4]))
		}
		return int(order.Uint16(data[ent+8 : ent+10])), nil
	}
	return 0, errNoOrientation
}

// orient applies the mirror/rotate orientations that the engine can express
// with flips. It reports whether the orientation was handled.
func orient(img *raster.Image, orientation int) (*raster.Image, bool, error) {
	var flips []raster.FlipType
	switch orientation {
	case 1:
		return img, true, nil
	case 2:
		flips = []raster.FlipType{raster.Horizontal}
	case 3:
		flips = []raster.FlipType{raster.Horizontal, raster.Vertical}
	case 4:
		flips = []raster.FlipType{raster.Vertical}
	default:
		// 5-8 swap the axes, which needs a transpose.
		return img, false, nil
	}
	var err error
	for _, f := range flips {
		if img, err = img.Flip(f); err != nil {
			return nil, false, err
		}
	}
	return img, true, nil
}
