package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

type DensityUnit uint8

const (
	DensityNoUnits DensityUnit = iota
	DensityPerInch
	DensityPerCm
)

// withJFIF inserts JFIF APP0 segment carrying pixel density right after SOI.
// Data which already has APP0 is returned unchanged.
func withJFIF(data []byte, unit DensityUnit, xdensity, ydensity uint16) ([]byte, bool, error) {
	if len(data) < 4 {
		return nil, false, errors.New("jpeg too small")
	}
	if data[0] != 0xFF || data[1] != 0xD8 {
		return nil, false, errors.New("not a jpeg")
	}
	if data[2] == 0xFF && data[3] == 0xE0 {
		return data, false, nil
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(data)+18))
	buf.Write(data[:2])
	buf.Write([]byte{0xFF, 0xE0})
	_ = binary.Write(buf, binary.BigEndian, uint16(16))
	buf.Write([]byte{'J', 'F', 'I', 'F', 0x00, 0x01, 0x02})
	buf.WriteByte(byte(unit))
	_ = binary.Write(buf, binary.BigEndian, xdensity)
	_ = binary.Write(buf, binary.BigEndian, ydensity)
	buf.Write([]byte{0, 0}) // no thumbnail
	buf.Write(data[2:])
	return buf.Bytes(), true, nil
}

// EncodeJPEG writes img as JPEG with given quality. When dpi is positive
// resulting file records it, so rendered page keeps its physical size.
func EncodeJPEG(w io.Writer, img image.Image, quality, dpi int) error {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return err
	}
	data := buf.Bytes()
	if dpi > 0 {
		var err error
		if data, _, err = withJFIF(data, DensityPerInch, uint16(dpi), uint16(dpi)); err != nil {
			return err
		}
	}
	_, err := w.Write(data)
	return err
}
