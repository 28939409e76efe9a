package images

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"testing"
)

func TestWithJFIF(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		added   bool
		wantErr bool
	}{
		{"adds segment", []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04}, true, false},
		{"already present", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, false, false},
		{"too small", []byte{0xFF, 0xD8}, false, true},
		{"not jpeg", []byte{0x89, 'P', 'N', 'G'}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, added, err := withJFIF(tt.data, DensityPerInch, 144, 72)
			if (err != nil) != tt.wantErr {
				t.Fatalf("withJFIF() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if added != tt.added {
				t.Fatalf("added = %v, want %v", added, tt.added)
			}
			if !added {
				if !bytes.Equal(out, tt.data) {
					t.Error("data must not change when segment exists")
				}
				return
			}
			if !bytes.Equal(out[:4], []byte{0xFF, 0xD8, 0xFF, 0xE0}) || string(out[6:10]) != "JFIF" {
				t.Fatalf("bad header % x", out[:12])
			}
			if out[13] != byte(DensityPerInch) || binary.BigEndian.Uint16(out[14:]) != 144 || binary.BigEndian.Uint16(out[16:]) != 72 {
				t.Errorf("bad density % x", out[13:18])
			}
			if !bytes.Equal(out[20:], tt.data[2:]) {
				t.Error("original segments must follow inserted one")
			}
		})
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))

	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, img, 90, 96); err != nil {
		t.Fatalf("EncodeJPEG() error: %v", err)
	}
	data := buf.Bytes()
	if !bytes.Equal(data[2:4], []byte{0xFF, 0xE0}) || binary.BigEndian.Uint16(data[14:]) != 96 {
		t.Errorf("density is not recorded: % x", data[:18])
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("bad jpeg: %v", err)
	}
	if cfg.Width != 16 || cfg.Height != 8 {
		t.Errorf("size = %dx%d, want 16x8", cfg.Width, cfg.Height)
	}

	buf.Reset()
	if err := EncodeJPEG(&buf, img, 90, 0); err != nil {
		t.Fatalf("EncodeJPEG() error: %v", err)
	}
	if _, err := jpeg.DecodeConfig(&buf); err != nil {
		t.Errorf("bad jpeg without density: %v", err)
	}
}
