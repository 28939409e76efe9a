package render

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsDocument(t *testing.T) {
	gz := gzipped(t, sampleDoc)

	tests := []struct {
		name       string
		file       string
		head       []byte
		doc        bool
		compressed bool
	}{
		{"xml extension", "a.xml", []byte("anything"), true, false},
		{"upper case extension", "A.XML", []byte("anything"), true, false},
		{"gzipped", "a.xml.gz", gz, true, true},
		{"gz extension with plain content", "a.xml.gz", []byte(sampleDoc), false, true},
		{"sniffed with declaration", "doc", []byte(sampleDoc), true, false},
		{"sniffed with BOM", "doc", []byte("\xef\xbb\xbf<document/>"), true, false},
		{"other xml", "page", []byte(`<?xml version="1.0"?><html/>`), false, false},
		{"text", "notes.txt", []byte("plain"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, compressed := isDocument(tt.file, tt.head)
			if doc != tt.doc || (doc && compressed != tt.compressed) {
				t.Errorf("isDocument() = %v, %v; want %v, %v", doc, compressed, tt.doc, tt.compressed)
			}
		})
	}
}

func TestIsArchiveFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.zip")
	writeZip(t, valid, map[string]string{"a.xml": sampleDoc})
	fake := filepath.Join(dir, "fake.zip")
	writeFile(t, fake, []byte("not a real zip file"))
	wrongExt := filepath.Join(dir, "valid.bin")
	writeZip(t, wrongExt, map[string]string{"a.xml": sampleDoc})

	tests := []struct {
		path string
		want bool
	}{
		{valid, true},
		{fake, false},
		{wrongExt, false},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			got, err := isArchiveFile(tt.path)
			if err != nil {
				t.Fatalf("isArchiveFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("isArchiveFile() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := isArchiveFile(filepath.Join(dir, "absent.zip")); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestSelectReader(t *testing.T) {
	for _, compressed := range []bool{false, true} {
		src := io.Reader(strings.NewReader(sampleDoc))
		if compressed {
			src = strings.NewReader(string(gzipped(t, sampleDoc)))
		}
		r, err := selectReader(src, compressed)
		if err != nil {
			t.Fatalf("selectReader(%v) error: %v", compressed, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil || string(data) != sampleDoc {
			t.Errorf("selectReader(%v) read %q, %v", compressed, data, err)
		}
	}

	if _, err := selectReader(strings.NewReader("not gzip"), true); err == nil {
		t.Error("expected error for bad gzip stream")
	}
}
