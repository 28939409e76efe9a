package render

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// headerSize is enough for filetype matchers and document sniffing.
const headerSize = 512

// docExt is extension of box documents, compressed documents have ".gz"
// appended.
const docExt = ".xml"

func readHeader(r io.Reader) ([]byte, error) {
	head := make([]byte, headerSize)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

func fileHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readHeader(f)
}

// isArchiveFile checks whether file is zip archive by looking at its content.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head, err := fileHeader(path)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// isDocument decides whether named content with given header is a box
// document and whether it is gzip compressed.
func isDocument(name string, head []byte) (doc, compressed bool) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, docExt+".gz") {
		return filetype.Is(head, "gz"), true
	}
	if strings.HasSuffix(lower, docExt) {
		return true, false
	}
	// no extension match, sniff for root element
	trimmed := bytes.TrimLeft(head, " \t\r\n\xef\xbb\xbf")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return bytes.Contains(head, []byte("<document")), false
	}
	return bytes.HasPrefix(trimmed, []byte("<document")), false
}

// isDocumentFile checks whether file on disk is box document.
func isDocumentFile(path string) (doc, compressed bool, err error) {
	head, err := fileHeader(path)
	if err != nil {
		return false, false, err
	}
	doc, compressed = isDocument(filepath.Base(path), head)
	return doc, compressed, nil
}

// selectReader returns reader producing document text.
func selectReader(r io.Reader, compressed bool) (io.ReadCloser, error) {
	if !compressed {
		return io.NopCloser(r), nil
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress document: %w", err)
	}
	return zr, nil
}
