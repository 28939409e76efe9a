package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	fixzip "github.com/hidez8891/zip"
)

func newTestReport(t *testing.T) *Report {
	t.Helper()
	conf := ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	return r
}

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := fixzip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReportClose_RemovesWorkDirs(t *testing.T) {
	r := newTestReport(t)

	dir1, err := os.MkdirTemp("", "test-workdir1-")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	dir2, err := os.MkdirTemp("", "test-workdir2-")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir1, "trace.txt"), []byte("test"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	stored := filepath.Join(t.TempDir(), "result.txt")
	if err := os.WriteFile(stored, []byte("result"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r.StoreWorkDir("workdir-1", dir1)
	r.StoreWorkDir("workdir-2", dir2)
	r.Store("result-file", stored)

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	for _, dir := range []string{dir1, dir2} {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			os.RemoveAll(dir)
			t.Errorf("expected %s to be removed, but it still exists", dir)
		}
	}
	if _, err := os.Stat(stored); err != nil {
		t.Errorf("stored file should not be removed, but got error: %v", err)
	}

	files := readArchive(t, r.Name())
	if files["workdir-1/trace.txt"] != "test" {
		t.Errorf("work dir content missing from archive: %v", files)
	}
	if files["result-file"] != "result" {
		t.Errorf("result-file = %q, want result", files["result-file"])
	}
}

func TestReport_Manifest(t *testing.T) {
	r := newTestReport(t)
	r.StoreData("item10", []byte("10"))
	r.StoreData("item2", []byte("2"))
	r.Store("absent", filepath.Join(t.TempDir(), "absent.txt"))

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	files := readArchive(t, r.Name())
	if _, ok := files["absent"]; ok {
		t.Error("absent file should be ignored")
	}
	lines := strings.Split(strings.TrimSpace(files["MANIFEST"]), "\n")
	if len(lines) != 3 {
		t.Fatalf("MANIFEST has %d lines, want 3:\n%s", len(lines), files["MANIFEST"])
	}
	for i, name := range []string{"absent", "item2", "item10"} {
		if !strings.Contains(lines[i], "\t"+name+"\t") {
			t.Errorf("MANIFEST line %d = %q, want entry %s", i, lines[i], name)
		}
	}
	if files["item2"] != "2" || files["item10"] != "10" {
		t.Errorf("unexpected data entries: %v", files)
	}
}

func TestReport_StoreCopy(t *testing.T) {
	r := newTestReport(t)

	src := filepath.Join(t.TempDir(), "doc.xml")
	if err := os.WriteFile(src, []byte("first"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := r.StoreCopy("source", src); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}
	if err := os.WriteFile(src, []byte("second"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := r.StoreCopy("source", src); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}
	if err := r.StoreCopy("dir", t.TempDir()); err == nil {
		t.Error("StoreCopy() of directory should fail")
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	files := readArchive(t, r.Name())
	if files["source"] != "first" {
		t.Errorf("source = %q, want content at the time of the first copy", files["source"])
	}
	var versioned int
	for name, data := range files {
		if strings.HasPrefix(name, "source-") && data == "second" {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("expected one versioned copy, archive: %v", files)
	}
}

func TestReport_StoreDataTwicePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("x", []byte("1"))
	defer func() {
		if recover() == nil {
			t.Error("expected panic on overwrite")
		}
	}()
	r.StoreData("x", []byte("2"))
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreWorkDir("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name on nil report = %q, want empty", r.Name())
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
