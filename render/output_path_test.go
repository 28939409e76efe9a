package render

import (
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"

	"blockflow/box"
	"blockflow/common"
	"blockflow/config"
	"blockflow/geom"
	"blockflow/layout"
	"blockflow/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs, transliterate bool, template string) *state.LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Output.FileNameTransliterate = transliterate
	cfg.Output.NameTemplate = template

	return &state.LocalEnv{
		Log:    zaptest.NewLogger(t),
		Cfg:    cfg,
		NoDirs: noDirs,
	}
}

func testResult() *layout.Result {
	root := box.New(box.KindRoot, "root").Append(box.New(box.KindBlock, "a"), box.New(box.KindBlock, "b"))
	return &layout.Result{
		Root:     root,
		Area:     geom.NewRect(0, 0, 100, 200),
		Overflow: []*box.Node{root.Children[1]},
	}
}

func TestBuildOutputPath(t *testing.T) {
	dst := filepath.FromSlash("/out")

	tests := []struct {
		name          string
		src           string
		format        common.OutputFmt
		noDirs        bool
		transliterate bool
		template      string
		want          string
	}{
		{"default", "doc.xml", common.OutputFmtText, false, false, "", "/out/doc.txt"},
		{"compressed", "doc.XML.gz", common.OutputFmtIonb, false, false, "", "/out/doc.10n"},
		{"keeps dirs", "a/b/doc.xml", common.OutputFmtYaml, false, false, "", "/out/a/b/doc.yaml"},
		{"no dirs", "a/b/doc.xml", common.OutputFmtYaml, true, false, "", "/out/doc.yaml"},
		{"transliterate", "Привет мир.xml", common.OutputFmtSvg, false, true, "", "/out/privet-mir.svg"},
		{"template", "a/doc.xml", common.OutputFmtPng, true, false, "{{ .Name }}-{{ .Width }}x{{ .Height }}-{{ .Overflow }}", "/out/doc-100x200-1.png"},
		{"template with dirs", "doc.xml", common.OutputFmtIon, false, false, "{{ .Format }}/../{{ .Name | upper }}", "/out/ion/DOC.ion"},
		{"template source", "x/doc.xml", common.OutputFmtText, true, false, "{{ .SourceDir }}_{{ .SourceFile }}_{{ .Boxes }}", "/out/x_doc_3.txt"},
		{"broken template", "doc.xml", common.OutputFmtText, false, false, "{{ .Missing", "/out/doc.txt"},
		{"empty expansion", "doc.xml", common.OutputFmtText, false, false, "{{ if false }}x{{ end }}", "/out/doc.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, tt.transliterate, tt.template)
			got := buildOutputPath(filepath.FromSlash(tt.src), dst, tt.format, testResult(), env)
			if want := filepath.FromSlash(tt.want); got != want {
				t.Errorf("buildOutputPath() = %q, want %q", got, want)
			}
		})
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"a/b/c", []string{"a", "b", "c"}},
		{"/a/b/", []string{"a", "b"}},
		{"a//b", []string{"a", "b"}},
		{"../a/./b", []string{"a", "b"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		if got := splitPath(filepath.FromSlash(tt.path)); !slices.Equal(got, tt.want) {
			t.Errorf("splitPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
