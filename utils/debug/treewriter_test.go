package debug

import (
	"bytes"
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "test", nil, "test\n"},
		{"depth 1", 1, "indented", nil, "  indented\n"},
		{"depth 2", 2, "double indent", nil, "    double indent\n"},
		{"with formatting", 1, "%s=%d", []any{"count", 42}, "  count=42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		value string
		want  string
	}{
		{"simple", 0, "text", "hello", "text: \"hello\"\n"},
		{"empty value", 1, "text", "", "  text: \n"},
		{"special characters", 0, "text", "a\tb\n\"c\"", "text: \"a\\tb\\n\\\"c\\\"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, tt.label, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Fields(t *testing.T) {
	tw := NewTreeWriter().WithIndent("\t")
	tw.Fields(2, "block(p#1)", "y", "10", "tag", "", "h", "5", "dangling")

	if want := "\t\tblock(p#1) y=10 h=5\n"; tw.String() != want {
		t.Errorf("Fields() = %q, want %q", tw.String(), want)
	}
}

func TestTreeWriter_WriteTo(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "root")
	tw.Line(1, "child")

	var buf bytes.Buffer
	n, err := tw.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error: %v", err)
	}
	if buf.String() != "root\n  child\n" || n != int64(buf.Len()) {
		t.Errorf("WriteTo() wrote %d bytes: %q", n, buf.String())
	}
}
