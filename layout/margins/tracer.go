package margins

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/maruel/natural"

	"blockflow/box"
)

// TraceFileName is name of the file Flush writes trace to.
const TraceFileName = "margins-trace.txt"

// Tracer records margin collapsing decisions for debugging. When enabled (via
// non-empty workDir) every handler operation is captured together with the
// state it produced.
//
// The trace is written to a file in the working directory when Flush() is
// called, so it could be included in the debug report archive.
type Tracer struct {
	enabled  bool
	workDir  string
	run      string
	entries  []traceEntry
	sections map[string]int
}

type traceEntry struct {
	operation string
	node      string
	details   string
}

// NewTracer creates a new tracer. If workDir is empty, tracing is disabled.
func NewTracer(workDir string) *Tracer {
	t := &Tracer{
		workDir:  workDir,
		enabled:  workDir != "",
		sections: make(map[string]int),
	}
	if t.enabled {
		t.run = uuid.NewString()
	}
	return t
}

// IsEnabled returns true if tracing is active.
func (t *Tracer) IsEnabled() bool {
	if t == nil {
		return false
	}
	return t.enabled
}

// Run returns identifier of the traced run.
func (t *Tracer) Run() string {
	if t == nil {
		return ""
	}
	return t.run
}

// Trace logs single handler operation for the node.
func (t *Tracer) Trace(operation string, n *box.Node, format string, args ...any) {
	if !t.IsEnabled() {
		return
	}
	t.entries = append(t.entries, traceEntry{
		operation: strings.ToUpper(operation),
		node:      n.String(),
		details:   fmt.Sprintf(format, args...),
	})
	t.sections[operation]++
}

// Len returns number of entries not yet flushed.
func (t *Tracer) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Flush writes the trace to a file and clears the buffer.
// Returns the path to the trace file, or empty string if tracing is disabled.
func (t *Tracer) Flush() string {
	if !t.IsEnabled() || len(t.entries) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("=== Margins Collapse Trace ===\n")
	fmt.Fprintf(&sb, "run: %s\n\n", t.run)

	sb.WriteString("Summary:\n")
	sections := make([]string, 0, len(t.sections))
	for section := range t.sections {
		sections = append(sections, section)
	}
	sort.Sort(natural.StringSlice(sections))
	for _, section := range sections {
		fmt.Fprintf(&sb, "  %s: %d\n", section, t.sections[section])
	}
	sb.WriteString("\n")

	sb.WriteString("Detailed Trace:\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	for i, entry := range t.entries {
		fmt.Fprintf(&sb, "[%04d] %s: %s\n", i+1, entry.operation, entry.node)
		if entry.details != "" {
			for line := range strings.SplitSeq(entry.details, "\n") {
				sb.WriteString("       " + line + "\n")
			}
		}
	}

	tracePath := filepath.Join(t.workDir, TraceFileName)
	if err := os.WriteFile(tracePath, []byte(sb.String()), 0644); err != nil {
		return ""
	}

	t.entries = nil
	t.sections = make(map[string]int)

	return tracePath
}

func formatOverride(n *box.Node) string {
	top, bottom := "-", "-"
	if n.Collapsed.HasTop {
		top = fmt.Sprintf("%g", n.Collapsed.Top)
	}
	if n.Collapsed.HasBottom {
		bottom = fmt.Sprintf("%g", n.Collapsed.Bottom)
	}
	return top + "/" + bottom
}
