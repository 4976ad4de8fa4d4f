package render

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

const sample = "# Claims\n\n**Claim 1:** The Earth is flat.\n\nJudgment: False\n"

func TestReport_RawPassThrough(t *testing.T) {
	var buf bytes.Buffer
	if err := Report(&buf, sample, Options{Raw: true}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if buf.String() != sample {
		t.Errorf("Report() = %q, want %q", buf.String(), sample)
	}
}

func TestReport_NonTerminalIsRaw(t *testing.T) {
	var buf bytes.Buffer
	if err := Report(&buf, "no newline", Options{}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if got, want := buf.String(), "no newline\n"; got != want {
		t.Errorf("Report() = %q, want %q", got, want)
	}
}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestReport_StyledRemovesMarkup(t *testing.T) {
	var buf bytes.Buffer
	if err := Report(&buf, sample, Options{Style: "dark", Wrap: 60}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	out := ansiEscape.ReplaceAllString(buf.String(), "")
	if strings.Contains(out, "**") {
		t.Errorf("styled output still contains emphasis markers:\n%s", out)
	}
	for _, want := range []string{"Claims", "Earth", "flat", "Judgment"} {
		if !strings.Contains(out, want) {
			t.Errorf("styled output missing %q:\n%s", want, out)
		}
	}
}

func TestReport_WrapsToWidth(t *testing.T) {
	long := strings.Repeat("the speaker repeats an unverified claim ", 8)

	var buf bytes.Buffer
	if err := Report(&buf, long, Options{Style: "notty", Wrap: 40}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	lines := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		line = strings.TrimRight(line, " ")
		if line == "" {
			continue
		}
		lines++
		if len(line) > 40 {
			t.Errorf("line exceeds wrap width: %q (%d)", line, len(line))
		}
	}
	if lines < 2 {
		t.Errorf("output has %d non-empty lines, want the paragraph wrapped", lines)
	}
}

func TestSection(t *testing.T) {
	got := Section("Extracted claims", "  1. A claim\n")
	want := "## Extracted claims\n\n1. A claim\n"
	if got != want {
		t.Errorf("Section() = %q, want %q", got, want)
	}
}
