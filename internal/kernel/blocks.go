package kernel

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how data segments are located in a kernel
type Mode int

const (
	// ModePattern extracts every non-overlapping begin ... end span of the
	// whole text. An unterminated trailing begin marker yields nothing.
	ModePattern Mode = iota
	// ModeToggle scans line by line; marker lines open and close segments
	// and an open segment at end of file is closed there.
	ModeToggle
)

func (m Mode) String() string {
	switch m {
	case ModeToggle:
		return "toggle"
	default:
		return "pattern"
	}
}

// ParseMode maps a config string onto a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pattern", "block":
		return ModePattern, nil
	case "toggle", "region":
		return ModeToggle, nil
	default:
		return ModePattern, fmt.Errorf("unknown extraction mode %q (use pattern or toggle)", s)
	}
}

// Markers delimit data segments
type Markers struct {
	Begin string
	End   string
}

// DefaultMarkers are the text kernel data markers
func DefaultMarkers() Markers {
	return Markers{Begin: `\begindata`, End: `\begintext`}
}

// Segment is the ordered run of raw lines inside one marker pair
type Segment struct {
	Index     int      // 0-based position among the kernel's segments
	StartLine int      // 1-based source line of the first content line
	Lines     []string // Raw lines, markers excluded
}

// Text joins the segment lines back into one string
func (s Segment) Text() string {
	return strings.Join(s.Lines, "\n")
}

// Extractor finds data segments. It is safe for concurrent use.
type Extractor struct {
	mode    Mode
	markers Markers
	pattern *regexp.Regexp
}

// NewExtractor builds an extractor; the block pattern is compiled once here
func NewExtractor(mode Mode, markers Markers) *Extractor {
	if markers.Begin == "" || markers.End == "" {
		markers = DefaultMarkers()
	}
	return &Extractor{
		mode:    mode,
		markers: markers,
		pattern: regexp.MustCompile(`(?s)` + regexp.QuoteMeta(markers.Begin) + `\s+(.*?)` + regexp.QuoteMeta(markers.End)),
	}
}

// Mode reports the extraction policy in use
func (e *Extractor) Mode() Mode {
	return e.mode
}

// Extract returns the data segments of text in source order
func (e *Extractor) Extract(text string) []Segment {
	text = normalizeNewlines(text)
	if e.mode == ModeToggle {
		return e.toggled(text)
	}
	return e.blocks(text)
}

func (e *Extractor) blocks(text string) []Segment {
	var segments []Segment
	for _, loc := range e.pattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		content := strings.TrimRight(text[start:end], " \t\n")

		var lines []string
		if content != "" {
			lines = strings.Split(content, "\n")
		}
		segments = append(segments, Segment{
			Index:     len(segments),
			StartLine: strings.Count(text[:start], "\n") + 1,
			Lines:     lines,
		})
	}
	return segments
}

func (e *Extractor) toggled(text string) []Segment {
	var (
		segments []Segment
		current  *Segment
	)

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.EqualFold(trimmed, e.markers.Begin):
			if current == nil {
				current = &Segment{Index: len(segments), StartLine: i + 2}
			}
		case strings.EqualFold(trimmed, e.markers.End):
			if current != nil {
				segments = append(segments, *current)
				current = nil
			}
		case current != nil:
			current.Lines = append(current.Lines, line)
		}
	}

	if current != nil {
		segments = append(segments, *current)
	}
	return segments
}

// Merge concatenates segments into one, the single data region view of a
// kernel used by the pvl grammar
func Merge(segments []Segment) Segment {
	merged := Segment{}
	for i, s := range segments {
		if i == 0 {
			merged.StartLine = s.StartLine
		}
		merged.Lines = append(merged.Lines, s.Lines...)
	}
	return merged
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
