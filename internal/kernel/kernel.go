// Package kernel extracts and parses the data segments of SPICE text kernels
// (PCK/TPC files) into an ordered table of constants.
package kernel

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/planets/internal/kernel/pvl"
)

// ErrNotFound is returned when a kernel file does not exist. The wrapped
// error also matches os.ErrNotExist.
var ErrNotFound = errors.New("kernel file not found")

// Grammar selects the statement parser
type Grammar int

const (
	// GrammarLines parses each segment line by line with multi-line vector
	// continuation
	GrammarLines Grammar = iota
	// GrammarPVL merges all segments into one data region and parses it
	// with the relaxed sequence grammar; statements keep the index of the
	// segment they were written in
	GrammarPVL
)

func (g Grammar) String() string {
	if g == GrammarPVL {
		return "pvl"
	}
	return "lines"
}

// ParseGrammar maps a config string onto a Grammar
func ParseGrammar(s string) (Grammar, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lines", "line":
		return GrammarLines, nil
	case "pvl":
		return GrammarPVL, nil
	default:
		return GrammarLines, fmt.Errorf("unknown grammar %q (use lines or pvl)", s)
	}
}

// Options configure a Parser
type Options struct {
	Mode    Mode
	Markers Markers
	Grammar Grammar
}

// DefaultOptions extract per-pair blocks and parse them line by line
func DefaultOptions() Options {
	return Options{
		Mode:    ModePattern,
		Markers: DefaultMarkers(),
		Grammar: GrammarLines,
	}
}

// Result is the outcome of parsing one kernel
type Result struct {
	File      string     `json:"file,omitempty"`
	Segments  int        `json:"segments"`
	Constants *Constants `json:"constants"`
}

// Annotated returns the unit-annotated view of the constants
func (r *Result) Annotated() *Annotated {
	return Annotate(r.Constants)
}

// Parser is built once and reused; it holds compiled patterns and the pvl
// grammar, no per-parse state
type Parser struct {
	opts      Options
	extractor *Extractor
	pvl       *pvl.Parser
}

// NewParser builds a parser for opts
func NewParser(opts Options) *Parser {
	return &Parser{
		opts:      opts,
		extractor: NewExtractor(opts.Mode, opts.Markers),
		pvl:       pvl.NewParser(pvl.SPICE()),
	}
}

// Options returns the parser configuration
func (p *Parser) Options() Options {
	return p.opts
}

// ParseString parses kernel text. file is recorded as provenance and may be empty.
func (p *Parser) ParseString(text, file string) (*Result, error) {
	segments := p.extractor.Extract(text)

	constants := NewConstants()
	switch p.opts.Grammar {
	case GrammarPVL:
		assignments, err := p.parsePVL(segments)
		if err != nil {
			return nil, err
		}
		constants.ApplyAll(assignments)
	default:
		for _, seg := range segments {
			constants.ApplyAll(ParseSegment(seg))
		}
	}

	return &Result{
		File:      file,
		Segments:  len(segments),
		Constants: constants,
	}, nil
}

// ParseFile reads and parses a kernel from disk
func (p *Parser) ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("read kernel: %w", err)
	}
	return p.ParseString(string(data), path)
}

func (p *Parser) parsePVL(segments []Segment) ([]Assignment, error) {
	merged := Merge(segments)

	statements, err := p.pvl.Parse(merged.Text())
	if err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}

	out := make([]Assignment, 0, len(statements))
	for _, st := range statements {
		op := OpAssign
		if st.Append {
			op = OpAppend
		}
		a := Assignment{Key: st.Key, Op: op, Value: st.Value}
		a.Segment, a.Line = locate(segments, st.Line)
		out = append(out, a)
	}
	return out, nil
}

// locate maps a 1-based line of the merged text back to the segment it came
// from and to its source line (0 when the segment has no position)
func locate(segments []Segment, line int) (int, int) {
	offset := 0
	for i, s := range segments {
		if line <= offset+len(s.Lines) || i == len(segments)-1 {
			if s.StartLine == 0 {
				return s.Index, 0
			}
			return s.Index, s.StartLine + line - offset - 1
		}
		offset += len(s.Lines)
	}
	return 0, 0
}
