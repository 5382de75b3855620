package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/maruel/natural"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/planets/internal/kernel"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// Renderer writes parse results
type Renderer struct {
	format string
	units  bool
}

// NewRenderer creates a renderer. units attaches physical units to known keys.
func NewRenderer(format string, units bool) (*Renderer, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		format = FormatJSON
	case FormatYAML, "yml":
		format = FormatYAML
	case FormatText, "txt":
		format = FormatText
	default:
		return nil, fmt.Errorf("unknown output format %q (want json, yaml or text)", format)
	}
	return &Renderer{format: format, units: units}, nil
}

// Format is the normalized output format
func (r *Renderer) Format() string {
	return r.format
}

// Ext is the file extension for the format
func (r *Renderer) Ext() string {
	switch r.format {
	case FormatYAML:
		return ".yaml"
	case FormatText:
		return ".txt"
	}
	return ".json"
}

// document is the json/yaml shape of a result
type document struct {
	File      string      `json:"file,omitempty" yaml:"file,omitempty"`
	Segments  int         `json:"segments" yaml:"segments"`
	Constants interface{} `json:"constants" yaml:"constants"`
}

// Render writes res to w
func (r *Renderer) Render(w io.Writer, res *kernel.Result) error {
	doc := document{File: res.File, Segments: res.Segments, Constants: res.Constants}
	if r.units {
		doc.Constants = res.Annotated()
	}

	switch r.format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText:
		return r.renderText(w, res)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// renderText prints one constant per line in natural key order with the
// block it was last assigned in
func (r *Renderer) renderText(w io.Writer, res *kernel.Result) error {
	keys := res.Constants.Keys()
	sort.Sort(natural.StringSlice(keys))

	annotated := res.Annotated()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if res.File != "" {
		fmt.Fprintf(tw, "# %s\n", res.File)
	}
	fmt.Fprintf(tw, "# %d segments, %d constants\n", res.Segments, len(keys))
	for _, k := range keys {
		var value string
		if r.units {
			q, _ := annotated.Get(k)
			value = q.String()
		} else {
			v, _ := res.Constants.Get(k)
			value = v.String()
		}
		block, _ := res.Constants.Block(k)
		fmt.Fprintf(tw, "%s\t= %s\t(block %d)\n", k, value, block)
	}
	return tw.Flush()
}

// RenderFile writes res to path, creating parent directories
func (r *Renderer) RenderFile(path string, res *kernel.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := r.Render(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
