package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/ppiankov/planets/internal/kernel"
)

// mockLoader parses a one-line kernel built from the source name
type mockLoader struct {
	failOn string
	jitter bool
}

func (m *mockLoader) Load(ctx context.Context, source string) (*kernel.Result, error) {
	if m.jitter {
		time.Sleep(time.Duration(rand.Intn(10)) * time.Millisecond)
	}
	if m.failOn != "" && strings.Contains(source, m.failOn) {
		return nil, errors.New("load error")
	}
	text := fmt.Sprintf("\\begindata\nSOURCE_NAME = '%s'\n\\begintext\n", source)
	return kernel.NewParser(kernel.DefaultOptions()).ParseString(text, source)
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernels.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessSources(t *testing.T) {
	processor := NewBatchProcessor(&mockLoader{}, 2, nil)

	sources := []string{"a.tpc", "b.tpc", "https://example.com/c.tpc"}
	results := processor.ProcessSources(context.Background(), sources)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Source, res.Error)
			continue
		}
		v, ok := res.Result.Constants.Get("SOURCE_NAME")
		if !ok {
			t.Errorf("%s: SOURCE_NAME missing", res.Source)
			continue
		}
		if got, _ := v.AsText(); got != res.Source {
			t.Errorf("%s: got SOURCE_NAME %q", res.Source, got)
		}
	}
}

func TestBatchProcessor_PreservesOrder(t *testing.T) {
	processor := NewBatchProcessor(&mockLoader{jitter: true}, 8, nil)

	var sources []string
	for i := 0; i < 40; i++ {
		sources = append(sources, fmt.Sprintf("k%02d.tpc", i))
	}

	results := processor.ProcessSources(context.Background(), sources)
	for i, res := range results {
		if res.Source != sources[i] || res.Index != i {
			t.Fatalf("result %d is %s (index %d)", i, res.Source, res.Index)
		}
	}
}

func TestBatchProcessor_FailureIsolated(t *testing.T) {
	processor := NewBatchProcessor(&mockLoader{failOn: "bad"}, 2, nil)

	results := processor.ProcessSources(context.Background(), []string{"good.tpc", "bad.tpc", "other.tpc"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Error != nil || results[2].Error != nil {
		t.Errorf("good kernels should load: %v, %v", results[0].Error, results[2].Error)
	}
	if results[1].Error == nil || results[1].Result != nil {
		t.Errorf("expected failure without result for bad.tpc")
	}

	err := Errors(results)
	if len(multierr.Errors(err)) != 1 {
		t.Fatalf("expected 1 combined error, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad.tpc") {
		t.Errorf("combined error should name the source: %v", err)
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockLoader{}, 2, nil)
	results := processor.ProcessSources(ctx, []string{"a.tpc", "b.tpc"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res == nil {
			t.Fatal("nil result")
		}
	}
}

func TestBatchProcessor_ProcessSources_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockLoader{}, 2, nil)

	results := processor.ProcessSources(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
	if Errors(results) != nil {
		t.Errorf("expected no errors")
	}
}

func TestReadSourcesFromFile(t *testing.T) {
	path := writeList(t, `pck00011.tpc
# comment
https://naif.jpl.nasa.gov/pub/naif/generic_kernels/pck/pck00010.tpc

gm_de440.tpc
pck00011.tpc`)

	sources, err := ReadSourcesFromFile(path)
	if err != nil {
		t.Fatalf("ReadSourcesFromFile failed: %v", err)
	}

	expected := []string{
		"pck00011.tpc",
		"https://naif.jpl.nasa.gov/pub/naif/generic_kernels/pck/pck00010.tpc",
		"gm_de440.tpc",
	}
	if len(sources) != len(expected) {
		t.Fatalf("expected %d sources, got %d", len(expected), len(sources))
	}
	for i, src := range sources {
		if src != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, src)
		}
	}
}

func TestReadSourcesFromFile_NonExistent(t *testing.T) {
	if _, err := ReadSourcesFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestLoadResult_GetError(t *testing.T) {
	r1 := &LoadResult{Source: "a.tpc"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("load failed")
	r2 := &LoadResult{Source: "a.tpc", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeList(t, "a.tpc\nb.tpc\n# comment\n\nc.tpc\n")

	processor := NewBatchProcessor(&mockLoader{}, 2, nil)
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockLoader{}, 2, nil)

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
