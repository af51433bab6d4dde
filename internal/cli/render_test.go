package cli

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/motifscope/pkg/pipeline"
	"github.com/matzehuels/motifscope/pkg/provider"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,png,json", []string{"svg", "png", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseInts(t *testing.T) {
	tests := []struct {
		input   string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"3", []int{3}, false},
		{"3, 17,0", []int{3, 17, 0}, false},
		{"3,x", nil, true},
		{"-1", nil, true},
	}

	for _, tt := range tests {
		got, err := parseInts(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseInts(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseInts(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRenderOptions(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.View.Width = 640
	c.cfg.View.Palette = pipeline.PaletteSequential

	cmd := c.renderCommand()
	for name, value := range map[string]string{
		"height":    "300",
		"networks":  "4,2",
		"unfold":    "1",
		"order":     "clustering,median",
		"gdv-order": "degree,",
		"format":    "svg,json",
		"flat":      "true",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}
	var f renderFlags
	f.networks, f.unfold = "4,2", "1"
	f.motifOrd, f.gdvOrd = "clustering,median", "degree,"
	f.formats = "svg,json"
	f.overrides.height, f.overrides.flat = 300, true

	o, err := c.renderOptions(cmd, f, pipeline.Options{Zoom: 2})
	if err != nil {
		t.Fatalf("renderOptions: %v", err)
	}
	if o.Width != 640 {
		t.Errorf("Width = %v, want config value 640", o.Width)
	}
	if o.Height != 300 {
		t.Errorf("Height = %v, want flag value 300", o.Height)
	}
	if o.Palette != pipeline.PaletteSequential {
		t.Errorf("Palette = %q, want config value", o.Palette)
	}
	if !o.Flat || o.Zoom != 2 {
		t.Errorf("Flat = %v, Zoom = %v", o.Flat, o.Zoom)
	}
	if !reflect.DeepEqual(o.Networks, []int{4, 2}) || !reflect.DeepEqual(o.Unfold, []int{1}) {
		t.Errorf("Networks = %v, Unfold = %v", o.Networks, o.Unfold)
	}
	want := provider.Ordering{X: provider.ClusterOrdering, Y: "median", Cluster: true}
	if o.MotifOrdering != want {
		t.Errorf("MotifOrdering = %+v, want %+v", o.MotifOrdering, want)
	}
	if o.GraphletOrdering.X != "degree" || o.GraphletOrdering.Cluster {
		t.Errorf("GraphletOrdering = %+v", o.GraphletOrdering)
	}
}

func TestRenderOptionsInvalid(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cmd := c.renderCommand()

	if _, err := c.renderOptions(cmd, renderFlags{networks: "a"}, pipeline.Options{}); err == nil {
		t.Error("expected error for invalid --networks")
	}
	if _, err := c.renderOptions(cmd, renderFlags{formats: "pdf"}, pipeline.Options{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{
			"motif.svg": []byte("<svg/>"),
			"gdv-2.svg": []byte("<svg id=\"2\"/>"),
		},
		output: dir,
		stats:  pipeline.Stats{Columns: 12, DisplayColumns: 9, Panels: 1},
	})
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}

	for name, want := range map[string]string{"motif.svg": "<svg/>", "gdv-2.svg": "<svg id=\"2\"/>"} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}
