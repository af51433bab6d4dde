package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestCompleteList(t *testing.T) {
	complete := completeList([]string{"json", "png", "svg"})

	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"json", "png", "svg"}},
		{"s", []string{"svg"}},
		{"svg,", []string{"svg,json", "svg,png"}},
		{"svg,png,j", []string{"svg,png,json"}},
		{"pdf", nil},
	}
	for _, tt := range tests {
		got, _ := complete(nil, nil, tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("complete(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCompleteDatasets(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"enron.json", "flights.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "old.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	c.flags.data = dir

	got, _ := c.completeDatasets(nil, nil, "")
	if want := []string{"enron.json", "flights.json"}; !reflect.DeepEqual(got, want) {
		t.Errorf("completeDatasets = %v, want %v", got, want)
	}
	got, _ = c.completeDatasets(nil, nil, "fl")
	if want := []string{"flights.json"}; !reflect.DeepEqual(got, want) {
		t.Errorf("completeDatasets(fl) = %v, want %v", got, want)
	}
}

func TestCompletionCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := New(io.Discard, LogInfo).RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "bash"})

	if err := root.Execute(); err != nil {
		t.Fatalf("completion bash: %v", err)
	}
	if !strings.Contains(buf.String(), appName) {
		t.Error("bash completion should mention the program name")
	}

	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
