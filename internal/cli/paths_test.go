package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestXDGPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name     string
		env, val string
		fn       func() (string, error)
		wantPath string
	}{
		{"cache default", "XDG_CACHE_HOME", "", cacheDir, filepath.Join(home, ".cache", appName)},
		{"cache xdg", "XDG_CACHE_HOME", "/tmp/xdg-cache", cacheDir, filepath.Join("/tmp/xdg-cache", appName)},
		{"config default", "XDG_CONFIG_HOME", "", configPath, filepath.Join(home, ".config", appName, "config.toml")},
		{"config xdg", "XDG_CONFIG_HOME", "/tmp/xdg", configPath, filepath.Join("/tmp/xdg", appName, "config.toml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.wantPath {
				t.Errorf("got %q, want %q", got, tt.wantPath)
			}
		})
	}
}
