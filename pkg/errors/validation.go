package errors

import (
	"strings"
	"unicode"
)

// ValidateDatasetName validates a dataset name before it is used as a path
// segment (POST /load_dataset/<name>) or joined onto a local data directory.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, backslashes)
//   - No absolute paths
//   - Maximum length of 256 characters
func ValidateDatasetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "dataset name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPath, "dataset name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "dataset name contains invalid control characters")
		}
	}

	if strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidPath, "dataset name must be relative (cannot start with /)")
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPath, "dataset name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// axisMetrics lists the ordering metrics a provider understands per axis.
var axisMetrics = map[string]map[string]bool{
	"motif-x": {
		"": true, "none": true, "default": true, "clustering": true, "density": true, "transitivity": true,
		"average_clustering": true, "number_of_nodes": true, "number_of_edges": true,
		"number_connected_components": true,
	},
	"graphlet-x": {
		"": true, "none": true, "default": true, "clustering": true, "degree": true, "pagerank": true,
		"degree_centrality": true, "closeness_centrality": true,
	},
	"y": {
		"": true, "none": true, "default": true, "mean": true, "median": true, "min": true,
		"max": true, "std": true, "var": true,
	},
}

// ValidateOrdering checks an axis metric name against the metrics known for
// the axis ("motif-x", "graphlet-x" or "y").
func ValidateOrdering(axis, metric string) error {
	known, ok := axisMetrics[axis]
	if !ok {
		return New(ErrCodeInvalidOrdering, "unknown axis %q", axis)
	}
	if !known[metric] {
		return New(ErrCodeInvalidOrdering, "unknown %s ordering %q", axis, metric)
	}
	return nil
}
