package config

import (
	"path/filepath"
	"testing"
)

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "paper_middle", "paper_middle"},
		{"unicode", "Статья 1", "Статья 1"},
		{"separator", "a" + string(filepath.Separator) + "b", "ab"},
		{"leading dots", "..hidden", "hidden"},
		{"parent", "..", badFileName},
		{"control", "a\x00b\tc", "abc"},
		{"empty", "", badFileName},
		{"leading space", "  name", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFileName(tt.in); got != tt.want {
				t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
