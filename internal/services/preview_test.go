package services

import (
	"strings"
	"testing"
)

func TestPreviewText(t *testing.T) {
	t.Parallel()
	long := strings.TrimSpace(strings.Repeat("word ", 60))

	tests := []struct {
		name     string
		text     string
		maxWords int
		want     string
	}{
		{name: "short text unchanged", text: "hello  world", maxWords: 5, want: "hello world"},
		{name: "exact length has no ellipsis", text: "a b c", maxWords: 3, want: "a b c"},
		{name: "truncated", text: "a b c d", maxWords: 2, want: "a b..."},
		{name: "empty", text: "", maxWords: 5, want: ""},
		{name: "default word count", text: long, maxWords: 0, want: strings.TrimSpace(strings.Repeat("word ", 50)) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PreviewText(tt.text, tt.maxWords); got != tt.want {
				t.Errorf("PreviewText() = %q, want %q", got, tt.want)
			}
		})
	}
}
