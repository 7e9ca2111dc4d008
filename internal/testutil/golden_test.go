package testutil

import "testing"

func TestFirstDiff(t *testing.T) {
	tests := []struct {
		want, got string
		expected  string
	}{
		{"a\nb\n", "a\nb\n", ""},
		{"a\nb\n", "a\nc\n", `line 2: want "b", got "c"`},
		{"a\n", "a\nb\n", "want 2 lines, got 3"},
	}

	for _, tt := range tests {
		if got := firstDiff([]byte(tt.want), []byte(tt.got)); got != tt.expected {
			t.Errorf("firstDiff(%q, %q): expected %q, got %q", tt.want, tt.got, tt.expected, got)
		}
	}
}
