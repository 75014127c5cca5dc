package cli

import (
	"slices"
	"testing"

	"github.com/matzehuels/tav/pkg/schedule"
)

func TestLastLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want []string
	}{
		{"empty", "", 3, nil},
		{"only newline", "\n", 3, nil},
		{"fewer", "a\nb\n", 3, []string{"a", "b"}},
		{"truncated", "a\nb\nc\nd", 2, []string{"c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lastLines(tt.in, tt.n); !slices.Equal(got, tt.want) {
				t.Errorf("lastLines(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		status schedule.Status
		want   string
	}{
		{schedule.StatusDone, "success"},
		{schedule.StatusSuccess, "success"},
		{schedule.StatusFailure, "error"},
		{schedule.StatusError, "error"},
		{schedule.StatusRunning, "highlight"},
		{schedule.StatusQueued, "dim"},
	}
	styles := map[string]any{
		"success":   StyleSuccess.GetForeground(),
		"error":     StyleError.GetForeground(),
		"highlight": StyleHighlight.GetForeground(),
		"dim":       StyleDim.GetForeground(),
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := statusStyle(tt.status).GetForeground()
			if got != styles[tt.want] {
				t.Errorf("statusStyle(%s) foreground = %v, want %s", tt.status, got, tt.want)
			}
		})
	}
}
