package checklist

import "testing"

func TestResolveStage(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		declared  []string
		redirect  bool
		stage     string
	}{
		{"declared stage accepted", "production", []string{"qa", "production"}, false, ""},
		{"unknown stage redirects to first declared", "staging", []string{"qa", "production"}, true, "qa"},
		{"stage on unstaged checklist redirects to empty", "qa", nil, true, ""},
		{"empty stage on unstaged checklist accepted", "", nil, false, ""},
		{"empty stage redirects when stages declared", "", []string{"qa", "production"}, true, "qa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, redirect := ResolveStage(tt.requested, tt.declared)
			if redirect != tt.redirect {
				t.Fatalf("redirect = %v, want %v", redirect, tt.redirect)
			}
			if redirect && stage != tt.stage {
				t.Fatalf("stage = %q, want %q", stage, tt.stage)
			}
		})
	}
}
