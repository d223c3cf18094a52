package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestStageError(t *testing.T) {
	base := fmt.Errorf("relay returned 500: %w", ErrSubmission)
	err := AtStage(StageSubmit, base)

	if !errors.Is(err, ErrSubmission) {
		t.Fatalf("expected errors.Is(err, ErrSubmission)")
	}
	if got := StageOf(err); got != StageSubmit {
		t.Errorf("StageOf = %q, want %q", got, StageSubmit)
	}
	if got := StageOf(base); got != "" {
		t.Errorf("StageOf(unstaged) = %q, want empty", got)
	}
	if AtStage(StageBuild, nil) != nil {
		t.Errorf("AtStage(nil) should stay nil")
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"threshold", ErrThresholdNotMet, "threshold_not_met"},
		{"resolution", AtStage(StageBuild, fmt.Errorf("table x: %w", ErrResolution)), "resolution"},
		{"signing", ErrSigning, "signing"},
		{"submission", AtStage(StageSubmit, ErrSubmission), "submission"},
		{"simulation", ErrSimulation, "simulation"},
		{"network", fmt.Errorf("quote: %w", ErrNetwork), "network"},
		{"unknown", errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Category(tt.err); got != tt.want {
				t.Errorf("Category() = %q, want %q", got, tt.want)
			}
		})
	}
}
