package common

import (
	"errors"
	"fmt"
)

// Error categories a cycle can end with. Every one of them is handled at the
// cycle boundary; none stops the polling loop.
var (
	ErrNetwork         = errors.New("network error")
	ErrResolution      = errors.New("lookup table resolution error")
	ErrThresholdNotMet = errors.New("profit threshold not met")
	ErrSigning         = errors.New("signing error")
	ErrSubmission      = errors.New("bundle submission error")
	ErrSimulation      = errors.New("simulation error")
	ErrInvalidRoute    = errors.New("invalid route")
)

// Stage names the pipeline step a cycle failed in.
type Stage string

const (
	StageQuoteAB          Stage = "quote_ab"
	StageQuoteBA          Stage = "quote_ba"
	StageEvaluate         Stage = "evaluate"
	StageMerge            Stage = "merge"
	StageSwapInstructions Stage = "swap_instructions"
	StageBuild            Stage = "build"
	StageSign             Stage = "sign"
	StageSimulate         Stage = "simulate"
	StageSubmit           Stage = "submit"
)

// StageError tags an error with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// AtStage wraps err with stage. A nil err stays nil.
func AtStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded on err, or "" if there is none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Category maps err onto one of the cycle error categories.
func Category(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrThresholdNotMet):
		return "threshold_not_met"
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrSigning):
		return "signing"
	case errors.Is(err, ErrSubmission):
		return "submission"
	case errors.Is(err, ErrSimulation):
		return "simulation"
	case errors.Is(err, ErrInvalidRoute):
		return "invalid_route"
	case errors.Is(err, ErrNetwork):
		return "network"
	default:
		return "internal"
	}
}
