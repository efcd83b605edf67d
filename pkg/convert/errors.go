package convert

import (
	"errors"
	"fmt"
)

// Stage names one step of the conversion pipeline.
type Stage string

const (
	StageRead    Stage = "read"
	StageConfirm Stage = "confirm"
	StageRender  Stage = "render"
	StagePersist Stage = "persist"
	StageNotify  Stage = "notify"
)

// ErrCancelled is returned when the operator declines to generate output.
var ErrCancelled = errors.New("generation cancelled")

// StageError identifies the pipeline stage that failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, or "".
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
