package engine

import (
	"time"

	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
)

// Recorder receives measurements for every validation run.
type Recorder interface {
	RecordValidation(ruleset string, ok bool, duration time.Duration)
	RecordError(ruleset string, kind ruleerrors.Kind)
}

type nopRecorder struct{}

func (nopRecorder) RecordValidation(string, bool, time.Duration) {}
func (nopRecorder) RecordError(string, ruleerrors.Kind)          {}
