package driver

import (
	"fmt"
)

// ConfigError reports a schematic problem detected at run setup, before
// the first step: a required pin left unwired, or a backend that lacks
// a capability the schematic needs. It is never retried; the user has
// to fix the wiring.
type ConfigError struct {
	BlockID string
	Pin     string // empty when the problem is not pin-specific
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Pin != "" {
		return fmt.Sprintf("block %s: input %s %s", e.BlockID, e.Pin, e.Reason)
	}
	return fmt.Sprintf("block %s: %s", e.BlockID, e.Reason)
}

// EvalError tags a runtime evaluation failure with the offending block.
// It aborts the run; control-loop math is never silently degraded.
type EvalError struct {
	BlockID string
	Err     error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating block %s: %v", e.BlockID, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
