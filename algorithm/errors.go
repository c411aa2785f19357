package algorithm

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/on-the-ground/physio_ive_go/log"
)

var (
	ErrAbstractInstantiation = errors.New("abstract algorithm cannot be evaluated")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrTypeWrongType         = errors.New("wrong input type")
	// ErrComputationWarning is never returned. It tags the warnings logged
	// when an indicator degrades to NaN on unusable input.
	ErrComputationWarning = errors.New("indicator computation warning")
)

// ParameterError names the parameter, the value and the constraint it broke.
type ParameterError struct {
	Name       string
	Value      any
	Constraint string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s=%s (%s)", ErrInvalidParameter, e.Name, canonical(e.Value), e.Constraint)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// Degenerate logs a computation warning for a and returns NaN.
func Degenerate(ctx context.Context, a Algorithm, reason string) float64 {
	log.Log(ctx, log.LogWarn, "indicator degraded to NaN", map[string]interface{}{
		"indicator": a.Name(),
		"params":    a.Params().String(),
		"error":     fmt.Errorf("%w: %s", ErrComputationWarning, reason),
	})
	return math.NaN()
}
