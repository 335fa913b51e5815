package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports a missing or unusable credential or setting.
type ConfigurationError struct {
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// QuotaFailure is a rate or usage-limit rejection from one model. The cascade
// absorbs it and moves to the next candidate.
type QuotaFailure struct {
	Model string
	Cause error
}

func (e *QuotaFailure) Error() string {
	return fmt.Sprintf("quota exceeded for model %s: %v", e.Model, e.Cause)
}

func (e *QuotaFailure) Unwrap() error {
	return e.Cause
}

// FatalInvocationError is a model or transport failure that stops the cascade.
type FatalInvocationError struct {
	Model   string
	Message string
	Cause   error
}

func (e *FatalInvocationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model %s: %s: %v", e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("model %s: %s", e.Model, e.Message)
}

func (e *FatalInvocationError) Unwrap() error {
	return e.Cause
}

// errNoQuotaFailure stands in when the cascade ends without recording a
// quota failure, which only happens for an empty candidate list.
var errNoQuotaFailure = errors.New("no candidate produced a result")

// AllModelsExhaustedError reports that every candidate failed on quota grounds.
type AllModelsExhaustedError struct {
	Attempted []string
	Last      error
}

func (e *AllModelsExhaustedError) Error() string {
	last := e.Last
	if last == nil {
		last = errNoQuotaFailure
	}
	return fmt.Sprintf("all models exhausted (%s): %v", strings.Join(e.Attempted, ", "), last)
}

func (e *AllModelsExhaustedError) Unwrap() error {
	return e.Last
}
