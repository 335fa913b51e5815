package analysis

import "github.com/ynumao/ai-creative-director2/internal/report"

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	// OutcomeSuccess carries a parsed report.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeRetryable lets the cascade try the next candidate.
	OutcomeRetryable
	// OutcomeFatal stops the cascade.
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// FailureClass classifies a retryable failure.
type FailureClass string

// FailureQuota is the only retryable class.
const FailureQuota FailureClass = "quota"

// Outcome is the result of invoking one model. Exactly one of Report (for
// success) or Err (for failures) is set.
type Outcome struct {
	Kind   OutcomeKind
	Class  FailureClass
	Report *report.Report
	Err    error
}

// Success wraps a parsed report.
func Success(r *report.Report) Outcome {
	return Outcome{Kind: OutcomeSuccess, Report: r}
}

// Retryable wraps a failure the cascade may recover from with another model.
func Retryable(class FailureClass, err error) Outcome {
	return Outcome{Kind: OutcomeRetryable, Class: class, Err: err}
}

// Fatal wraps a failure that must be surfaced immediately.
func Fatal(err error) Outcome {
	return Outcome{Kind: OutcomeFatal, Err: err}
}

// Message is the raw failure text, empty on success.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
