package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ynumao/ai-creative-director2/internal/analysis"
	"github.com/ynumao/ai-creative-director2/internal/browser"
	"github.com/ynumao/ai-creative-director2/internal/capture"
	"github.com/ynumao/ai-creative-director2/internal/report"
)

// StatusQuotaExceeded marks responses where every candidate model hit quota.
const StatusQuotaExceeded = "QUOTA_EXCEEDED"

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrBusy indicates every analysis slot is taken.
type ErrBusy struct {
	Limit int
}

func (e *ErrBusy) Error() string {
	return fmt.Sprintf("server busy: %d analyses already running", e.Limit)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Status  string `json:"status,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		exhausted *analysis.AllModelsExhaustedError
		busy      *ErrBusy
		valErr    *ErrValidation
		cfgErr    *analysis.ConfigurationError
		connErr   *browser.ConnectionError
		navErr    *browser.NavigationError
		capErr    *capture.Error
		fatalErr  *analysis.FatalInvocationError
		parseErr  *report.ParseError
	)
	switch {
	case errors.As(err, &exhausted):
		return http.StatusTooManyRequests
	case errors.As(err, &busy):
		return http.StatusServiceUnavailable
	case errors.As(err, &valErr),
		errors.As(err, &cfgErr),
		errors.As(err, &connErr),
		errors.As(err, &navErr),
		errors.As(err, &capErr),
		errors.As(err, &fatalErr),
		errors.As(err, &parseErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the envelope for err. Details carry the underlying
// error text for diagnostics.
func NewErrorResponse(err error) ErrorResponse {
	var (
		exhausted *analysis.AllModelsExhaustedError
		busy      *ErrBusy
		valErr    *ErrValidation
		cfgErr    *analysis.ConfigurationError
		connErr   *browser.ConnectionError
		navErr    *browser.NavigationError
		capErr    *capture.Error
		fatalErr  *analysis.FatalInvocationError
		parseErr  *report.ParseError
	)
	switch {
	case errors.As(err, &exhausted):
		resp := ErrorResponse{Error: "API quota exceeded for every candidate model", Status: StatusQuotaExceeded}
		if exhausted.Last != nil {
			resp.Details = exhausted.Last.Error()
		}
		return resp
	case errors.As(err, &busy):
		return ErrorResponse{Error: "Too many analyses in progress, try again shortly"}
	case errors.As(err, &valErr):
		return ErrorResponse{Error: valErr.Message}
	case errors.As(err, &cfgErr):
		return ErrorResponse{Error: cfgErr.Message, Details: causeText(cfgErr.Cause)}
	case errors.As(err, &connErr):
		return ErrorResponse{Error: connErr.Message, Details: causeText(connErr.Cause)}
	case errors.As(err, &capErr):
		return ErrorResponse{Error: "Failed to load page: " + capErr.Message, Details: causeText(capErr.Cause)}
	case errors.As(err, &navErr):
		return ErrorResponse{Error: "Failed to load page", Details: navErr.Error()}
	case errors.As(err, &fatalErr):
		return ErrorResponse{Error: "AI analysis failed", Details: fatalErr.Error()}
	case errors.As(err, &parseErr):
		return ErrorResponse{Error: "AI response could not be parsed", Details: parseErr.Error()}
	default:
		return ErrorResponse{Error: "Internal server error", Details: err.Error()}
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
