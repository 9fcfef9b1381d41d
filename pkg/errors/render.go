package errors

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync/atomic"

	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ProblemContentType is the media type of every error body.
const ProblemContentType = "application/problem+json"

var exposeDetail atomic.Bool

// SetDebug controls whether internal error text is written to clients.
func SetDebug(enabled bool) {
	exposeDetail.Store(enabled)
}

// Problem is the JSON body written for a failed request.
type Problem struct {
	Type      string                 `json:"type,omitempty"`
	Title     string                 `json:"title"`
	Status    int                    `json:"status"`
	Code      ErrorCode              `json:"code"`
	Reason    Reason                 `json:"reason,omitempty"`
	Detail    string                 `json:"detail,omitempty"`
	Errors    map[string]interface{} `json:"errors,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ToProblem converts any error into a Problem. Unstructured errors become
// internal errors whose text is only exposed in debug mode.
func ToProblem(err error) Problem {
	var e *Error
	if !errors.As(err, &e) {
		e = InternalWrap(err, "an unexpected error occurred")
	}

	status := e.HTTPStatusCode()
	p := Problem{
		Title:  http.StatusText(status),
		Status: status,
		Code:   e.Code,
		Reason: e.Reason,
		Detail: e.Message,
		Errors: e.Details,
	}
	if e.Code == ErrCodeInternal || e.Code == ErrCodeStoreUnavailable {
		p.Errors = nil
		if exposeDetail.Load() && e.Err != nil {
			p.Detail = e.Err.Error()
		}
	}
	return p
}

// Render writes err as an application/problem+json response and logs it.
func Render(w http.ResponseWriter, r *http.Request, err error) {
	p := ToProblem(err)
	p.RequestID = middleware.GetReqID(r.Context())

	logger := slog.Default().With("request_id", p.RequestID, "path", r.URL.Path, "method", r.Method)
	if p.Status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", p.Status, "code", p.Code, "err", err)
	} else {
		logger.Debug("request rejected", "status", p.Status, "code", p.Code, "reason", p.Reason)
	}

	w.Header().Set("Content-Type", ProblemContentType)
	w.WriteHeader(p.Status)
	if encErr := json.NewEncoder(w).Encode(p); encErr != nil {
		logger.Error("failed to encode problem response", "err", encErr)
	}
}

// Recoverer turns a panic in a downstream handler into a 500 problem response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic recovered", "panic", rec, "stack", string(debug.Stack()))
				Render(w, r, Internal("an unexpected error occurred"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// FromValidation converts ozzo validation errors into a VALIDATION_FAILED error.
// Other errors are returned unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		details := make(map[string]interface{}, len(verrs))
		for field, fieldErr := range verrs {
			details[field] = fieldErr.Error()
		}
		return ValidationFailed(details)
	}
	var ierr validation.InternalError
	if errors.As(err, &ierr) {
		return InternalWrap(ierr, "validation could not be performed")
	}
	return err
}
