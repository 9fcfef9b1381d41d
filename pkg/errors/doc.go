// Package errors provides the structured error type shared by every service.
//
// Each failure carries an ErrorCode (the kind) and an optional Reason (a stable
// sub-code such as TitleExists). Handlers never inspect error text; they call
// Render, which maps the code to an HTTP status and writes a problem+json body.
//
// Example:
//
//	if taken {
//	    return errors.Conflict(errors.ReasonTitleExists, "title already exists")
//	}
//
//	if errors.IsCode(err, errors.ErrCodeNotFound) {
//	    // ...
//	}
package errors
