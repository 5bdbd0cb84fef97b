// Package errs defines suncc's error taxonomy (spec §7) and the
// sanitization pass the CLI applies to an error before printing it to
// stderr. Errors attached to log lines are logged without this pass.
package errs

import (
	"errors"
	"fmt"
	"regexp"
)

// ValidationError reports malformed CLI args, a malformed manifest, or
// invalid analysis input. The build aborts with exit code 2.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("validation error: %s", e.Msg)
}
func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidation constructs a ValidationError.
func NewValidation(msg string, cause error) *ValidationError {
	return &ValidationError{Msg: msg, Err: cause}
}

// CacheError reports an unreadable or corrupt Element Store. Callers must
// treat the store as cold and proceed with a full build rather than
// failing.
type CacheError struct {
	Msg string
	Err error
}

func (e *CacheError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("cache error: %s", e.Msg)
}
func (e *CacheError) Unwrap() error { return e.Err }

// NewCache constructs a CacheError.
func NewCache(msg string, cause error) *CacheError {
	return &CacheError{Msg: msg, Err: cause}
}

// OracleError reports an AI oracle failure. Retryable marks a transient
// failure (see IsRetryable); no caller retries an oracle call, so an
// OracleError of either kind aborts the build, leaving the Element Store
// untouched.
type OracleError struct {
	Msg       string
	Err       error
	Retryable bool
}

func (e *OracleError) Error() string {
	kind := "fatal"
	if e.Retryable {
		kind = "retryable"
	}
	if e.Err != nil {
		return fmt.Sprintf("oracle error (%s): %s: %v", kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("oracle error (%s): %s", kind, e.Msg)
}
func (e *OracleError) Unwrap() error { return e.Err }

// NewOracle constructs an OracleError.
func NewOracle(msg string, cause error, retryable bool) *OracleError {
	return &OracleError{Msg: msg, Err: cause, Retryable: retryable}
}

// IOError reports an output write failure. The build aborts; any atomic
// renames that already completed stay, pending temp files are removed.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error on %s: %v", e.Path, e.Err)
}
func (e *IOError) Unwrap() error { return e.Err }

// NewIO constructs an IOError.
func NewIO(path string, cause error) *IOError {
	return &IOError{Path: path, Err: cause}
}

// InternalError reports an invariant violation (e.g. a duplicate element
// name during splice). Fatal; the Element Store is left untouched. Code is
// a stable diagnostic identifier a caller can match on.
type InternalError struct {
	Code string
	Msg  string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error [%s]: %s", e.Code, e.Msg)
}

// NewInternal constructs an InternalError.
func NewInternal(code, msg string) *InternalError {
	return &InternalError{Code: code, Msg: msg}
}

// IsRetryable reports whether err is an OracleError marked retryable.
func IsRetryable(err error) bool {
	var oe *OracleError
	if errors.As(err, &oe) {
		return oe.Retryable
	}
	return false
}

var sensitiveFieldPattern = regexp.MustCompile(`(?i)\b(apiKey|api_key|password|token|secret|[a-zA-Z_]*key)\s*[:=]\s*\S+`)

// Sanitize redacts sensitive field values from an error's text. The CLI
// applies it before printing an error to stderr; log call sites do not.
func Sanitize(err error) error {
	if err == nil {
		return nil
	}
	redacted := sensitiveFieldPattern.ReplaceAllStringFunc(err.Error(), func(m string) string {
		idx := regexp.MustCompile(`[:=]`).FindStringIndex(m)
		if idx == nil {
			return m
		}
		return m[:idx[1]] + "[REDACTED]"
	})
	return errors.New(redacted)
}
