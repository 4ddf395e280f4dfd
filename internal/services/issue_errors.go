// internal/services/issue_errors.go
package services

import (
	"errors"
	"fmt"
)

type IssueCode string

const (
	CodeInvalidInput     IssueCode = "INVALID_INPUT"
	CodeSessionNotFound  IssueCode = "SESSION_NOT_FOUND"
	CodeAlreadyLicensed  IssueCode = "ALREADY_LICENSED"
	CodePaymentRejected  IssueCode = "PAYMENT_REJECTED"
	CodePaymentPending   IssueCode = "PAYMENT_PENDING"
	CodeChainUnavailable IssueCode = "CHAIN_UNAVAILABLE"
	CodeInternal         IssueCode = "INTERNAL"
)

// IssueError classifies every failure crossing the issuer boundary.
// Retryable tells the caller to poll again rather than treat the
// purchase as dead; handlers map codes to HTTP statuses so clients
// never have to string-match messages.
type IssueError struct {
	Code      IssueCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *IssueError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *IssueError) Unwrap() error { return e.Cause }

func newIssueError(code IssueCode, message string) *IssueError {
	return &IssueError{Code: code, Message: message}
}

func newRetryableError(code IssueCode, message string, cause error) *IssueError {
	return &IssueError{Code: code, Message: message, Retryable: true, Cause: cause}
}

func wrapInternal(message string, cause error) *IssueError {
	return &IssueError{Code: CodeInternal, Message: message, Cause: cause}
}

// AsIssueError unwraps err into its classification, defaulting to an
// internal error so raw store/oracle failures never leak to handlers.
func AsIssueError(err error) *IssueError {
	var issueErr *IssueError
	if errors.As(err, &issueErr) {
		return issueErr
	}
	return wrapInternal("unexpected error", err)
}
