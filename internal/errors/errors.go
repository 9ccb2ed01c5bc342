// Package errors provides standardized error types for the certman CLI tool.
//
// The errors package defines domain-specific error types that enable
// structured error handling and consistent error messages throughout
// the certificate lifecycle.
//
// # Error Types
//
// CertError is the primary error type, containing:
//   - Code: Categorizes the error (NOT_FOUND, TIMEOUT, AUTHORITY, etc.)
//   - Message: Human-readable error description
//   - Domain: The domain name involved (if applicable)
//   - Op: The operation being attempted (issue, renew, publish, ...)
//   - Err: The underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Common error scenarios have pre-defined sentinel errors:
//
//	errors.ErrCredentialNotFound  // no credential saved for the provider
//	errors.ErrCredentialExists    // credential file already present
//	errors.ErrTermsNotAccepted    // CA terms of service not agreed to
//	errors.ErrValidationTimeout   // DNS challenge not verified in time
//	errors.ErrNotDueForRenewal    // certificate still within validity window
//
// # Error Checking
//
// Use errors.Is for sentinel error comparison:
//
//	if errors.Is(err, errors.ErrNotDueForRenewal) {
//	    // Skip quietly; renewal not needed yet
//	}
//
// Use errors.As for type assertion:
//
//	var certErr *errors.CertError
//	if errors.As(err, &certErr) {
//	    fmt.Printf("Code: %s, Domain: %s, Op: %s\n", certErr.Code, certErr.Domain, certErr.Op)
//	}
//
// # Exit Codes
//
// ExitCode maps an error to the process exit code contract of the CLI:
// 2 for invalid input, 3 for missing credentials or records, 4 for
// validation timeouts, 5 for authority rejections, 1 for everything else.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"      // Resource not found
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS" // Resource already exists
	ErrCodeValidation    ErrorCode = "VALIDATION"     // Input validation failed
	ErrCodeTerms         ErrorCode = "TERMS"          // CA terms of service not accepted
	ErrCodeTimeout       ErrorCode = "TIMEOUT"        // Challenge validation timed out
	ErrCodeAuthority     ErrorCode = "AUTHORITY"      // Certificate authority rejected the request
	ErrCodeNotDue        ErrorCode = "NOT_DUE"        // Certificate not due for renewal
	ErrCodeDNS           ErrorCode = "DNS"            // DNS provider API error
	ErrCodeConfig        ErrorCode = "CONFIG"         // Configuration error
	ErrCodeIO            ErrorCode = "IO"             // Filesystem error
	ErrCodeInternal      ErrorCode = "INTERNAL"       // Internal/unexpected error
)

// CertError represents a structured error with context about the operation.
type CertError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Domain  string    // Domain name (if applicable)
	Op      string    // Operation attempted (issue, renew, publish, apply, ...)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *CertError) Error() string {
	prefix := ""
	switch {
	case e.Domain != "" && e.Op != "":
		prefix = fmt.Sprintf("%s %s: ", e.Op, e.Domain)
	case e.Domain != "":
		prefix = e.Domain + ": "
	case e.Op != "":
		prefix = e.Op + ": "
	}
	if e.Err != nil {
		return fmt.Sprintf("%s%s: %v", prefix, e.Message, e.Err)
	}
	return prefix + e.Message
}

// Unwrap returns the underlying error for error chain traversal.
func (e *CertError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *CertError) Is(target error) bool {
	t, ok := target.(*CertError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrCredentialNotFound indicates no credential file exists for the provider.
	ErrCredentialNotFound = &CertError{Code: ErrCodeNotFound, Message: "credential not found"}

	// ErrCredentialExists indicates a credential file already exists for the provider.
	ErrCredentialExists = &CertError{Code: ErrCodeAlreadyExists, Message: "credential already exists"}

	// ErrEmptySecret indicates a blank secret token was supplied.
	ErrEmptySecret = &CertError{Code: ErrCodeValidation, Message: "secret cannot be empty"}

	// ErrInvalidDomain indicates the domain name is not a valid hostname.
	ErrInvalidDomain = &CertError{Code: ErrCodeValidation, Message: "invalid domain"}

	// ErrTermsNotAccepted indicates the CA terms of service were not agreed to.
	ErrTermsNotAccepted = &CertError{Code: ErrCodeTerms, Message: "terms of service not accepted"}

	// ErrValidationTimeout indicates the DNS challenge could not be verified in time.
	ErrValidationTimeout = &CertError{Code: ErrCodeTimeout, Message: "challenge validation timed out"}

	// ErrAuthorityRejected indicates the certificate authority refused the request.
	ErrAuthorityRejected = &CertError{Code: ErrCodeAuthority, Message: "authority rejected request"}

	// ErrNotDueForRenewal indicates the certificate's remaining validity
	// exceeds the renewal threshold.
	ErrNotDueForRenewal = &CertError{Code: ErrCodeNotDue, Message: "certificate not due for renewal"}

	// ErrRecordNotFound indicates no certificate record exists for the domain.
	ErrRecordNotFound = &CertError{Code: ErrCodeNotFound, Message: "certificate record not found"}
)

// CredentialNotFound creates an error for a missing provider credential.
func CredentialNotFound(provider string) error {
	return &CertError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("no credential saved for provider %q", provider),
	}
}

// CredentialExists creates an error for an already present credential file.
func CredentialExists(provider string) error {
	return &CertError{
		Code:    ErrCodeAlreadyExists,
		Message: fmt.Sprintf("credential for provider %q already exists (use --overwrite to replace)", provider),
	}
}

// InvalidDomain creates an error for a malformed hostname.
func InvalidDomain(domain string) error {
	return &CertError{
		Code:    ErrCodeValidation,
		Message: "invalid domain",
		Domain:  domain,
	}
}

// TermsNotAccepted creates an error for a missing terms agreement.
func TermsNotAccepted(domain string) error {
	return &CertError{
		Code:    ErrCodeTerms,
		Message: "terms of service not accepted (pass --agree-tos)",
		Domain:  domain,
		Op:      "issue",
	}
}

// ValidationTimeout creates an error for a challenge that never validated.
func ValidationTimeout(domain, op string, err error) error {
	return &CertError{
		Code:    ErrCodeTimeout,
		Message: "challenge validation timed out",
		Domain:  domain,
		Op:      op,
		Err:     err,
	}
}

// Authority creates an error for a CA-side rejection.
func Authority(domain, op string, err error) error {
	return &CertError{
		Code:    ErrCodeAuthority,
		Message: "authority rejected request",
		Domain:  domain,
		Op:      op,
		Err:     err,
	}
}

// NotDueForRenewal creates an error for a premature renewal attempt.
func NotDueForRenewal(domain string, daysLeft int) error {
	return &CertError{
		Code:    ErrCodeNotDue,
		Message: fmt.Sprintf("certificate not due for renewal (%d days of validity left)", daysLeft),
		Domain:  domain,
		Op:      "renew",
	}
}

// RecordNotFound creates an error for a domain with no managed certificate.
func RecordNotFound(domain string) error {
	return &CertError{
		Code:    ErrCodeNotFound,
		Message: "certificate record not found",
		Domain:  domain,
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &CertError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &CertError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapOp creates an error carrying the domain and operation context.
func WrapOp(code ErrorCode, domain, op, msg string, err error) error {
	return &CertError{
		Code:    code,
		Message: msg,
		Domain:  domain,
		Op:      op,
		Err:     err,
	}
}

// transientError marks an error as retryable (network timeout, 5xx).
type transientError struct {
	err error
}

func (t *transientError) Error() string {
	return "transient: " + t.err.Error()
}

func (t *transientError) Unwrap() error {
	return t.err
}

// Transient wraps an error to mark it as retryable with backoff.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether any error in the chain is marked transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Exit codes for the CLI contract. Zero is success.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInvalidArgs = 2
	ExitCredential  = 3
	ExitTimeout     = 4
	ExitAuthority   = 5
)

// ExitCode maps an error to a process exit code. Distinct codes are
// returned for invalid input, missing credentials, validation timeouts,
// and authority rejections so schedulers can tell failure modes apart.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var certErr *CertError
	if !errors.As(err, &certErr) {
		return ExitFailure
	}
	switch certErr.Code {
	case ErrCodeValidation, ErrCodeTerms:
		return ExitInvalidArgs
	case ErrCodeNotFound:
		return ExitCredential
	case ErrCodeTimeout:
		return ExitTimeout
	case ErrCodeAuthority:
		return ExitAuthority
	default:
		return ExitFailure
	}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
