// Package errors provides custom error types for the carteira API.
// All service-layer errors should use AppError so that responses stay
// consistent and never leak storage internals to clients.
package errors

import "net/http"

// Class groups error codes by who can fix them.
type Class string

const (
	ClassValidation Class = "validation"
	ClassNotFound   Class = "not_found"
	ClassConflict   Class = "conflict"
	ClassAuth       Class = "auth"
	ClassSystem     Class = "system"
)

// AppError represents a structured application error with an error code,
// human-readable message, the offending request field (if any), HTTP status
// code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError carrying the same code, so derived errors built
// with Wrap/WithMessage/WithField still compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Class derives the error class from the HTTP status.
func (e *AppError) Class() Class {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ClassNotFound
	case e.StatusCode == http.StatusConflict:
		return ClassConflict
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden || e.StatusCode == http.StatusLocked:
		return ClassAuth
	case e.StatusCode >= http.StatusInternalServerError:
		return ClassSystem
	default:
		return ClassValidation
	}
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Field:      sentinel.Field,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Field:      sentinel.Field,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithField creates a new AppError pointing at a specific request field.
func WithField(sentinel *AppError, field string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Field:      field,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Account errors.
var (
	ErrAccountNotFound      = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrDuplicateAccountName = &AppError{Code: "DUPLICATE_ACCOUNT_NAME", Message: "An account with this name already exists", Field: "name", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound      = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "One or more categories were not found", Field: "category_ids", StatusCode: http.StatusNotFound}
	ErrCategoryInUse         = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions", StatusCode: http.StatusConflict}
	ErrDuplicateCategoryName = &AppError{Code: "DUPLICATE_CATEGORY_NAME", Message: "A category with this name already exists", Field: "name", StatusCode: http.StatusConflict}
)

// Credit card errors.
var (
	ErrCreditCardNotFound = &AppError{Code: "CREDIT_CARD_NOT_FOUND", Message: "Credit card not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCardName  = &AppError{Code: "DUPLICATE_CARD_NAME", Message: "A credit card with this name already exists", Field: "name", StatusCode: http.StatusConflict}
)

// Ledger validation errors. Each one names the first rule a transaction
// proposal broke.
var (
	ErrInvalidKind         = &AppError{Code: "INVALID_KIND", Message: "Transaction kind must be INCOME, EXPENSE or TRANSFER", Field: "kind", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount       = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be greater than zero", Field: "amount", StatusCode: http.StatusBadRequest}
	ErrInvalidStatus       = &AppError{Code: "INVALID_STATUS", Message: "Transaction status must be PAID, PENDING or CANCELLED", Field: "status", StatusCode: http.StatusBadRequest}
	ErrMissingCategory     = &AppError{Code: "MISSING_CATEGORY", Message: "At least one category is required", Field: "category_ids", StatusCode: http.StatusBadRequest}
	ErrMissingDestination  = &AppError{Code: "MISSING_DESTINATION", Message: "Destination account is required for transfers", Field: "destination_account_id", StatusCode: http.StatusBadRequest}
	ErrSameAccountTransfer = &AppError{Code: "SAME_ACCOUNT_TRANSFER", Message: "Source and destination accounts must differ", Field: "destination_account_id", StatusCode: http.StatusBadRequest}
)

// Ledger not-found errors. These depend on store state at call time.
var (
	ErrSourceAccountNotFound      = &AppError{Code: "SOURCE_ACCOUNT_NOT_FOUND", Message: "Source account not found", Field: "source_account_id", StatusCode: http.StatusNotFound}
	ErrDestinationAccountNotFound = &AppError{Code: "DESTINATION_ACCOUNT_NOT_FOUND", Message: "Destination account not found", Field: "destination_account_id", StatusCode: http.StatusNotFound}
	ErrTransactionNotFound        = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// ErrSystem is returned when a store operation fails inside an atomic unit.
// The cause is logged, never exposed.
var ErrSystem = &AppError{Code: "SYSTEM_ERROR", Message: "System error, please try again later", StatusCode: http.StatusInternalServerError}
