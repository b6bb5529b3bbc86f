package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Ledger (WAL) ----

func ErrPatientNotFound() *AppError {
	return New("WAL_001", "Patient not found", http.StatusNotFound)
}

func ErrWalletNotFound() *AppError {
	return New("WAL_002", "Wallet not found", http.StatusNotFound)
}

func ErrWalletAlreadyExists() *AppError {
	return New("WAL_003", "Patient already has a wallet", http.StatusConflict)
}

func ErrWalletNotActive() *AppError {
	return New("WAL_004", "Wallet is not active", http.StatusConflict)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_005", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrInsufficientBalance() *AppError {
	return New("WAL_006", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrInvalidStatus() *AppError {
	return New("WAL_007", "Status must be 'active' or 'suspended'", http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrStorage wraps a storage-layer failure. Eligible for caller retry.
func ErrStorage(err error) *AppError {
	return Wrap("SYS_001", "Storage failure", http.StatusInternalServerError, err)
}

// ErrTransientConflict signals lock/commit contention that exhausted the
// operation. Eligible for caller retry; no side effects were committed.
func ErrTransientConflict(err error) *AppError {
	return Wrap("SYS_002", "Transient conflict, please retry", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("WAL_005", message, http.StatusBadRequest)
}
