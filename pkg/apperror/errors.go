package apperror

import (
	"errors"
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

// As extracts the AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ---- Ledger Business Logic (LGR) ----

const (
	CodeInvalidAmount     = "LGR_001"
	CodeInsufficientFunds = "LGR_002"
	CodeNoSuchCustomer    = "LGR_003"
	CodeNoSuchWallet      = "LGR_004"
	CodeSelfTransfer      = "LGR_005"
	CodeSameCurrency      = "LGR_006"
)

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrInsufficientFunds(currency string) *AppError {
	return New(CodeInsufficientFunds, fmt.Sprintf("Insufficient %s balance", currency), http.StatusPaymentRequired)
}

func ErrNoSuchCustomer(name string) *AppError {
	return New(CodeNoSuchCustomer, fmt.Sprintf("No such customer: %s", name), http.StatusNotFound)
}

func ErrNoSuchWallet(currency string) *AppError {
	return New(CodeNoSuchWallet, fmt.Sprintf("No %s wallet for this customer", currency), http.StatusNotFound)
}

func ErrSelfTransfer() *AppError {
	return New(CodeSelfTransfer, "Cannot transfer to yourself", http.StatusBadRequest)
}

func ErrSameCurrency() *AppError {
	return New(CodeSameCurrency, "Source and target currency are the same", http.StatusBadRequest)
}

// ---- External Dependencies (RATE / AI) ----

const (
	CodeRateUnavailable       = "RATE_001"
	CodeClassifierUnavailable = "AI_001"
)

func ErrRateUnavailable(from, to string) *AppError {
	return New(CodeRateUnavailable, fmt.Sprintf("No exchange rate available for %s to %s", from, to), http.StatusServiceUnavailable)
}

func ErrClassifierUnavailable(err error) *AppError {
	return Wrap(CodeClassifierUnavailable, "Spending classification service unavailable", http.StatusServiceUnavailable, err)
}

// ---- Accounts (ACC) ----

const (
	CodeInvalidCredentials = "ACC_001"
	CodeNameExists         = "ACC_002"
	CodeAccountSuspended   = "ACC_003"
)

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
}

func ErrNameExists(name string) *AppError {
	return New(CodeNameExists, fmt.Sprintf("Customer %s already exists", name), http.StatusConflict)
}

func ErrAccountSuspended() *AppError {
	return New(CodeAccountSuspended, "Account is suspended, contact an administrator", http.StatusForbidden)
}

// ---- System & Infrastructure (SYS) ----

const CodeInternal = "SYS_001"

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a validation error with a custom message.
func Validation(message string) *AppError {
	return New(CodeInvalidAmount, message, http.StatusBadRequest)
}
