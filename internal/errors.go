package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeConnectivity ErrorType = "CONNECTIVITY_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate       ErrorCode = "INVALID_DATE"
	ErrCodeDuplicatePlanDate ErrorCode = "DUPLICATE_PLAN_DATE"
	ErrCodeMissingReason     ErrorCode = "MISSING_REJECTION_REASON"
	ErrCodeInvalidPlanStatus ErrorCode = "INVALID_PLAN_STATUS"
	ErrCodePlanNotFound      ErrorCode = "PLAN_NOT_FOUND"

	ErrCodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	ErrCodeUsernameTaken    ErrorCode = "USERNAME_TAKEN"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeSelfActionDenied ErrorCode = "SELF_ACTION_DENIED"
	ErrCodeForbiddenAction  ErrorCode = "FORBIDDEN_ACTION"

	ErrCodeInvalidCredentials   ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidOldCredential ErrorCode = "INVALID_OLD_CREDENTIAL"
	ErrCodePasswordTooShort     ErrorCode = "PASSWORD_TOO_SHORT"
	ErrCodeUserInactive         ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken         ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired         ErrorCode = "TOKEN_EXPIRED"

	ErrCodeStoreUnreachable ErrorCode = "STORE_UNREACHABLE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewConnectivityError marks the record store as unreachable. Callers must be
// able to tell this apart from an empty collection, so it carries its own
// type and a 503 status.
func NewConnectivityError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeConnectivity,
		Code:       ErrCodeStoreUnreachable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrPlanNotFound      = NewNotFoundError("plan not found", ErrCodePlanNotFound)
	ErrDuplicatePlanDate = NewValidationError("a plan already exists for this date", ErrCodeDuplicatePlanDate)
	ErrMissingReason     = NewValidationError("rejection reason is required", ErrCodeMissingReason)
	ErrInvalidPlanStatus = NewValidationError("invalid plan status for this operation", ErrCodeInvalidPlanStatus)

	ErrUserNotFound     = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrUsernameTaken    = NewConflictError("username already taken", ErrCodeUsernameTaken)
	ErrSelfActionDenied = NewForbiddenError("this action may not target your own account", ErrCodeSelfActionDenied)
	ErrForbiddenAction  = NewForbiddenError("you are not allowed to perform this action", ErrCodeForbiddenAction)

	ErrInvalidCredentials   = NewUnauthorizedError("invalid username or password", ErrCodeInvalidCredentials)
	ErrInvalidOldCredential = NewValidationError("old password is incorrect", ErrCodeInvalidOldCredential)
	ErrPasswordTooShort     = NewValidationError("password must be at least 6 characters", ErrCodePasswordTooShort)
	ErrUserInactive         = NewForbiddenError("user account is inactive", ErrCodeUserInactive)
	ErrInvalidToken         = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired         = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
