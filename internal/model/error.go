package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the general kind of an API error.
// The numeric values are part of the wire format and must not change.
type ErrorCode int

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodeServiceConfig
	ErrorCodeAuthorization
	ErrorCodeBadRequest
	ErrorCodeUserNotFound
	ErrorCodeDeviceNotFound
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeUnknown:        "Unknown",
	ErrorCodeServiceConfig:  "ServiceConfig",
	ErrorCodeAuthorization:  "Authorization",
	ErrorCodeBadRequest:     "BadRequest",
	ErrorCodeUserNotFound:   "UserNotFound",
	ErrorCodeDeviceNotFound: "DeviceNotFound",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return errorCodeNames[ErrorCodeUnknown]
}

// HTTPStatus maps an error code to its response status
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeAuthorization:
		return http.StatusUnauthorized
	case ErrorCodeUserNotFound, ErrorCodeDeviceNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Client-visible error messages
const (
	MsgMissingAuthHeader     = "Authorization header must be sent with Google token"
	MsgUnparsableAuthHeader  = "Unable to parse Authorization header token"
	MsgInvalidIDToken        = "Error validating Google ID token"
	MsgInvalidAccessToken    = "Error validating Google access token"
	MsgMissingClientIDs      = "Google client IDs are not configured"
	MsgUserNotFound          = "The user does not exist"
	MsgCommandUserNotFound   = "User does not exist"
	MsgDeviceNotFound        = "Device does not exist"
	MsgInternalError         = "Internal server error occurred"
	MsgMalformedRequest      = "Malformed request"
	msgDeviceLimitExceededFm = "Devices limit reached. Cannot add more than %d devices for a single user"
)

// MsgDeviceLimitExceeded cites the per-user device cap
var MsgDeviceLimitExceeded = fmt.Sprintf(msgDeviceLimitExceededFm, MaxDevicesPerUser)

// AppError is an error that carries its client-facing code and message.
// Err holds the underlying cause, which is logged but never serialized.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func WrapAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Response returns the JSON body sent for this error
func (e *AppError) Response() ErrorResponse {
	return ErrorResponse{
		Code:       e.Code,
		CodeString: e.Code.String(),
		Message:    e.Message,
	}
}

// AsAppError extracts an AppError from err. Untyped errors become a generic Unknown error,
// and ok reports whether err was typed.
func AsAppError(err error) (appErr *AppError, ok bool) {
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return WrapAppError(ErrorCodeUnknown, MsgInternalError, err), false
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Code       ErrorCode `json:"code"`
	CodeString string    `json:"codeString"`
	Message    string    `json:"message"`
}
