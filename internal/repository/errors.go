package repository

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDeviceNotFound      = errors.New("device not found")
	ErrDeviceLimitExceeded = errors.New("device limit exceeded")
)
